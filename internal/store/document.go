// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store owns the JSON document holding every category and topic.
// Each operation reads the whole file from disk; each mutation rewrites it
// through a temporary file that is renamed over the original, so readers
// never observe a partially written document. Mutations on the same path
// are serialized by a process-wide lock.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"topicpress/internal/models"
)

var (
	// ErrStorageCorrupt means the document exists but is not valid JSON of
	// the expected shape.
	ErrStorageCorrupt = errors.New("storage corrupt")

	// ErrStorageUnavailable means the document could not be read or written,
	// or the operation gave up waiting for the write lock.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store reads and writes the document at a fixed path.
type Store struct {
	path    string
	lock    pathLock
	timeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds every store operation, including the wait for the
// write lock. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// Open returns a Store for the document at path. The file is not touched
// until the first operation; call EnsureInitialized at startup.
func Open(path string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve document path: %w", err)
	}
	s := &Store{path: abs, lock: lockFor(abs)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the absolute document path.
func (s *Store) Path() string {
	return s.path
}

// EnsureInitialized writes the seed document if none exists yet. It reports
// whether a new document was created.
func (s *Store) EnsureInitialized(ctx context.Context) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.lock.acquire(ctx); err != nil {
		return false, err
	}
	defer s.lock.release()

	_, err := os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: stat %s: %w", ErrStorageUnavailable, s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("%w: create data directory: %w", ErrStorageUnavailable, err)
	}
	if err := s.write(ctx, models.NewDocument()); err != nil {
		return false, err
	}
	slog.Info("document initialized", "path", s.path, "categories", len(models.DefaultCategories))
	return true, nil
}

// Load reads and decodes the document. It never caches: every call sees the
// latest committed file.
func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.read(ctx)
}

// Save replaces the document on disk with doc.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.lock.acquire(ctx); err != nil {
		return err
	}
	defer s.lock.release()
	return s.write(ctx, doc)
}

// Update runs a read-modify-write cycle under the write lock: the latest
// document is loaded, passed to fn, and saved only if fn returns nil. An
// error from fn is returned unchanged and leaves the file untouched.
//
// Concurrent Update calls are linearized in lock acquisition order, so no
// writer can overwrite another's change.
func (s *Store) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.lock.acquire(ctx); err != nil {
		return err
	}
	defer s.lock.release()

	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(ctx, doc)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// read loads the document without taking the lock.
func (s *Store) read(ctx context.Context) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: read document: %w", ErrStorageUnavailable, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, s.path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return doc, nil
}

// write atomically replaces the document file. The caller must hold the lock.
func (s *Store) write(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: write document: %w", ErrStorageUnavailable, err)
	}

	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStorageUnavailable, err)
	}
	tmpPath := tmp.Name()

	// Any failure from here on must not leave the temp file behind.
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, step, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %w", ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace %s: %w", ErrStorageUnavailable, s.path, err)
	}

	slog.Debug("document saved", "path", s.path, "categories", len(doc.Categories), "topics", len(doc.Topics))
	return nil
}

// Decode parses a serialized document. Any syntax or shape error is
// reported as ErrStorageCorrupt.
func Decode(data []byte) (*models.Document, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrStorageCorrupt)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageCorrupt, err)
	}
	doc.Normalize()
	return &doc, nil
}

// Encode serializes a document with two-space indentation. HTML in topic
// content is written verbatim rather than \u-escaped.
func Encode(doc *models.Document) ([]byte, error) {
	doc.Normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
