// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media validates uploaded images and hands them to a storage
// backend under a generated, collision-resistant name. Stored files are
// never deleted: topics reference them only as URLs inside their content.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"topicpress/internal/storage"
)

// DefaultMaxBytes is the per-file ceiling (20 MiB).
const DefaultMaxBytes = 20 << 20

// URLPrefix is the root-relative path uploaded files are served under.
const URLPrefix = "/uploads/"

// maxNameAttempts bounds how many generated names are tried per upload.
const maxNameAttempts = 3

var (
	// ErrNotAnImage means the declared MIME type is not image/*.
	ErrNotAnImage = errors.New("only image files are allowed")

	// ErrTooLarge means the upload exceeds the configured ceiling.
	ErrTooLarge = errors.New("image exceeds the maximum upload size")
)

// ImageStore accepts image uploads and returns their public URL.
type ImageStore struct {
	backend  storage.Backend
	maxBytes int64
	now      func() time.Time
	suffix   func() int
}

// NewImageStore returns an ImageStore writing to backend. A maxBytes of
// zero or less selects DefaultMaxBytes.
func NewImageStore(backend storage.Backend, maxBytes int64) *ImageStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &ImageStore{
		backend:  backend,
		maxBytes: maxBytes,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// MaxBytes returns the per-file ceiling.
func (s *ImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Store validates and persists one image read from r and returns its URL,
// e.g. /uploads/img-1700000000000-123456789.png.
func (s *ImageStore) Store(ctx context.Context, r io.Reader, declaredMIME, originalFilename string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(declaredMIME), "image/") {
		return "", ErrNotAnImage
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	// A taken name only means two uploads drew the same suffix in the same
	// millisecond; draw again.
	var name string
	for attempt := 1; ; attempt++ {
		name = s.filename(originalFilename)
		err = s.backend.Put(ctx, name, declaredMIME, bytes.NewReader(data), int64(len(data)))
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrExists) || attempt == maxNameAttempts {
			return "", fmt.Errorf("store image: %w", err)
		}
		slog.Debug("upload name taken, retrying", "file", name, "attempt", attempt)
	}

	slog.Info("image uploaded", "file", name, "size", len(data), "original", originalFilename)
	return URLPrefix + name, nil
}

// filename builds img-<unix-millis>-<9 digits><ext>.
func (s *ImageStore) filename(original string) string {
	return fmt.Sprintf("img-%d-%d%s", s.now().UnixMilli(), s.suffix(), extension(original))
}

// extension returns the lower-cased extension of name, reduced to
// characters that are safe in a URL path. Empty when there is none.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	var b strings.Builder
	for _, r := range ext {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() <= 1 {
		return ""
	}
	return b.String()
}

// randomSuffix returns a random number with exactly nine digits.
func randomSuffix() int {
	return rand.IntN(900_000_000) + 100_000_000
}
