package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects as files in a single flat directory.
type Local struct {
	dir string
}

// NewLocal returns a Local backend rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the directory objects are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Put creates a new file for key. The file is opened with O_EXCL so two
// writers can never share a path, and removed again if the copy fails.
func (l *Local) Put(ctx context.Context, key, _ string, body io.Reader, size int64) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid object key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(l.dir, key)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("put %s: %w", key, ErrExists)
		}
		return fmt.Errorf("put %s: %w", key, err)
	}

	n, err := io.Copy(f, body)
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("wrote %d bytes, expected %d", n, size)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("failed to remove partial upload", "path", path, "error", rmErr)
		}
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Handler serves the stored files. Directories are reported as not found,
// so the upload directory cannot be listed.
func (l *Local) Handler() http.Handler {
	return http.FileServer(filesOnly{http.Dir(l.dir)})
}

// filesOnly is an http.FileSystem that hides directories.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
