// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists uploaded media files and serves them back under
// /uploads/. The default backend writes to a local directory; an
// S3-compatible backend is available for deployments without a shared disk.
package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// ErrExists is returned by Put when an object with the same key is already
// stored. Keys are never overwritten.
var ErrExists = errors.New("object already exists")

// Backend stores media objects under flat keys.
type Backend interface {
	// Put writes size bytes from body under key. On error nothing is left
	// behind under key.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// Handler serves stored objects. Requests arrive with the /uploads/
	// prefix already stripped.
	Handler() http.Handler
}
