// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: a real document
// store in a temp dir, local upload storage and a chi mux with the routes
// under test. No external services are needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"topicpress/internal/content"
	"topicpress/internal/media"
	"topicpress/internal/render"
	"topicpress/internal/storage"
	"topicpress/internal/store"
)

type testEnv struct {
	mux       http.Handler
	service   *content.Service
	store     *store.Store
	uploadDir string
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "categories.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := st.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}

	uploadDir := filepath.Join(dir, "uploads")
	backend, err := storage.NewLocal(uploadDir)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	rn, err := render.New("")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	svc := content.NewService(st)
	api := NewAPI(svc, media.NewImageStore(backend, maxUpload), nil)
	public := NewPublic(svc, rn, nil)

	r := chi.NewRouter()
	r.Get("/api/data", api.Data)
	r.Post("/api/categories", api.CreateCategory)
	r.Delete("/api/categories/{name}", api.DeleteCategory)
	r.Get("/api/topics", api.ListTopics)
	r.Post("/api/topics", api.CreateTopic)
	r.Get("/api/topics/{idOrSlug}", api.GetTopic)
	r.Delete("/api/topics/{id}", api.DeleteTopic)
	r.Post("/api/upload-image", api.UploadImage)
	r.Get("/api/rules", api.Rules)
	r.Get("/api/stats", api.Stats)
	r.Get("/topic/{idOrSlug}", public.Topic)

	return &testEnv{mux: r, service: svc, store: st, uploadDir: uploadDir}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postJSON(t *testing.T, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return e.do(t, http.MethodPost, target, bytes.NewReader(b), "application/json")
}

// decode unmarshals a JSON response body into a generic map.
func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return m
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, strings.TrimSpace(rr.Body.String()))
	}
}

const validBody = "<p>This body is long enough.</p>"
