// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"topicpress/internal/content"
	"topicpress/internal/handlers"
	"topicpress/internal/media"
	"topicpress/internal/middleware"
	"topicpress/internal/render"
	"topicpress/internal/storage"
	"topicpress/internal/store"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// newTestRouter wires the full router over temp-dir storage.
func newTestRouter(t *testing.T, uploadsPerMinute int) (chi.Router, *content.Service) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "categories.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := st.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	backend, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	rn, err := render.New("")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	svc := content.NewService(st)
	limiter := middleware.NewRateLimiter(uploadsPerMinute, time.Minute)
	t.Cleanup(limiter.Stop)

	r := New(
		handlers.NewAPI(svc, media.NewImageStore(backend, 0), nil),
		handlers.NewPublic(svc, rn, nil),
		backend,
		limiter,
	)
	return r, svc
}

func TestRoutes(t *testing.T) {
	r, svc := newTestRouter(t, 10)
	topic, err := svc.AddTopic(context.Background(), "Routed topic", "<p>Some routed content</p>", "General")
	if err != nil {
		t.Fatalf("AddTopic: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/data", http.StatusOK},
		{http.MethodGet, "/api/rules", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodGet, "/api/topics", http.StatusOK},
		{http.MethodGet, "/api/topics/" + topic.Slug, http.StatusOK},
		{http.MethodGet, "/api/topics/unknown", http.StatusNotFound},
		{http.MethodGet, "/topic/" + topic.ID, http.StatusOK},
		{http.MethodGet, "/topic/unknown", http.StatusNotFound},
		{http.MethodGet, "/static/style.css", http.StatusOK},
		{http.MethodGet, "/uploads/missing.png", http.StatusNotFound},
		{http.MethodGet, "/uploads/", http.StatusNotFound},
		{http.MethodDelete, "/api/categories/Nope", http.StatusNotFound},
		{http.MethodPut, "/api/topics/" + topic.ID, http.StatusMethodNotAllowed},
		{http.MethodGet, "/does-not-exist", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestSecureHeadersApplied(t *testing.T) {
	r, _ := newTestRouter(t, 10)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("secure headers middleware not applied")
	}
}

func TestUploadIsRateLimited(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	upload := func() int {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.RemoteAddr = "10.1.1.1:5555"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	// The first request reaches the handler and fails for lack of a file.
	if code := upload(); code != http.StatusBadRequest {
		t.Fatalf("first upload: got %d, want 400", code)
	}
	if code := upload(); code != http.StatusTooManyRequests {
		t.Errorf("second upload: got %d, want 429", code)
	}

	// Other API routes are not limited.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.RemoteAddr = "10.1.1.1:5555"
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("data: got %d, want 200", rr.Code)
	}
}

func TestUploadThenServe(t *testing.T) {
	r, _ := newTestRouter(t, 10)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="image"; filename="dot.gif"`}
	h["Content-Type"] = []string{"image/gif"}
	part, _ := mw.CreatePart(h)
	part.Write([]byte("GIF89a"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: got %d (%s)", rr.Code, rr.Body.String())
	}

	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp.ImageURL, "/uploads/img-") {
		t.Fatalf("imageUrl: got %q", resp.ImageURL)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, resp.ImageURL, nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "GIF89a" {
		t.Errorf("serve upload: got %d %q", rr.Code, rr.Body.String())
	}
}
