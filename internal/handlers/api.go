// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers: the JSON API used by the
// admin and category pages, and the public topic pages.
package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"topicpress/internal/cache"
	"topicpress/internal/content"
	"topicpress/internal/media"
)

// API groups the JSON API handlers.
type API struct {
	service   *content.Service
	images    *media.ImageStore
	pageCache *cache.PageCache
}

// NewAPI creates the API handler group. pageCache may be nil when Valkey is
// not configured.
func NewAPI(service *content.Service, images *media.ImageStore, pageCache *cache.PageCache) *API {
	return &API{service: service, images: images, pageCache: pageCache}
}

// successResponse acknowledges a mutation.
type successResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	DeletedCategory string `json:"deletedCategory,omitempty"`
	Topic           any    `json:"topic,omitempty"`
	DeletedTopic    any    `json:"deletedTopic,omitempty"`
}

// categoryRequest is the body of POST /api/categories, as JSON or form.
type categoryRequest struct {
	Name string `json:"name" form:"name"`
}

func (c *categoryRequest) Bind(r *http.Request) error { return nil }

// topicRequest is the body of POST /api/topics, as JSON or form.
type topicRequest struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category"`
}

func (t *topicRequest) Bind(r *http.Request) error { return nil }

// Data returns the whole document.
func (a *API) Data(w http.ResponseWriter, r *http.Request) {
	doc, err := a.service.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err, "Not found", "Failed to load data")
		return
	}
	render.JSON(w, r, doc)
}

// CreateCategory adds a category.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := render.Bind(r, &req); err != nil {
		writeJSONError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.service.AddCategory(r.Context(), req.Name); err != nil {
		writeError(w, r, err, "Category not found", "Failed to add category")
		return
	}
	render.JSON(w, r, successResponse{Success: true, Message: "Category added successfully"})
}

// DeleteCategory removes an unused category named by the URL-decoded path
// segment.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")

	if err := a.service.DeleteCategory(r.Context(), name); err != nil {
		writeError(w, r, err, "Category not found", "Failed to delete category")
		return
	}
	render.JSON(w, r, successResponse{
		Success:         true,
		Message:         "Category deleted successfully",
		DeletedCategory: name,
	})
}

// CreateTopic files a new topic and returns it.
func (a *API) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := render.Bind(r, &req); err != nil {
		writeJSONError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	topic, err := a.service.AddTopic(r.Context(), req.Title, req.Content, req.Category)
	if err != nil {
		writeError(w, r, err, "Topic not found", "Failed to add topic")
		return
	}
	a.pageCache.InvalidateAll(r.Context())

	render.JSON(w, r, successResponse{Success: true, Message: "Topic added successfully", Topic: topic})
}

// GetTopic returns a topic by id or slug.
func (a *API) GetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := a.service.GetTopic(r.Context(), pathParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, r, err, "Topic not found", "Failed to load topic")
		return
	}
	render.JSON(w, r, topic)
}

// DeleteTopic removes a topic by id and returns it.
func (a *API) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	removed, err := a.service.DeleteTopic(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Topic not found", "Failed to delete topic")
		return
	}
	a.pageCache.InvalidateAll(r.Context())

	render.JSON(w, r, successResponse{Success: true, Message: "Topic deleted successfully", DeletedTopic: removed})
}

// ListTopics returns topics newest first with excerpts, optionally
// filtered by the category query parameter.
func (a *API) ListTopics(w http.ResponseWriter, r *http.Request) {
	items, err := a.service.ListTopics(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err, "Not found", "Failed to load topics")
		return
	}
	render.JSON(w, r, items)
}

// Rules publishes the validation limits so clients can mirror them.
func (a *API) Rules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, content.CurrentRules())
}

// Stats returns dashboard statistics.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := a.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "Not found", "Failed to load statistics")
		return
	}
	render.JSON(w, r, st)
}

// multipartOverhead is extra body room for multipart headers and boundaries.
const multipartOverhead = 1 << 20

// UploadImage stores the multipart file field "image" and returns its URL.
// The editor's paste/drag handler and its file picker both post here.
func (a *API) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.images.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, media.ErrTooLarge, "", "")
			return
		}
		writeJSONError(w, r, "No image file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageURL, err := a.images.Store(r.Context(), file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		writeError(w, r, err, "Not found", "Failed to upload image")
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "imageUrl": imageURL})
}

// pathParam returns a decoded URL parameter. chi yields the escaped form
// when the request path carries escapes that differ from the default
// encoding (such as %2F).
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
