// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"topicpress/internal/cache"
	"topicpress/internal/content"
	"topicpress/internal/render"
)

// Public groups handlers for the public topic pages. It checks the Valkey
// page cache before loading the document, and stores rendered pages on miss.
type Public struct {
	service   *content.Service
	renderer  *render.Renderer
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(service *content.Service, renderer *render.Renderer, pageCache *cache.PageCache) *Public {
	return &Public{service: service, renderer: renderer, pageCache: pageCache}
}

// Topic renders a topic page by id or slug.
func (p *Public) Topic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := pathParam(r, "idOrSlug")

	if cached, ok := p.pageCache.Get(ctx, cache.TopicKey(key)); ok {
		writeHTML(w, http.StatusOK, cached)
		return
	}

	gen := p.pageCache.Generation()
	topic, err := p.service.GetTopic(ctx, key)
	if errors.Is(err, content.ErrNotFound) {
		p.notFound(w)
		return
	}
	if err != nil {
		slog.Error("load topic page failed", "key", key, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rendered, err := p.renderer.Topic(topic)
	if err != nil {
		slog.Error("render topic page failed", "id", topic.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.SetIfCurrent(ctx, cache.TopicKey(key), rendered, gen)
	writeHTML(w, http.StatusOK, rendered)
}

// notFound writes the 404 page. It is never cached, so a topic created
// later under the same key shows up immediately.
func (p *Public) notFound(w http.ResponseWriter) {
	page, err := p.renderer.NotFound()
	if err != nil {
		slog.Error("render not found page failed", "error", err)
		http.Error(w, "Topic Not Found", http.StatusNotFound)
		return
	}
	writeHTML(w, http.StatusNotFound, page)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
