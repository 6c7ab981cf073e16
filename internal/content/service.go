// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content implements the category and topic operations on top of
// the document store. Every operation loads the latest document, validates,
// mutates in memory and persists through a single serialized update.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"topicpress/internal/integrity"
	"topicpress/internal/models"
	"topicpress/internal/slug"
)

// DocumentStore is the persistence the service needs. *store.Store
// satisfies it.
type DocumentStore interface {
	Load(ctx context.Context) (*models.Document, error)
	Update(ctx context.Context, fn func(doc *models.Document) error) error
}

// Service orchestrates validation, integrity checks and persistence.
type Service struct {
	docs  DocumentStore
	now   func() time.Time
	newID func() (string, error)
}

// NewService returns a Service backed by docs.
func NewService(docs DocumentStore) *Service {
	return &Service{
		docs:  docs,
		now:   time.Now,
		newID: newTopicID,
	}
}

// newTopicID returns a UUIDv7: time-ordered like the legacy millisecond
// ids, but unique even for topics created within the same millisecond.
func newTopicID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate topic id: %w", err)
	}
	return id.String(), nil
}

// ListAll returns the whole document.
func (s *Service) ListAll(ctx context.Context) (*models.Document, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	return doc, nil
}

// AddCategory appends a new category after trimming name.
func (s *Service) AddCategory(ctx context.Context, name string) error {
	name = trim(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	err := s.docs.Update(ctx, func(doc *models.Document) error {
		if integrity.IsDuplicateCategory(doc, name) {
			return ErrDuplicateCategory
		}
		doc.Categories = append(doc.Categories, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add category %q: %w", name, err)
	}

	slog.Info("category added", "name", name)
	return nil
}

// DeleteCategory removes a category that no topic references. The name is
// matched exactly, without trimming.
func (s *Service) DeleteCategory(ctx context.Context, name string) error {
	err := s.docs.Update(ctx, func(doc *models.Document) error {
		i := doc.CategoryIndex(name)
		if i < 0 {
			return ErrNotFound
		}
		if err := integrity.CanDeleteCategory(doc, name); err != nil {
			return err
		}
		doc.Categories = append(doc.Categories[:i], doc.Categories[i+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category %q: %w", name, err)
	}

	slog.Info("category deleted", "name", name)
	return nil
}

// AddTopic validates and files a new topic, returning it as stored.
func (s *Service) AddTopic(ctx context.Context, title, body, category string) (models.Topic, error) {
	title = trim(title)
	body = trim(body)
	if err := validateTopic(title, body, category); err != nil {
		return models.Topic{}, err
	}

	id, err := s.newID()
	if err != nil {
		return models.Topic{}, err
	}
	topic := models.Topic{
		ID:        id,
		Title:     title,
		Content:   body,
		Category:  category,
		CreatedAt: models.NewTimestamp(s.now()),
		Slug:      slug.Generate(title),
	}

	err = s.docs.Update(ctx, func(doc *models.Document) error {
		if !integrity.CanCreateTopic(doc, category) {
			return ErrUnknownCategory
		}
		doc.Topics = append(doc.Topics, topic)
		return nil
	})
	if err != nil {
		return models.Topic{}, fmt.Errorf("add topic: %w", err)
	}

	slog.Info("topic added", "id", topic.ID, "slug", topic.Slug, "category", category)
	return topic, nil
}

// DeleteTopic removes the topic with exactly this id and returns it.
func (s *Service) DeleteTopic(ctx context.Context, id string) (models.Topic, error) {
	var removed models.Topic
	err := s.docs.Update(ctx, func(doc *models.Document) error {
		i := doc.TopicIndex(id)
		if i < 0 {
			return ErrNotFound
		}
		removed = doc.Topics[i]
		doc.Topics = append(doc.Topics[:i], doc.Topics[i+1:]...)
		return nil
	})
	if err != nil {
		return models.Topic{}, fmt.Errorf("delete topic %q: %w", id, err)
	}

	// Images referenced by the topic's content stay on disk.
	slog.Info("topic deleted", "id", removed.ID, "slug", removed.Slug)
	return removed, nil
}

// GetTopic finds a topic by id, falling back to the first topic in stored
// order with a matching slug.
func (s *Service) GetTopic(ctx context.Context, idOrSlug string) (models.Topic, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return models.Topic{}, fmt.Errorf("get topic: %w", err)
	}
	t, ok := doc.FindTopic(idOrSlug)
	if !ok {
		return models.Topic{}, ErrNotFound
	}
	return t, nil
}

// TopicSummary is a topic plus a plain-text excerpt for listings.
type TopicSummary struct {
	models.Topic
	Excerpt string `json:"excerpt"`
}

// MarshalJSON writes the topic object with an added "excerpt" member. It is
// needed because the embedded Topic's own MarshalJSON would be promoted.
func (ts TopicSummary) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(ts.Topic)
	if err != nil {
		return nil, err
	}
	excerpt, err := json.Marshal(ts.Excerpt)
	if err != nil {
		return nil, err
	}
	out := append(b[:len(b)-1], `,"excerpt":`...)
	out = append(out, excerpt...)
	return append(out, '}'), nil
}

// ListTopics returns topics newest first, restricted to category when it is
// non-empty. Topics with equal timestamps keep their stored order.
func (s *Service) ListTopics(ctx context.Context, category string) ([]TopicSummary, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	items := make([]TopicSummary, 0, len(doc.Topics))
	for _, t := range doc.Topics {
		if category != "" && t.Category != category {
			continue
		}
		items = append(items, TopicSummary{Topic: t, Excerpt: Excerpt(t.Content)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt.Time)
	})
	return items, nil
}
