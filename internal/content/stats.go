package content

import (
	"context"
	"fmt"
	"time"

	"topicpress/internal/integrity"
)

// Stats summarizes the document for the admin dashboard.
type Stats struct {
	TotalTopics     int             `json:"totalTopics"`
	TotalCategories int             `json:"totalCategories"`
	TopicsThisMonth int             `json:"topicsThisMonth"`
	Categories      []CategoryStats `json:"categories"`
}

// CategoryStats is the topic count of one category.
type CategoryStats struct {
	Name   string `json:"name"`
	Topics int    `json:"topics"`
}

// Stats counts topics and categories. "This month" starts at midnight UTC
// on the first day of the current month.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	st := Stats{
		TotalTopics:     len(doc.Topics),
		TotalCategories: len(doc.Categories),
		Categories:      make([]CategoryStats, 0, len(doc.Categories)),
	}
	for _, t := range doc.Topics {
		if !t.CreatedAt.Before(monthStart) {
			st.TopicsThisMonth++
		}
	}
	for _, c := range doc.Categories {
		st.Categories = append(st.Categories, CategoryStats{
			Name:   c,
			Topics: integrity.TopicsInCategory(doc, c),
		})
	}
	return st, nil
}
