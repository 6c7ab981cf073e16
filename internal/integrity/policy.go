// Package integrity enforces the rules linking topics to categories: a
// topic may only be filed under an existing category, and a category that
// any topic still references cannot be deleted. There is no cascade and no
// reassignment path.
package integrity

import (
	"fmt"

	"topicpress/internal/models"
)

// BlockedError reports that a category cannot be deleted because Count
// topics still reference it.
type BlockedError struct {
	Category string
	Count    int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("category %q is used by %d topic(s)", e.Category, e.Count)
}

// CategoryExists reports whether name is a category, by exact match.
func CategoryExists(doc *models.Document, name string) bool {
	return doc.CategoryIndex(name) >= 0
}

// IsDuplicateCategory reports whether adding name would break category
// uniqueness. Comparison is exact and case-sensitive; callers trim first.
func IsDuplicateCategory(doc *models.Document, name string) bool {
	return CategoryExists(doc, name)
}

// CanCreateTopic reports whether a topic may be filed under category.
func CanCreateTopic(doc *models.Document, category string) bool {
	return CategoryExists(doc, category)
}

// TopicsInCategory counts topics whose category is exactly name.
func TopicsInCategory(doc *models.Document, name string) int {
	n := 0
	for i := range doc.Topics {
		if doc.Topics[i].Category == name {
			n++
		}
	}
	return n
}

// CanDeleteCategory returns a *BlockedError if any topic references name.
// It does not check that the category exists.
func CanDeleteCategory(doc *models.Document, name string) error {
	if n := TopicsInCategory(doc, name); n > 0 {
		return &BlockedError{Category: name, Count: n}
	}
	return nil
}
