// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for categories and topics. Every boundary, including
// the bundled admin client via GET /api/rules, reads them from here.
const (
	MinCategoryNameLen = 2
	MaxCategoryNameLen = 50
	MinTitleLen        = 3
	MaxTitleLen        = 200
	MinContentTextLen  = 10
	MaxContentBytes    = 500_000
	ExcerptLen         = 200
)

// Rules is the published form of the validation limits.
type Rules struct {
	CategoryName LengthRule `json:"categoryName"`
	Title        LengthRule `json:"title"`
	// ContentText bounds the tag-stripped text of a topic.
	ContentText LengthRule `json:"contentText"`
	// ContentMaxBytes bounds the raw HTML of a topic.
	ContentMaxBytes int `json:"contentMaxBytes"`
}

// LengthRule is an inclusive character-count range. Max zero means unbounded.
type LengthRule struct {
	Min int `json:"min"`
	Max int `json:"max,omitempty"`
}

// CurrentRules returns the limits enforced by the service.
func CurrentRules() Rules {
	return Rules{
		CategoryName:    LengthRule{Min: MinCategoryNameLen, Max: MaxCategoryNameLen},
		Title:           LengthRule{Min: MinTitleLen, Max: MaxTitleLen},
		ContentText:     LengthRule{Min: MinContentTextLen},
		ContentMaxBytes: MaxContentBytes,
	}
}

// tagPattern matches anything that looks like an HTML tag.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML tags, keeping the text between them.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Excerpt returns the plain text of an HTML fragment, cut to ExcerptLen
// characters with "..." appended when truncated.
func Excerpt(htmlContent string) string {
	text := html.UnescapeString(StripTags(htmlContent))
	if utf8.RuneCountInString(text) <= ExcerptLen {
		return text
	}
	return string([]rune(text)[:ExcerptLen]) + "..."
}

// validateCategoryName checks an already trimmed category name.
func validateCategoryName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "Category name is required"}
	}
	n := utf8.RuneCountInString(name)
	if n < MinCategoryNameLen {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("Category name must be at least %d characters", MinCategoryNameLen)}
	}
	if n > MaxCategoryNameLen {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("Category name must be at most %d characters", MaxCategoryNameLen)}
	}
	return nil
}

// validateTopic checks already trimmed topic inputs and returns the first
// error found.
func validateTopic(title, body, category string) error {
	if title == "" || body == "" || category == "" {
		return &ValidationError{Message: "Title, content, and category are required"}
	}

	n := utf8.RuneCountInString(title)
	if n < MinTitleLen {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("Title must be at least %d characters", MinTitleLen)}
	}
	if n > MaxTitleLen {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("Title must be at most %d characters", MaxTitleLen)}
	}

	if len(body) > MaxContentBytes {
		return &ValidationError{Field: "content", Message: "Content is too large. Please reduce text content."}
	}
	if utf8.RuneCountInString(StripTags(body)) < MinContentTextLen {
		return &ValidationError{Field: "content", Message: fmt.Sprintf("Content must be at least %d characters", MinContentTextLen)}
	}
	return nil
}

// trim normalizes user input the same way for every operation.
func trim(s string) string {
	return strings.TrimSpace(s)
}
