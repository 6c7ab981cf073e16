// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted data types: the Document aggregate
// and the Topic entries it holds. Categories are plain names.
package models

import "encoding/json"

// DefaultCategories seed a freshly created document.
var DefaultCategories = []string{"General", "Technology", "Lifestyle"}

// Document is the aggregate root persisted as a single JSON file. Category
// order is insertion order and is meaningful for display.
type Document struct {
	Categories []string `json:"categories"`
	Topics     []Topic  `json:"topics"`

	// extra holds top-level members this version does not know about.
	extra members
}

// documentFields is Document without its JSON methods.
type documentFields Document

var documentKeys = []string{"categories", "topics"}

// MarshalJSON writes categories and topics followed by any unknown
// top-level members that were read with the document.
func (d Document) MarshalJSON() ([]byte, error) {
	b, err := marshalNoEscape(documentFields(d))
	if err != nil {
		return nil, err
	}
	return d.extra.appendTo(b), nil
}

// UnmarshalJSON reads categories and topics and keeps every other member.
func (d *Document) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f documentFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	extra, err := unknownMembers(b, documentKeys)
	if err != nil {
		return err
	}
	f.extra = extra
	*d = Document(f)
	return nil
}

// NewDocument returns the seed document written on first run.
func NewDocument() *Document {
	cats := make([]string, len(DefaultCategories))
	copy(cats, DefaultCategories)
	return &Document{Categories: cats, Topics: []Topic{}}
}

// Normalize replaces nil sequences with empty ones so the document always
// serializes as arrays rather than null.
func (d *Document) Normalize() {
	if d.Categories == nil {
		d.Categories = []string{}
	}
	if d.Topics == nil {
		d.Topics = []Topic{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		Categories: make([]string, len(d.Categories)),
		Topics:     make([]Topic, len(d.Topics)),
		extra:      d.extra,
	}
	copy(c.Categories, d.Categories)
	copy(c.Topics, d.Topics)
	return c
}

// CategoryIndex returns the position of the category with exactly this
// name, or -1.
func (d *Document) CategoryIndex(name string) int {
	for i, c := range d.Categories {
		if c == name {
			return i
		}
	}
	return -1
}

// TopicIndex returns the position of the topic with exactly this id, or -1.
func (d *Document) TopicIndex(id string) int {
	for i := range d.Topics {
		if d.Topics[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTopic looks a topic up by id first and falls back to the first topic
// in stored order whose slug equals key. Slugs are not unique, so a slug
// lookup may match several topics; the earliest stored one wins.
func (d *Document) FindTopic(key string) (Topic, bool) {
	if key == "" {
		return Topic{}, false
	}
	if i := d.TopicIndex(key); i >= 0 {
		return d.Topics[i], true
	}
	for _, t := range d.Topics {
		if t.Slug == key {
			return t, true
		}
	}
	return Topic{}, false
}
