// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// timestampLayout matches the ISO-8601 form produced by JavaScript's
// Date.prototype.toISOString: always three fractional digits.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a point in time persisted as an ISO-8601 string with
// millisecond precision, e.g. "2024-01-01T00:00:00.000Z".
//
// Values read from disk that are not in that exact form (hand edits, epoch
// milliseconds, empty strings) are kept verbatim and written back unchanged.
// Time holds whatever could be parsed from them and is zero otherwise.
type Timestamp struct {
	time.Time

	// raw is the JSON text as read, set only when it differs from what
	// MarshalJSON would produce for Time.
	raw string
}

// NewTimestamp truncates t to milliseconds and converts it to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// String returns the persisted representation, or "" when no time is known.
func (ts Timestamp) String() string {
	if ts.Time.IsZero() {
		return ""
	}
	return ts.Time.Format(timestampLayout)
}

// IsZero reports whether the timestamp is unset. A value kept verbatim
// from disk is never zero, so it survives omitzero.
func (ts Timestamp) IsZero() bool {
	return ts.raw == "" && ts.Time.IsZero()
}

// MarshalJSON encodes the timestamp as a quoted ISO-8601 string, or the
// original text for values that were not in that form.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.raw != "" {
		return []byte(ts.raw), nil
	}
	return []byte(`"` + ts.Time.Format(timestampLayout) + `"`), nil
}

// UnmarshalJSON never fails: RFC 3339 strings and epoch milliseconds are
// parsed, anything else leaves Time zero.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	*ts = Timestamp{}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts.Time = t
			if t.Format(timestampLayout) == s {
				return nil
			}
		}
	} else {
		var ms int64
		if err := json.Unmarshal(b, &ms); err == nil {
			ts.Time = time.UnixMilli(ms).UTC()
		}
	}
	ts.raw = string(b)
	return nil
}

// Topic is a single article filed under exactly one category. Every field
// is fixed at creation; topics are never edited, only deleted.
type Topic struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt Timestamp `json:"createdAt,omitzero"`
	Slug      string    `json:"slug"`

	// extra holds members this version does not know about.
	extra members
}

// topicFields is Topic without its JSON methods.
type topicFields Topic

var topicKeys = []string{"id", "title", "content", "category", "createdAt", "slug"}

// MarshalJSON writes the known fields followed by any unknown members
// that were read with the topic.
func (t Topic) MarshalJSON() ([]byte, error) {
	b, err := marshalNoEscape(topicFields(t))
	if err != nil {
		return nil, err
	}
	return t.extra.appendTo(b), nil
}

// UnmarshalJSON reads the known fields and keeps every other member.
func (t *Topic) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f topicFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	extra, err := unknownMembers(b, topicKeys)
	if err != nil {
		return err
	}
	f.extra = extra
	*t = Topic(f)
	return nil
}
