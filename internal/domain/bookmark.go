package domain

import (
	"strings"
	"time"
)

const (
	// DefaultCategory is used whenever a bookmark has no category.
	DefaultCategory = "Uncategorized"

	// TimeLayout is the ISO-8601 layout used for createTime (UTC, milliseconds).
	TimeLayout = "2006-01-02T15:04:05.000Z"
)

// Bookmark is one saved link entry.
//
// The JSON field names are the persisted format and must not change.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated at creation: base-36 milliseconds + random suffix.
	ID string `json:"id" yaml:"id"`

	// ─────────────────────────────
	// Editable fields
	// ─────────────────────────────

	// Title is the display name. Example: "Go documentation"
	Title string `json:"title" yaml:"title"`

	// URL is the link target. Example: https://go.dev/doc/
	URL string `json:"url" yaml:"url"`

	// Category groups bookmarks; blank means DefaultCategory.
	Category string `json:"category" yaml:"category"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreateTime is set once at creation and never overwritten by edits.
	CreateTime string `json:"createTime" yaml:"createTime"`
}

// Draft carries the caller-supplied fields of a new bookmark.
// Add passes them through as given; the HTTP layer validates them first.
type Draft struct {
	Title    string `json:"title" validate:"required"`
	URL      string `json:"url" validate:"required"`
	Category string `json:"category,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title    *string `json:"title,omitempty"`
	URL      *string `json:"url,omitempty"`
	Category *string `json:"category,omitempty"`

	// CreateTime is accepted on the wire but never applied.
	CreateTime *string `json:"createTime,omitempty"`
}

// Apply merges p over b. ID and CreateTime always keep b's values.
func (p Patch) Apply(b Bookmark) Bookmark {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	return b
}

// ImportRecord is the loose shape accepted by a wholesale replace.
// Title and URL are pointers so that a missing field can be told apart from an empty one.
type ImportRecord struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	Title      *string `json:"title" yaml:"title" validate:"required"`
	URL        *string `json:"url" yaml:"url" validate:"required"`
	Category   *string `json:"category,omitempty" yaml:"category,omitempty"`
	CreateTime string  `json:"createTime,omitempty" yaml:"createTime,omitempty"`
}

// CategoryOrDefault returns c, or DefaultCategory when c is blank.
func CategoryOrDefault(c string) string {
	if strings.TrimSpace(c) == "" {
		return DefaultCategory
	}
	return c
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses any RFC 3339 timestamp, including TimeLayout values.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
