package quotes

import (
	"strings"
	"time"

	"quoteme-backend/pkg/errors"
)

// Tag is the denormalized tag record. QuoteCount is maintained by the
// aggregation processor rather than recomputed on read.
type Tag struct {
	Name       string `json:"name"`
	QuoteCount int    `json:"quote_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	LastUsed   string `json:"last_used,omitempty"`
}

// NewTag creates a tag record with zero usage.
func NewTag(name, createdBy string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("tag name is required")
	}
	if len(name) > MaxTagLength {
		return nil, errors.NewValidationError("tag names must be at most 50 characters")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &Tag{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
		LastUsed:  now,
	}, nil
}

// NormalizedName returns the tag name in search-normalized form.
func (t *Tag) NormalizedName() string {
	return strings.ToLower(t.Name)
}

// Author is the aggregated per-author statistics record, maintained
// incrementally as quotes are created, updated and deleted.
type Author struct {
	Name           string   `json:"name"`
	QuoteCount     int      `json:"quote_count"`
	TagsUsed       []string `json:"tags_used"`
	FirstQuoteDate string   `json:"first_quote_date,omitempty"`
	LastQuoteDate  string   `json:"last_quote_date,omitempty"`
}
