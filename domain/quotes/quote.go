package quotes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"quoteme-backend/pkg/errors"
)

// Quote is the central aggregate: a piece of text attributed to an author,
// optionally categorized with tags and illustrated with a generated image.
type Quote struct {
	ID         string   `json:"id"`
	Text       string   `json:"quote"`
	Author     string   `json:"author"`
	Tags       []string `json:"tags"`
	ImageURL   string   `json:"image_url,omitempty"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	CreatedBy  string   `json:"created_by,omitempty"`
	UpdatedBy  string   `json:"updated_by,omitempty"`
	ProposedBy string   `json:"proposed_by,omitempty"`
	ApprovedBy string   `json:"approved_by,omitempty"`
}

// NewQuote creates a quote with a fresh ID and timestamps. Text and author
// are trimmed; tags are deduplicated preserving their order.
func NewQuote(text, author string, tags []string, createdBy string) (*Quote, error) {
	text = strings.TrimSpace(text)
	author = strings.TrimSpace(author)

	if text == "" {
		return nil, errors.NewValidationError("quote text is required and cannot be empty")
	}
	if author == "" {
		return nil, errors.NewValidationError("author is required and cannot be empty")
	}

	cleanTags, err := CleanTags(tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &Quote{
		ID:        uuid.New().String(),
		Text:      text,
		Author:    author,
		Tags:      cleanTags,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}, nil
}

// ApplyUpdate replaces the mutable fields of the quote, preserving creation
// metadata and refreshing the update audit trail.
func (q *Quote) ApplyUpdate(text, author string, tags []string, updatedBy string) error {
	text = strings.TrimSpace(text)
	author = strings.TrimSpace(author)

	if text == "" {
		return errors.NewValidationError("quote text is required and cannot be empty")
	}
	if author == "" {
		return errors.NewValidationError("author is required and cannot be empty")
	}

	cleanTags, err := CleanTags(tags)
	if err != nil {
		return err
	}

	q.Text = text
	q.Author = author
	q.Tags = cleanTags
	q.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	q.UpdatedBy = updatedBy
	return nil
}

// NormalizedAuthor returns the author in search-normalized form.
func (q *Quote) NormalizedAuthor() string {
	return Normalize(q.Author)
}

// NormalizedText returns the first 100 characters of the normalized quote
// text, the prefix persisted for search.
func (q *Quote) NormalizedText() string {
	n := Normalize(q.Text)
	if len(n) > 100 {
		return n[:100]
	}
	return n
}

// HasTag reports whether the quote carries the given tag.
func (q *Quote) HasTag(name string) bool {
	for _, t := range q.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// CleanTags trims, validates and deduplicates a tag list, preserving order.
func CleanTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return []string{}, nil
	}

	seen := make(map[string]struct{}, len(tags))
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, errors.NewValidationError("all tags must be non-empty strings")
		}
		if len(tag) > MaxTagLength {
			return nil, errors.NewValidationError("tag names must be at most 50 characters")
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		clean = append(clean, tag)
	}
	return clean, nil
}

// MaxTagLength bounds tag names; longer values are rejected at the edge.
const MaxTagLength = 50

// TagDiff computes the mapping changes needed when a quote's tags move from
// old to new: tags to remove, tags to add. Tags present in both are untouched.
func TagDiff(old, new []string) (toRemove, toAdd []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, t := range old {
		oldSet[t] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(new))
	for _, t := range new {
		newSet[t] = struct{}{}
	}

	for _, t := range old {
		if _, ok := newSet[t]; !ok {
			toRemove = append(toRemove, t)
		}
	}
	for _, t := range new {
		if _, ok := oldSet[t]; !ok {
			toAdd = append(toAdd, t)
		}
	}
	return toRemove, toAdd
}
