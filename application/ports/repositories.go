package ports

import (
	"context"
	"time"

	"quoteme-backend/domain/quotes"
)

// QuoteRepository defines the interface for quote persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type QuoteRepository interface {
	// Save persists a quote and its tag mappings in one transaction
	Save(ctx context.Context, quote *quotes.Quote) error

	// GetByID retrieves a quote by its ID
	GetByID(ctx context.Context, id string) (*quotes.Quote, error)

	// Update rewrites a quote and reconciles its tag mappings
	Update(ctx context.Context, quote *quotes.Quote, oldTags []string) error

	// Delete removes a quote and its tag mappings
	Delete(ctx context.Context, quote *quotes.Quote) error

	// Random returns one quote drawn from the newest quotes, optionally
	// restricted to a tag
	Random(ctx context.Context, tag string) (*quotes.Quote, error)

	// List pages through quotes in reverse chronological order
	List(ctx context.Context, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error)

	// ListByTag pages through quotes carrying a tag
	ListByTag(ctx context.Context, tag string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error)

	// ListByAuthor pages through quotes by normalized author name
	ListByAuthor(ctx context.Context, author string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error)

	// ListAll streams every quote; used by search, export and duplicate checks
	ListAll(ctx context.Context) ([]*quotes.Quote, error)

	// Count returns the maintained total quote counter
	Count(ctx context.Context) (int, error)

	// SetImageURL updates only the image URL of a quote
	SetImageURL(ctx context.Context, id, imageURL string) error
}

// TagRepository defines the interface for tag records and their counters
type TagRepository interface {
	// Save persists a tag record
	Save(ctx context.Context, tag *quotes.Tag) error

	// GetByName retrieves a tag by name
	GetByName(ctx context.Context, name string) (*quotes.Tag, error)

	// ListAll retrieves every tag record
	ListAll(ctx context.Context) ([]*quotes.Tag, error)

	// Delete removes a tag record
	Delete(ctx context.Context, name string) error

	// Rename moves a tag and all its quote mappings to a new name
	Rename(ctx context.Context, oldName, newName string) error

	// AdjustCount atomically shifts a tag's quote count
	AdjustCount(ctx context.Context, name string, delta int) error
}

// Favorite links a user to a quote they saved, with a denormalized snapshot
// so the favorites list renders without extra lookups.
type Favorite struct {
	UserID    string        `json:"user_id"`
	QuoteID   string        `json:"quote_id"`
	Quote     *quotes.Quote `json:"quote,omitempty"`
	CreatedAt string        `json:"created_at"`
}

// FavoriteRepository defines the interface for per-user favorites
type FavoriteRepository interface {
	// Save persists a favorite
	Save(ctx context.Context, fav *Favorite) error

	// Delete removes a favorite
	Delete(ctx context.Context, userID, quoteID string) error

	// ListByUser retrieves all favorites of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*Favorite, error)

	// Exists reports whether a user has favorited a quote
	Exists(ctx context.Context, userID, quoteID string) (bool, error)
}

// SubscriptionRepository defines the interface for nugget subscriptions
type SubscriptionRepository interface {
	// Save persists a subscription keyed by email
	Save(ctx context.Context, sub *quotes.Subscription) error

	// GetByEmail retrieves a subscription
	GetByEmail(ctx context.Context, email string) (*quotes.Subscription, error)

	// ListActive retrieves all currently subscribed records
	ListActive(ctx context.Context) ([]*quotes.Subscription, error)

	// ListAll retrieves every subscription record
	ListAll(ctx context.Context) ([]*quotes.Subscription, error)

	// Delete removes a subscription record entirely
	Delete(ctx context.Context, email string) error
}

// ProposalRepository defines the interface for user-submitted proposals
type ProposalRepository interface {
	// Save persists a proposal
	Save(ctx context.Context, proposal *quotes.Proposal) error

	// GetByID retrieves a proposal
	GetByID(ctx context.Context, id string) (*quotes.Proposal, error)

	// ListByStatus retrieves proposals with the given status, or all when
	// status is empty
	ListByStatus(ctx context.Context, status string) ([]*quotes.Proposal, error)

	// Delete removes a proposal
	Delete(ctx context.Context, id string) error
}

// JobRepository defines the interface for image generation job tracking
type JobRepository interface {
	// Save persists a job record
	Save(ctx context.Context, job *quotes.ImageJob) error

	// GetByID retrieves a job
	GetByID(ctx context.Context, id string) (*quotes.ImageJob, error)
}

// JobQueue enqueues image generation work for the background worker
type JobQueue interface {
	// Enqueue submits a job for asynchronous processing
	Enqueue(ctx context.Context, job *quotes.ImageJob) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, eventType string, detail interface{}) error
}

// Email is one outbound message with both HTML and plain-text bodies.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender delivers transactional and nugget email
type EmailSender interface {
	// Send delivers one message
	Send(ctx context.Context, msg *Email) error
}

// ImageStore persists generated quote images
type ImageStore interface {
	// Put stores image bytes and returns the public URL
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ExportStore writes export archives and hands back short-lived download links
type ExportStore interface {
	// Put stores an export document
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// PresignGet returns a time-limited download URL
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DirectoryUser is an identity record from the user pool.
type DirectoryUser struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Status    string   `json:"status"`
	Enabled   bool     `json:"enabled"`
	Groups    []string `json:"groups,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// UserDirectory reads users and group membership from the identity provider
type UserDirectory interface {
	// ListUsers pages through the user pool
	ListUsers(ctx context.Context, limit int, paginationToken string) ([]*DirectoryUser, string, error)

	// GetUser retrieves a single user by username
	GetUser(ctx context.Context, username string) (*DirectoryUser, error)

	// ListGroupsForUser retrieves the groups a user belongs to
	ListGroupsForUser(ctx context.Context, username string) ([]string, error)
}

// TagSuggester proposes tags for a quote using a language model
type TagSuggester interface {
	// SuggestTags returns candidate tags for a quote, preferring existing ones
	SuggestTags(ctx context.Context, text, author string, existingTags []string) ([]string, error)
}

// QuoteFinder looks up well-known quotes by author using a language model
type QuoteFinder interface {
	// FindByAuthor returns notable quotes attributed to an author
	FindByAuthor(ctx context.Context, author string, count int) ([]FoundQuote, error)
}

// FoundQuote is a model-suggested quote with its attribution evidence.
// Confidence is high, medium or low depending on how well documented the
// attribution is.
type FoundQuote struct {
	Text       string `json:"quote"`
	Source     string `json:"source,omitempty"`
	Year       string `json:"year,omitempty"`
	Context    string `json:"context,omitempty"`
	Confidence string `json:"confidence"`
}

// ImageGenerator renders an illustration for a quote
type ImageGenerator interface {
	// Generate produces image bytes for the given prompt
	Generate(ctx context.Context, prompt string) ([]byte, error)
}
