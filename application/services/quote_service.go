package services

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

// Event types published on the application bus.
const (
	EventQuoteCreated = "quote.created"
	EventQuoteUpdated = "quote.updated"
	EventQuoteDeleted = "quote.deleted"
)

// QuoteService implements quote CRUD, random selection and search.
// Handlers call it directly; Lambda entry points share the same instance.
type QuoteService struct {
	quoteRepo ports.QuoteRepository
	tagRepo   ports.TagRepository
	events    ports.EventPublisher
	logger    *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo ports.QuoteRepository,
	tagRepo ports.TagRepository,
	events ports.EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		tagRepo:   tagRepo,
		events:    events,
		logger:    logger,
	}
}

// CreateQuote validates, checks duplicates and persists a new quote.
// Duplicate matches are rejected unless force is set.
func (s *QuoteService) CreateQuote(ctx context.Context, text, author string, tags []string, createdBy string, force bool) (*quotes.Quote, error) {
	quote, err := quotes.NewQuote(text, author, tags, createdBy)
	if err != nil {
		return nil, err
	}

	if !force {
		matches, err := s.FindDuplicates(ctx, text, author)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			details := make([]map[string]interface{}, 0, len(matches))
			for _, m := range matches {
				details = append(details, map[string]interface{}{
					"id":     m.Quote.ID,
					"quote":  m.Quote.Text,
					"author": m.Quote.Author,
					"reason": m.Reason,
				})
			}
			return nil, errors.NewConflictError("similar quotes already exist").
				WithCode("DUPLICATE_QUOTE").
				WithDetails(map[string]interface{}{"matches": details})
		}
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.ensureTags(ctx, quote.Tags, createdBy)

	if err := s.events.Publish(ctx, EventQuoteCreated, quote); err != nil {
		s.logger.Warn("failed to publish quote created event",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
		)
	}

	s.logger.Info("Quote created",
		zap.String("quoteID", quote.ID),
		zap.String("author", quote.Author),
		zap.Int("tags", len(quote.Tags)),
	)

	return quote, nil
}

// GetQuote retrieves a single quote.
func (s *QuoteService) GetQuote(ctx context.Context, id string) (*quotes.Quote, error) {
	return s.quoteRepo.GetByID(ctx, id)
}

// RandomQuote returns one quote, optionally restricted to a tag.
func (s *QuoteService) RandomQuote(ctx context.Context, tag string) (*quotes.Quote, error) {
	return s.quoteRepo.Random(ctx, tag)
}

// RandomQuoteByAuthor picks uniformly from an author's most recent quotes.
func (s *QuoteService) RandomQuoteByAuthor(ctx context.Context, author string) (*quotes.Quote, error) {
	candidates, _, err := s.quoteRepo.ListByAuthor(ctx, strings.ToLower(author), 100, nil)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.NewNotFoundError("quote")
	}
	return candidates[rand.Intn(len(candidates))], nil
}

// UpdateQuote applies field changes and reconciles tag mappings.
func (s *QuoteService) UpdateQuote(ctx context.Context, id, text, author string, tags []string, updatedBy string) (*quotes.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldTags := append([]string(nil), quote.Tags...)
	if err := quote.ApplyUpdate(text, author, tags, updatedBy); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.Update(ctx, quote, oldTags); err != nil {
		return nil, err
	}

	removed, added := quotes.TagDiff(oldTags, quote.Tags)
	s.ensureTags(ctx, added, updatedBy)
	s.dropTagCounts(ctx, removed)

	if err := s.events.Publish(ctx, EventQuoteUpdated, quote); err != nil {
		s.logger.Warn("failed to publish quote updated event",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
		)
	}

	s.logger.Info("Quote updated", zap.String("quoteID", quote.ID))

	return quote, nil
}

// DeleteQuote removes a quote and its tag mappings.
func (s *QuoteService) DeleteQuote(ctx context.Context, id string) error {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.quoteRepo.Delete(ctx, quote); err != nil {
		return err
	}

	s.dropTagCounts(ctx, quote.Tags)

	if err := s.events.Publish(ctx, EventQuoteDeleted, quote); err != nil {
		s.logger.Warn("failed to publish quote deleted event",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
		)
	}

	s.logger.Info("Quote deleted", zap.String("quoteID", id))
	return nil
}

// ListQuotes pages through quotes, optionally filtered by tag or author.
func (s *QuoteService) ListQuotes(ctx context.Context, tag, author string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	switch {
	case tag != "":
		return s.quoteRepo.ListByTag(ctx, tag, limit, startKey)
	case author != "":
		return s.quoteRepo.ListByAuthor(ctx, strings.ToLower(author), limit, startKey)
	default:
		return s.quoteRepo.List(ctx, limit, startKey)
	}
}

// SearchQuotes scans quote text and author for a case-insensitive substring.
func (s *QuoteService) SearchQuotes(ctx context.Context, query string, limit int) ([]*quotes.Quote, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, errors.NewValidationError("search query is required")
	}
	if limit <= 0 {
		limit = 50
	}

	all, err := s.quoteRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*quotes.Quote, 0, limit)
	for _, q := range all {
		if strings.Contains(strings.ToLower(q.Text), query) ||
			strings.Contains(strings.ToLower(q.Author), query) {
			results = append(results, q)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// FindDuplicates compares candidate text and author against the full corpus.
func (s *QuoteService) FindDuplicates(ctx context.Context, text, author string) ([]*quotes.DuplicateMatch, error) {
	all, err := s.quoteRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return quotes.FindDuplicates(text, author, all), nil
}

// AuthorStats aggregates quote counts and tag usage per author.
func (s *QuoteService) AuthorStats(ctx context.Context) ([]*quotes.Author, error) {
	all, err := s.quoteRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[string]*quotes.Author)
	tagSets := make(map[string]map[string]struct{})
	for _, q := range all {
		a, ok := byAuthor[q.Author]
		if !ok {
			a = &quotes.Author{Name: q.Author}
			byAuthor[q.Author] = a
			tagSets[q.Author] = make(map[string]struct{})
		}
		a.QuoteCount++
		if a.FirstQuoteDate == "" || q.CreatedAt < a.FirstQuoteDate {
			a.FirstQuoteDate = q.CreatedAt
		}
		if q.CreatedAt > a.LastQuoteDate {
			a.LastQuoteDate = q.CreatedAt
		}
		for _, t := range q.Tags {
			tagSets[q.Author][t] = struct{}{}
		}
	}

	authors := make([]*quotes.Author, 0, len(byAuthor))
	for name, a := range byAuthor {
		for t := range tagSets[name] {
			a.TagsUsed = append(a.TagsUsed, t)
		}
		sort.Strings(a.TagsUsed)
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].QuoteCount != authors[j].QuoteCount {
			return authors[i].QuoteCount > authors[j].QuoteCount
		}
		return authors[i].Name < authors[j].Name
	})
	return authors, nil
}

// TotalQuotes returns the maintained quote counter.
func (s *QuoteService) TotalQuotes(ctx context.Context) (int, error) {
	return s.quoteRepo.Count(ctx)
}

// ensureTags creates tag records for tags seen for the first time and bumps
// usage counters. Failures are logged, not surfaced; counters are advisory.
func (s *QuoteService) ensureTags(ctx context.Context, tags []string, createdBy string) {
	for _, name := range tags {
		if _, err := s.tagRepo.GetByName(ctx, name); err != nil {
			if !errors.IsNotFound(err) {
				s.logger.Warn("failed to look up tag", zap.Error(err), zap.String("tag", name))
				continue
			}
			tag, terr := quotes.NewTag(name, createdBy)
			if terr != nil {
				continue
			}
			if terr := s.tagRepo.Save(ctx, tag); terr != nil {
				s.logger.Warn("failed to create tag record", zap.Error(terr), zap.String("tag", name))
				continue
			}
		}
		if err := s.tagRepo.AdjustCount(ctx, name, 1); err != nil {
			s.logger.Warn("failed to bump tag counter", zap.Error(err), zap.String("tag", name))
		}
	}
}

// dropTagCounts decrements usage counters for tags a quote no longer carries.
func (s *QuoteService) dropTagCounts(ctx context.Context, tags []string) {
	for _, name := range tags {
		if err := s.tagRepo.AdjustCount(ctx, name, -1); err != nil {
			s.logger.Warn("failed to drop tag counter", zap.Error(err), zap.String("tag", name))
		}
	}
}
