package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/pkg/errors"
)

// AuthorQuoteLookup asks the language model for well-documented quotes by
// a given author, filtering out anything already in the catalog.
type AuthorQuoteLookup struct {
	finder    ports.QuoteFinder
	quoteRepo ports.QuoteRepository
	logger    *zap.Logger
}

// NewAuthorQuoteLookup creates a new author quote lookup service
func NewAuthorQuoteLookup(
	finder ports.QuoteFinder,
	quoteRepo ports.QuoteRepository,
	logger *zap.Logger,
) *AuthorQuoteLookup {
	return &AuthorQuoteLookup{
		finder:    finder,
		quoteRepo: quoteRepo,
		logger:    logger,
	}
}

// Lookup returns up to count model-suggested quotes for the author that are
// not already in the catalog.
func (s *AuthorQuoteLookup) Lookup(ctx context.Context, author string, count int) ([]ports.FoundQuote, error) {
	if s.finder == nil {
		return nil, errors.NewUnavailableError("author quote lookup")
	}

	found, err := s.finder.FindByAuthor(ctx, author, count)
	if err != nil {
		return nil, err
	}

	existing, _, err := s.quoteRepo.ListByAuthor(ctx, strings.ToLower(author), 200, nil)
	if err != nil {
		s.logger.Warn("Could not load existing quotes for dedup",
			zap.String("author", author),
			zap.Error(err))
		return found, nil
	}

	known := make(map[string]bool, len(existing))
	for _, q := range existing {
		known[normalizeQuoteText(q.Text)] = true
	}

	fresh := make([]ports.FoundQuote, 0, len(found))
	for _, f := range found {
		if known[normalizeQuoteText(f.Text)] {
			continue
		}
		fresh = append(fresh, f)
	}

	s.logger.Info("Author quote lookup complete",
		zap.String("author", author),
		zap.Int("found", len(found)),
		zap.Int("new", len(fresh)))
	return fresh, nil
}

func normalizeQuoteText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
