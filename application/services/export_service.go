package services

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
)

// ExportService produces full-database JSON exports and short-lived
// download links for them.
type ExportService struct {
	quoteRepo ports.QuoteRepository
	tagRepo   ports.TagRepository
	store     ports.ExportStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService creates a new export service
func NewExportService(
	quoteRepo ports.QuoteRepository,
	tagRepo ports.TagRepository,
	store ports.ExportStore,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		quoteRepo: quoteRepo,
		tagRepo:   tagRepo,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// ExportDocument is the archive layout written to storage.
type ExportDocument struct {
	ExportedAt string          `json:"exported_at"`
	QuoteCount int             `json:"quote_count"`
	TagCount   int             `json:"tag_count"`
	Quotes     []*quotes.Quote `json:"quotes"`
	Tags       []*quotes.Tag   `json:"tags"`
}

// ExportResult points at a stored export.
type ExportResult struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
	QuoteCount  int    `json:"quote_count"`
	TagCount    int    `json:"tag_count"`
	ExpiresIn   int    `json:"expires_in_seconds"`
}

// downloadExpiry bounds how long export links stay valid.
const downloadExpiry = 15 * time.Minute

// ExportAll snapshots every quote and tag into a JSON document and returns
// a presigned download link.
func (s *ExportService) ExportAll(ctx context.Context) (*ExportResult, error) {
	doc, err := s.BuildDocument(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}

	key := fmt.Sprintf("exports/quotes-%s.json", s.now().UTC().Format("20060102-150405"))
	if err := s.store.Put(ctx, key, data, "application/json"); err != nil {
		return nil, err
	}

	url, err := s.store.PresignGet(ctx, key, downloadExpiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Export written",
		zap.String("key", key),
		zap.Int("quotes", doc.QuoteCount),
		zap.Int("tags", doc.TagCount),
	)

	return &ExportResult{
		Key:         key,
		DownloadURL: url,
		QuoteCount:  doc.QuoteCount,
		TagCount:    doc.TagCount,
		ExpiresIn:   int(downloadExpiry.Seconds()),
	}, nil
}

// BuildDocument assembles the export snapshot without storing it. The CLI
// uses this directly for local backups.
func (s *ExportService) BuildDocument(ctx context.Context) (*ExportDocument, error) {
	allQuotes, err := s.quoteRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	allTags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ExportDocument{
		ExportedAt: s.now().UTC().Format(time.RFC3339),
		QuoteCount: len(allQuotes),
		TagCount:   len(allTags),
		Quotes:     allQuotes,
		Tags:       allTags,
	}, nil
}
