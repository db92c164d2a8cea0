package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/domain/quotes"
)

type fakeExportStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeExportStore() *fakeExportStore {
	return &fakeExportStore{objects: make(map[string][]byte)}
}

func (s *fakeExportStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeExportStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://exports.example.com/" + key, nil
}

func TestExportService_ExportAll(t *testing.T) {
	quoteRepo := newFakeQuoteRepo()
	tagRepo := newFakeTagRepo()
	store := newFakeExportStore()

	q, err := quotes.NewQuote("Know thyself", "Socrates", []string{"wisdom"}, "seed")
	require.NoError(t, err)
	require.NoError(t, quoteRepo.Save(context.Background(), q))
	seedTag(t, tagRepo, "wisdom", 1)

	svc := NewExportService(quoteRepo, tagRepo, store, zap.NewNop())
	svc.now = fixedClock(time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC))

	result, err := svc.ExportAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "exports/quotes-20250314-150926.json", result.Key)
	assert.Equal(t, "https://exports.example.com/"+result.Key, result.DownloadURL)
	assert.Equal(t, 1, result.QuoteCount)
	assert.Equal(t, 1, result.TagCount)
	assert.Equal(t, 900, result.ExpiresIn)

	stored, ok := store.objects[result.Key]
	require.True(t, ok)

	var doc ExportDocument
	require.NoError(t, json.Unmarshal(stored, &doc))
	assert.Equal(t, "2025-03-14T15:09:26Z", doc.ExportedAt)
	require.Len(t, doc.Quotes, 1)
	assert.Equal(t, "Know thyself", doc.Quotes[0].Text)
}

func TestExportService_BuildDocumentCountsRecords(t *testing.T) {
	quoteRepo := newFakeQuoteRepo()
	tagRepo := newFakeTagRepo()
	for _, text := range []string{"one", "two", "three"} {
		q, err := quotes.NewQuote(text, "Anon", nil, "seed")
		require.NoError(t, err)
		require.NoError(t, quoteRepo.Save(context.Background(), q))
	}

	svc := NewExportService(quoteRepo, tagRepo, newFakeExportStore(), zap.NewNop())

	doc, err := svc.BuildDocument(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, doc.QuoteCount)
	assert.Equal(t, 0, doc.TagCount)
	assert.Len(t, doc.Quotes, 3)
}
