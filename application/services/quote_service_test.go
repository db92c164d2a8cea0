package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/pkg/errors"
)

func newQuoteService(t *testing.T) (*QuoteService, *fakeQuoteRepo, *fakeTagRepo, *fakeEventPublisher) {
	t.Helper()
	quoteRepo := newFakeQuoteRepo()
	tagRepo := newFakeTagRepo()
	events := &fakeEventPublisher{}
	svc := NewQuoteService(quoteRepo, tagRepo, events, zap.NewNop())
	return svc, quoteRepo, tagRepo, events
}

func TestQuoteService_CreateQuote(t *testing.T) {
	svc, repo, tagRepo, events := newQuoteService(t)

	q, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin@example.com", false)

	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)

	stored, err := repo.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Be yourself", stored.Text)

	tag, err := tagRepo.GetByName(context.Background(), "wisdom")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.QuoteCount)

	assert.Equal(t, []string{EventQuoteCreated}, events.events)
}

func TestQuoteService_CreateQuote_RejectsDuplicate(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)
	_, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", false)
	require.NoError(t, err)

	_, err = svc.CreateQuote(context.Background(), "Be yourself.", "Oscar Wilde", nil, "admin", false)

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "DUPLICATE_QUOTE", appErr.Code)
}

func TestQuoteService_CreateQuote_ForceBypassesDuplicateCheck(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)
	_, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", false)
	require.NoError(t, err)

	q, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", true)

	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
}

func TestQuoteService_RandomQuoteByAuthor(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)
	_, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", false)
	require.NoError(t, err)
	_, err = svc.CreateQuote(context.Background(), "Stay hungry", "Steve Jobs", nil, "admin", false)
	require.NoError(t, err)

	q, err := svc.RandomQuoteByAuthor(context.Background(), "Oscar Wilde")

	require.NoError(t, err)
	assert.Equal(t, "Oscar Wilde", q.Author)
}

func TestQuoteService_RandomQuoteByAuthor_NotFound(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)

	_, err := svc.RandomQuoteByAuthor(context.Background(), "Nobody")

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestQuoteService_UpdateQuote(t *testing.T) {
	svc, _, _, events := newQuoteService(t)
	q, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin", false)
	require.NoError(t, err)

	updated, err := svc.UpdateQuote(context.Background(), q.ID, "Be yourself; everyone else is taken", "Oscar Wilde", []string{"humor"}, "editor")

	require.NoError(t, err)
	assert.Equal(t, []string{"humor"}, updated.Tags)
	assert.Equal(t, "editor", updated.UpdatedBy)
	assert.Contains(t, events.events, EventQuoteUpdated)
}

func TestQuoteService_DeleteQuote(t *testing.T) {
	svc, repo, _, events := newQuoteService(t)
	q, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", false)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteQuote(context.Background(), q.ID))

	_, err = repo.GetByID(context.Background(), q.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, events.events, EventQuoteDeleted)
}

func TestQuoteService_DeleteQuote_NotFound(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)

	err := svc.DeleteQuote(context.Background(), "missing")

	assert.True(t, errors.IsNotFound(err))
}

func TestQuoteService_SearchQuotes(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)
	_, err := svc.CreateQuote(context.Background(), "Stay hungry, stay foolish", "Steve Jobs", nil, "admin", false)
	require.NoError(t, err)
	_, err = svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", false)
	require.NoError(t, err)

	results, err := svc.SearchQuotes(context.Background(), "HUNGRY", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Steve Jobs", results[0].Author)
}

func TestQuoteService_SearchQuotes_MatchesAuthor(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)
	_, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", nil, "admin", false)
	require.NoError(t, err)

	results, err := svc.SearchQuotes(context.Background(), "wilde", 10)

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQuoteService_SearchQuotes_EmptyQuery(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)

	_, err := svc.SearchQuotes(context.Background(), "   ", 10)

	assert.True(t, errors.IsValidation(err))
}

func TestQuoteService_AuthorStats(t *testing.T) {
	svc, _, _, _ := newQuoteService(t)
	_, err := svc.CreateQuote(context.Background(), "Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin", false)
	require.NoError(t, err)
	_, err = svc.CreateQuote(context.Background(), "We are all in the gutter", "Oscar Wilde", []string{"hope"}, "admin", false)
	require.NoError(t, err)
	_, err = svc.CreateQuote(context.Background(), "Stay hungry, stay foolish", "Steve Jobs", nil, "admin", false)
	require.NoError(t, err)

	authors, err := svc.AuthorStats(context.Background())

	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "Oscar Wilde", authors[0].Name)
	assert.Equal(t, 2, authors[0].QuoteCount)
	assert.Equal(t, []string{"hope", "wisdom"}, authors[0].TagsUsed)
}
