package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

func TestAuthorQuoteLookup_FiltersKnownQuotes(t *testing.T) {
	quoteRepo := newFakeQuoteRepo()
	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", nil, "seed")
	require.NoError(t, err)
	require.NoError(t, quoteRepo.Save(context.Background(), q))

	finder := &fakeFinder{found: []ports.FoundQuote{
		{Text: "be yourself  ", Source: "attributed"},
		{Text: "We are all in the gutter", Source: "Lady Windermere's Fan"},
	}}
	svc := NewAuthorQuoteLookup(finder, quoteRepo, zap.NewNop())

	fresh, err := svc.Lookup(context.Background(), "Oscar Wilde", 5)

	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "We are all in the gutter", fresh[0].Text)
}

func TestAuthorQuoteLookup_UnavailableWithoutModel(t *testing.T) {
	svc := NewAuthorQuoteLookup(nil, newFakeQuoteRepo(), zap.NewNop())

	_, err := svc.Lookup(context.Background(), "Oscar Wilde", 5)

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeUnavailable, appErr.Type)
}

func TestAuthorQuoteLookup_SurfacesFinderError(t *testing.T) {
	finder := &fakeFinder{err: errors.NewExternalError("openai", errors.NewInternalError("timeout"))}
	svc := NewAuthorQuoteLookup(finder, newFakeQuoteRepo(), zap.NewNop())

	_, err := svc.Lookup(context.Background(), "Oscar Wilde", 5)

	require.Error(t, err)
}
