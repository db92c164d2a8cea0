package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/pkg/errors"
)

func newFavoriteService(t *testing.T) (*FavoriteService, *fakeQuoteRepo) {
	t.Helper()
	quoteRepo := newFakeQuoteRepo()
	svc := NewFavoriteService(newFakeFavRepo(), quoteRepo, zap.NewNop())
	return svc, quoteRepo
}

func TestFavoriteService_AddAndList(t *testing.T) {
	svc, quoteRepo := newFavoriteService(t)
	q := seedQuote(t, quoteRepo)

	fav, err := svc.AddFavorite(context.Background(), "user-1", q.ID)

	require.NoError(t, err)
	assert.Equal(t, q.ID, fav.QuoteID)
	require.NotNil(t, fav.Quote)
	assert.Equal(t, "Be yourself", fav.Quote.Text)

	list, err := svc.ListFavorites(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFavoriteService_AddTwiceConflicts(t *testing.T) {
	svc, quoteRepo := newFavoriteService(t)
	q := seedQuote(t, quoteRepo)
	_, err := svc.AddFavorite(context.Background(), "user-1", q.ID)
	require.NoError(t, err)

	_, err = svc.AddFavorite(context.Background(), "user-1", q.ID)

	assert.True(t, errors.IsConflict(err))
}

func TestFavoriteService_AddUnknownQuote(t *testing.T) {
	svc, _ := newFavoriteService(t)

	_, err := svc.AddFavorite(context.Background(), "user-1", "missing")

	assert.True(t, errors.IsNotFound(err))
}

func TestFavoriteService_Remove(t *testing.T) {
	svc, quoteRepo := newFavoriteService(t)
	q := seedQuote(t, quoteRepo)
	_, err := svc.AddFavorite(context.Background(), "user-1", q.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFavorite(context.Background(), "user-1", q.ID))

	isFav, err := svc.IsFavorite(context.Background(), "user-1", q.ID)
	require.NoError(t, err)
	assert.False(t, isFav)
}

func TestFavoriteService_RemoveMissing(t *testing.T) {
	svc, quoteRepo := newFavoriteService(t)
	q := seedQuote(t, quoteRepo)

	err := svc.RemoveFavorite(context.Background(), "user-1", q.ID)

	assert.True(t, errors.IsNotFound(err))
}

func TestFavoriteService_FavoritesAreScopedPerUser(t *testing.T) {
	svc, quoteRepo := newFavoriteService(t)
	q := seedQuote(t, quoteRepo)
	_, err := svc.AddFavorite(context.Background(), "user-1", q.ID)
	require.NoError(t, err)

	list, err := svc.ListFavorites(context.Background(), "user-2")

	require.NoError(t, err)
	assert.Empty(t, list)
}
