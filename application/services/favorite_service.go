package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/pkg/errors"
)

// FavoriteService manages per-user saved quotes.
type FavoriteService struct {
	favRepo   ports.FavoriteRepository
	quoteRepo ports.QuoteRepository
	logger    *zap.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	favRepo ports.FavoriteRepository,
	quoteRepo ports.QuoteRepository,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{
		favRepo:   favRepo,
		quoteRepo: quoteRepo,
		logger:    logger,
	}
}

// AddFavorite saves a quote for a user. The quote is snapshotted so the
// favorites list survives later edits and deletions.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, quoteID string) (*ports.Favorite, error) {
	if userID == "" {
		return nil, errors.NewUnauthorizedError("")
	}

	exists, err := s.favRepo.Exists(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewConflictError("quote is already a favorite")
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	fav := &ports.Favorite{
		UserID:    userID,
		QuoteID:   quoteID,
		Quote:     quote,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.favRepo.Save(ctx, fav); err != nil {
		return nil, err
	}

	s.logger.Info("Favorite added",
		zap.String("userID", userID),
		zap.String("quoteID", quoteID),
	)
	return fav, nil
}

// RemoveFavorite deletes a saved quote for a user.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, quoteID string) error {
	exists, err := s.favRepo.Exists(ctx, userID, quoteID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError("favorite")
	}

	if err := s.favRepo.Delete(ctx, userID, quoteID); err != nil {
		return err
	}

	s.logger.Info("Favorite removed",
		zap.String("userID", userID),
		zap.String("quoteID", quoteID),
	)
	return nil
}

// ListFavorites returns a user's saved quotes, newest first.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]*ports.Favorite, error) {
	return s.favRepo.ListByUser(ctx, userID)
}

// IsFavorite reports whether a user saved a quote.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, quoteID string) (bool, error) {
	return s.favRepo.Exists(ctx, userID, quoteID)
}
