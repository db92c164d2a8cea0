package services

import (
	"context"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
)

// UserService reads user records from the identity provider for the
// admin console.
type UserService struct {
	directory ports.UserDirectory
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(directory ports.UserDirectory, logger *zap.Logger) *UserService {
	return &UserService{
		directory: directory,
		logger:    logger,
	}
}

// ListUsers pages through the user pool, attaching group membership.
func (s *UserService) ListUsers(ctx context.Context, limit int, paginationToken string) ([]*ports.DirectoryUser, string, error) {
	if limit <= 0 || limit > 60 {
		limit = 60
	}

	users, nextToken, err := s.directory.ListUsers(ctx, limit, paginationToken)
	if err != nil {
		return nil, "", err
	}

	for _, u := range users {
		groups, err := s.directory.ListGroupsForUser(ctx, u.Username)
		if err != nil {
			s.logger.Warn("failed to list groups for user",
				zap.Error(err),
				zap.String("username", u.Username),
			)
			continue
		}
		u.Groups = groups
	}

	return users, nextToken, nil
}

// GetUser retrieves one user with group membership.
func (s *UserService) GetUser(ctx context.Context, username string) (*ports.DirectoryUser, error) {
	user, err := s.directory.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	groups, err := s.directory.ListGroupsForUser(ctx, username)
	if err == nil {
		user.Groups = groups
	}
	return user, nil
}
