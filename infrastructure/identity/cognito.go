package identity

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	apperrors "quoteme-backend/pkg/errors"
)

// CognitoDirectory implements ports.UserDirectory against a Cognito user pool
type CognitoDirectory struct {
	client     *cognitoidentityprovider.Client
	userPoolID string
	logger     *zap.Logger
}

// NewCognitoDirectory creates a new Cognito-backed user directory
func NewCognitoDirectory(client *cognitoidentityprovider.Client, userPoolID string, logger *zap.Logger) ports.UserDirectory {
	return &CognitoDirectory{
		client:     client,
		userPoolID: userPoolID,
		logger:     logger,
	}
}

// ListUsers pages through the user pool
func (d *CognitoDirectory) ListUsers(ctx context.Context, limit int, paginationToken string) ([]*ports.DirectoryUser, string, error) {
	input := &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(d.userPoolID),
		Limit:      aws.Int32(int32(limit)),
	}
	if paginationToken != "" {
		input.PaginationToken = aws.String(paginationToken)
	}

	result, err := d.client.ListUsers(ctx, input)
	if err != nil {
		d.logger.Error("Failed to list users", zap.Error(err))
		return nil, "", apperrors.NewExternalError("cognito", err)
	}

	users := make([]*ports.DirectoryUser, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, directoryUser(u))
	}
	return users, aws.ToString(result.PaginationToken), nil
}

// GetUser retrieves a single user by username
func (d *CognitoDirectory) GetUser(ctx context.Context, username string) (*ports.DirectoryUser, error) {
	result, err := d.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		var notFound *types.UserNotFoundException
		if errors.As(err, &notFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, apperrors.NewExternalError("cognito", err)
	}

	user := &ports.DirectoryUser{
		Username: aws.ToString(result.Username),
		Status:   string(result.UserStatus),
		Enabled:  result.Enabled,
	}
	for _, attr := range result.UserAttributes {
		if aws.ToString(attr.Name) == "email" {
			user.Email = aws.ToString(attr.Value)
		}
	}
	if result.UserCreateDate != nil {
		user.CreatedAt = result.UserCreateDate.UTC().Format(time.RFC3339)
	}
	return user, nil
}

// ListGroupsForUser retrieves the groups a user belongs to
func (d *CognitoDirectory) ListGroupsForUser(ctx context.Context, username string) ([]string, error) {
	result, err := d.client.AdminListGroupsForUser(ctx, &cognitoidentityprovider.AdminListGroupsForUserInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, apperrors.NewExternalError("cognito", err)
	}

	groups := make([]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		groups = append(groups, aws.ToString(g.GroupName))
	}
	return groups, nil
}

func directoryUser(u types.UserType) *ports.DirectoryUser {
	user := &ports.DirectoryUser{
		Username: aws.ToString(u.Username),
		Status:   string(u.UserStatus),
		Enabled:  u.Enabled,
	}
	for _, attr := range u.Attributes {
		if aws.ToString(attr.Name) == "email" {
			user.Email = aws.ToString(attr.Value)
		}
	}
	if u.UserCreateDate != nil {
		user.CreatedAt = u.UserCreateDate.UTC().Format(time.RFC3339)
	}
	return user
}
