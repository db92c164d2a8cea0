package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	apperrors "quoteme-backend/pkg/errors"
)

// FavoriteRepository implements ports.FavoriteRepository on the favorites
// table, keyed USER#<id> / QUOTE#<id>. Each item carries a denormalized
// snapshot of the quote so listing favorites needs no second round trip.
type FavoriteRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.FavoriteRepository {
	return &FavoriteRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type favoriteItem struct {
	PK        string        `dynamodbav:"PK"`
	SK        string        `dynamodbav:"SK"`
	UserID    string        `dynamodbav:"UserID"`
	QuoteID   string        `dynamodbav:"QuoteID"`
	Quote     *quotes.Quote `dynamodbav:"Quote,omitempty"`
	CreatedAt string        `dynamodbav:"CreatedAt"`
}

func favoriteKey(userID, quoteID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("QUOTE#%s", quoteID)},
	}
}

// Save persists a favorite
func (r *FavoriteRepository) Save(ctx context.Context, fav *ports.Favorite) error {
	av, err := attributevalue.MarshalMap(favoriteItem{
		PK:        fmt.Sprintf("USER#%s", fav.UserID),
		SK:        fmt.Sprintf("QUOTE#%s", fav.QuoteID),
		UserID:    fav.UserID,
		QuoteID:   fav.QuoteID,
		Quote:     fav.Quote,
		CreatedAt: fav.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal favorite: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save favorite",
			zap.Error(err),
			zap.String("userID", fav.UserID),
			zap.String("quoteID", fav.QuoteID),
		)
		return apperrors.NewDatabaseError("save favorite", err)
	}
	return nil
}

// Delete removes a favorite
func (r *FavoriteRepository) Delete(ctx context.Context, userID, quoteID string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       favoriteKey(userID, quoteID),
	}); err != nil {
		return apperrors.NewDatabaseError("delete favorite", err)
	}
	return nil
}

// ListByUser retrieves all favorites of a user, newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*ports.Favorite, error) {
	var favorites []*ports.Favorite
	var lastKey map[string]types.AttributeValue

	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
				":sk": &types.AttributeValueMemberS{Value: "QUOTE#"},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("list favorites", err)
		}

		for _, raw := range result.Items {
			var item favoriteItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal favorite", zap.Error(err))
				continue
			}
			favorites = append(favorites, &ports.Favorite{
				UserID:    item.UserID,
				QuoteID:   item.QuoteID,
				Quote:     item.Quote,
				CreatedAt: item.CreatedAt,
			})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	// Partition order is by quote ID; callers want newest saves first
	sort.Slice(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt > favorites[j].CreatedAt
	})
	return favorites, nil
}

// Exists reports whether a user has favorited a quote
func (r *FavoriteRepository) Exists(ctx context.Context, userID, quoteID string) (bool, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  favoriteKey(userID, quoteID),
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return false, apperrors.NewDatabaseError("check favorite", err)
	}
	return result.Item != nil, nil
}
