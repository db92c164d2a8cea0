package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	apperrors "quoteme-backend/pkg/errors"
)

// SubscriptionRepository implements ports.SubscriptionRepository on the
// subscriptions table, keyed by lowercase email.
type SubscriptionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.SubscriptionRepository {
	return &SubscriptionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type subscriptionItem struct {
	Email          string `dynamodbav:"Email"`
	IsSubscribed   bool   `dynamodbav:"IsSubscribed"`
	DeliveryMethod string `dynamodbav:"DeliveryMethod"`
	Timezone       string `dynamodbav:"Timezone"`
	PreferredHour  int    `dynamodbav:"PreferredHour"`
	LastSentAt     string `dynamodbav:"LastSentAt,omitempty"`
	TotalSent      int    `dynamodbav:"TotalSent"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
	UpdatedAt      string `dynamodbav:"UpdatedAt"`
}

func (i subscriptionItem) toDomain() *quotes.Subscription {
	return &quotes.Subscription{
		Email:          i.Email,
		IsSubscribed:   i.IsSubscribed,
		DeliveryMethod: i.DeliveryMethod,
		Timezone:       i.Timezone,
		PreferredHour:  i.PreferredHour,
		LastSentAt:     i.LastSentAt,
		TotalSent:      i.TotalSent,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// Save persists a subscription keyed by email
func (r *SubscriptionRepository) Save(ctx context.Context, sub *quotes.Subscription) error {
	av, err := attributevalue.MarshalMap(subscriptionItem{
		Email:          sub.Email,
		IsSubscribed:   sub.IsSubscribed,
		DeliveryMethod: sub.DeliveryMethod,
		Timezone:       sub.Timezone,
		PreferredHour:  sub.PreferredHour,
		LastSentAt:     sub.LastSentAt,
		TotalSent:      sub.TotalSent,
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save subscription",
			zap.Error(err),
			zap.String("email", sub.Email),
		)
		return apperrors.NewDatabaseError("save subscription", err)
	}
	return nil
}

// GetByEmail retrieves a subscription
func (r *SubscriptionRepository) GetByEmail(ctx context.Context, email string) (*quotes.Subscription, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get subscription", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError("subscription")
	}

	var item subscriptionItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	return item.toDomain(), nil
}

// ListActive retrieves all currently subscribed records. The table is small
// enough that a filtered scan beats maintaining an index.
func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]*quotes.Subscription, error) {
	return r.scan(ctx, true)
}

// ListAll retrieves every subscription record
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]*quotes.Subscription, error) {
	return r.scan(ctx, false)
}

func (r *SubscriptionRepository) scan(ctx context.Context, activeOnly bool) ([]*quotes.Subscription, error) {
	var filter *expression.Expression
	if activeOnly {
		expr, err := expression.NewBuilder().
			WithFilter(expression.Equal(expression.Name("IsSubscribed"), expression.Value(true))).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build subscription filter: %w", err)
		}
		filter = &expr
	}

	var subs []*quotes.Subscription
	var lastKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: lastKey,
		}
		if filter != nil {
			input.FilterExpression = filter.Filter()
			input.ExpressionAttributeNames = filter.Names()
			input.ExpressionAttributeValues = filter.Values()
		}

		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan subscriptions", err)
		}

		for _, raw := range result.Items {
			var item subscriptionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal subscription", zap.Error(err))
				continue
			}
			subs = append(subs, item.toDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return subs, nil
}

// Delete removes a subscription record entirely
func (r *SubscriptionRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"Email": &types.AttributeValueMemberS{Value: email},
		},
	}); err != nil {
		return apperrors.NewDatabaseError("delete subscription", err)
	}

	r.logger.Info("Subscription deleted", zap.String("email", email))
	return nil
}
