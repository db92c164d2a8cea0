package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another worker already holds the lock.
var ErrLockHeld = errors.New("lock already held")

// DeliveryLock serializes the hourly nugget pass. EventBridge schedules
// can fire a rule more than once, and a double pass would double-send
// email, so each pass takes a short lease via a conditional write before
// touching subscribers.
type DeliveryLock struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDeliveryLock creates a delivery lock backed by the given table
func NewDeliveryLock(client *dynamodb.Client, tableName string, logger *zap.Logger) *DeliveryLock {
	return &DeliveryLock{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Lease is one acquired lock.
type Lease struct {
	lock      *DeliveryLock
	resource  string
	leaseID   string
	owner     string
	expiresAt time.Time
}

// Acquire takes the lock for resource, or returns ErrLockHeld when a live
// lease exists. Expired leases are stolen; the TTL attribute cleans up
// abandoned rows eventually.
func (dl *DeliveryLock) Acquire(ctx context.Context, resource, owner string, duration time.Duration) (*Lease, error) {
	now := time.Now()
	expiresAt := now.Add(duration)
	leaseID := fmt.Sprintf("%s_%d", owner, now.UnixNano())

	_, err := dl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dl.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: "LOCK#" + resource},
			"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
			"LeaseID":    &types.AttributeValueMemberS{Value: leaseID},
			"Owner":      &types.AttributeValueMemberS{Value: owner},
			"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
			"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Add(time.Hour).Unix())},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			dl.logger.Info("Delivery lock held elsewhere, skipping",
				zap.String("resource", resource),
				zap.String("owner", owner))
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	dl.logger.Debug("Delivery lock acquired",
		zap.String("resource", resource),
		zap.String("lease_id", leaseID),
		zap.Duration("duration", duration))

	return &Lease{
		lock:      dl,
		resource:  resource,
		leaseID:   leaseID,
		owner:     owner,
		expiresAt: expiresAt,
	}, nil
}

// Release frees the lease. Releasing a lease that was already stolen or
// expired is not an error.
func (l *Lease) Release(ctx context.Context) error {
	_, err := l.lock.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.lock.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "LOCK#" + l.resource},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LeaseID = :lease AND #owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lease": &types.AttributeValueMemberS{Value: l.leaseID},
			":owner": &types.AttributeValueMemberS{Value: l.owner},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			l.lock.logger.Warn("Delivery lock already released or stolen",
				zap.String("resource", l.resource),
				zap.String("lease_id", l.leaseID))
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Expired reports whether the lease has run out
func (l *Lease) Expired() bool {
	return time.Now().After(l.expiresAt)
}
