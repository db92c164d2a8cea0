package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	apperrors "quoteme-backend/pkg/errors"
)

// JobRepository implements ports.JobRepository. Job records share the main
// table under JOB#<id> / METADATA and expire through the table's TTL
// attribute once the job is old enough to be uninteresting.
type JobRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.JobRepository {
	return &JobRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type jobItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	JobID       string `dynamodbav:"JobID"`
	QuoteID     string `dynamodbav:"QuoteID"`
	Status      string `dynamodbav:"Status"`
	ImageURL    string `dynamodbav:"ImageURL,omitempty"`
	Error       string `dynamodbav:"ErrorMessage,omitempty"`
	RequestedBy string `dynamodbav:"RequestedBy,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
	TTL         int64  `dynamodbav:"TTL,omitempty"`
}

func jobKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("JOB#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Save persists a job record
func (r *JobRepository) Save(ctx context.Context, job *quotes.ImageJob) error {
	av, err := attributevalue.MarshalMap(jobItem{
		PK:          fmt.Sprintf("JOB#%s", job.ID),
		SK:          "METADATA",
		EntityType:  "IMAGE_JOB",
		JobID:       job.ID,
		QuoteID:     job.QuoteID,
		Status:      job.Status,
		ImageURL:    job.ImageURL,
		Error:       job.Error,
		RequestedBy: job.RequestedBy,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		TTL:         job.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save job",
			zap.Error(err),
			zap.String("jobID", job.ID),
			zap.String("status", job.Status),
		)
		return apperrors.NewDatabaseError("save job", err)
	}
	return nil
}

// GetByID retrieves a job
func (r *JobRepository) GetByID(ctx context.Context, id string) (*quotes.ImageJob, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       jobKey(id),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get job", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError("job")
	}

	var item jobItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &quotes.ImageJob{
		ID:          item.JobID,
		QuoteID:     item.QuoteID,
		Status:      item.Status,
		ImageURL:    item.ImageURL,
		Error:       item.Error,
		RequestedBy: item.RequestedBy,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		ExpiresAt:   item.TTL,
	}, nil
}
