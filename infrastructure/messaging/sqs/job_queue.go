package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	apperrors "quoteme-backend/pkg/errors"
)

// JobMessage is the SQS payload handed to the image worker.
type JobMessage struct {
	JobID   string `json:"job_id"`
	QuoteID string `json:"quote_id"`
}

// JobQueue implements ports.JobQueue using SQS
type JobQueue struct {
	client   *sqs.Client
	queueURL string
	logger   *zap.Logger
}

// NewJobQueue creates a new SQS-backed job queue
func NewJobQueue(client *sqs.Client, queueURL string, logger *zap.Logger) ports.JobQueue {
	return &JobQueue{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Enqueue submits a job for asynchronous processing
func (q *JobQueue) Enqueue(ctx context.Context, job *quotes.ImageJob) error {
	body, err := json.Marshal(JobMessage{
		JobID:   job.ID,
		QuoteID: job.QuoteID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"JobID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.ID),
			},
		},
	})
	if err != nil {
		q.logger.Error("Failed to enqueue image job",
			zap.Error(err),
			zap.String("jobID", job.ID),
			zap.String("quoteID", job.QuoteID),
		)
		return apperrors.NewExternalError("sqs", err)
	}

	q.logger.Info("Image job enqueued",
		zap.String("jobID", job.ID),
		zap.String("quoteID", job.QuoteID),
	)
	return nil
}
