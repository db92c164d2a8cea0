// Package main implements the image generation worker Lambda.
// It consumes jobs from the SQS queue, renders an illustration for the
// quote and stores the result.
package main

import (
	"context"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/infrastructure/config"
	"quoteme-backend/infrastructure/di"
	"quoteme-backend/pkg/observability"
)

// Global dependencies for Lambda performance optimization
var (
	imageService *services.ImageService
	tracer       *observability.Tracer
	logger       *zap.Logger
)

// jobMessage mirrors the queue payload written by the API
type jobMessage struct {
	JobID   string `json:"job_id"`
	QuoteID string `json:"quote_id"`
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	imageService = container.ImageService
	tracer = observability.NewTracer("quoteme-imageworker")
	logger = container.Logger

	log.Println("Image worker initialized successfully")
}

// HandleBatch processes one SQS batch. Failed records are reported
// individually so the queue only redrives the jobs that actually failed.
func HandleBatch(ctx context.Context, event awsevents.SQSEvent) (awsevents.SQSEventResponse, error) {
	var failures []awsevents.SQSBatchItemFailure

	for _, record := range event.Records {
		var msg jobMessage
		if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
			logger.Error("Dropping malformed job message",
				zap.String("message_id", record.MessageId),
				zap.Error(err))
			continue
		}

		logger.Info("Processing image job",
			zap.String("job_id", msg.JobID),
			zap.String("quote_id", msg.QuoteID))

		err := tracer.Capture(ctx, "image-job", func(ctx context.Context) error {
			tracer.Annotate(ctx, "job_id", msg.JobID)
			return imageService.ProcessJob(ctx, msg.JobID)
		})
		if err != nil {
			logger.Error("Image job failed",
				zap.String("job_id", msg.JobID),
				zap.Error(err))
			failures = append(failures, awsevents.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
		}
	}

	return awsevents.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(HandleBatch)
}
