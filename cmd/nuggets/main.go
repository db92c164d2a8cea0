// Package main implements the daily nugget delivery Lambda.
// An EventBridge schedule invokes it once an hour; subscribers whose
// preferred local hour matches receive their quote of the day.
package main

import (
	"context"
	"errors"
	"log"
	"time"
	_ "time/tzdata"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/infrastructure/config"
	"quoteme-backend/infrastructure/di"
	"quoteme-backend/infrastructure/persistence/dynamodb"
	"quoteme-backend/pkg/observability"
)

// Global dependencies for Lambda performance optimization
var (
	deliveryService *services.DeliveryService
	deliveryLock    *dynamodb.DeliveryLock
	tracer          *observability.Tracer
	logger          *zap.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	deliveryService = container.DeliveryService
	deliveryLock = container.DeliveryLock
	tracer = observability.NewTracer("quoteme-nuggets")
	logger = container.Logger

	log.Println("Nugget delivery handler initialized successfully")
}

// HandleSchedule runs one hourly delivery pass. A DynamoDB lock guards
// against schedule double-fires; a second invocation in the same hour
// exits quietly instead of double-sending.
func HandleSchedule(ctx context.Context, event awsevents.CloudWatchEvent) error {
	logger.Info("Hourly nugget delivery triggered",
		zap.String("event_id", event.ID),
		zap.Time("event_time", event.Time))

	lease, err := deliveryLock.Acquire(ctx, "nugget-delivery", event.ID, 50*time.Minute)
	if err != nil {
		if errors.Is(err, dynamodb.ErrLockHeld) {
			logger.Info("Another delivery pass is running, skipping")
			return nil
		}
		return err
	}
	defer func() {
		if err := lease.Release(ctx); err != nil {
			logger.Warn("Failed to release delivery lock", zap.Error(err))
		}
	}()

	var report *services.DeliveryReport
	err = tracer.Capture(ctx, "delivery-pass", func(ctx context.Context) error {
		tracer.Annotate(ctx, "event_id", event.ID)
		report, err = deliveryService.RunHourlyDelivery(ctx)
		return err
	})
	if err != nil {
		logger.Error("Nugget delivery pass failed", zap.Error(err))
		return err
	}

	logger.Info("Nugget delivery pass complete",
		zap.Int("eligible", report.Eligible),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))
	return nil
}

func main() {
	lambda.Start(HandleSchedule)
}
