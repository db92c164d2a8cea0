package eventbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	apperrors "quoteme-backend/pkg/errors"
)

// Source identifies this service on the event bus.
const Source = "quoteme.backend"

// Publisher implements ports.EventPublisher using AWS EventBridge
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// Publish sends a single event to EventBridge
func (p *Publisher) Publish(ctx context.Context, eventType string, detail interface{}) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(Source),
				DetailType:   aws.String(eventType),
				Detail:       aws.String(string(data)),
				Time:         aws.Time(time.Now().UTC()),
			},
		},
	})
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.Error(err),
			zap.String("eventType", eventType),
		)
		return apperrors.NewExternalError("eventbridge", err)
	}

	if result.FailedEntryCount > 0 {
		entry := result.Entries[0]
		p.logger.Error("Event rejected by EventBridge",
			zap.String("eventType", eventType),
			zap.Stringp("errorCode", entry.ErrorCode),
			zap.Stringp("errorMessage", entry.ErrorMessage),
		)
		return apperrors.NewExternalError("eventbridge", fmt.Errorf("event rejected: %s", aws.ToString(entry.ErrorCode)))
	}

	p.logger.Debug("Event published",
		zap.String("eventType", eventType),
		zap.String("bus", p.eventBusName),
	)
	return nil
}
