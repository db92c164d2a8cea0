package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	apperrors "quoteme-backend/pkg/errors"
)

// SESSender implements ports.EmailSender using Amazon SES
type SESSender struct {
	client      *sesv2.Client
	senderEmail string
	senderName  string
	logger      *zap.Logger
}

// NewSESSender creates a new SES email sender
func NewSESSender(client *sesv2.Client, senderEmail, senderName string, logger *zap.Logger) ports.EmailSender {
	return &SESSender{
		client:      client,
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      logger,
	}
}

// Send delivers one message with both HTML and plain-text bodies
func (s *SESSender) Send(ctx context.Context, msg *ports.Email) error {
	from := s.senderEmail
	if s.senderName != "" {
		from = fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	}

	body := &types.Body{}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody)}
	}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody)}
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body:    body,
			},
		},
	})
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return apperrors.NewExternalError("ses", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
