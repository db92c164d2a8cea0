package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
)

// DeliveryService sends the daily nugget batch. An hourly scheduler event
// invokes RunHourlyDelivery, which picks the subscribers whose preferred
// local hour matches the current instant.
type DeliveryService struct {
	subRepo   ports.SubscriptionRepository
	quoteRepo ports.QuoteRepository
	mailer    ports.EmailSender
	logger    *zap.Logger
	now       func() time.Time
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	subRepo ports.SubscriptionRepository,
	quoteRepo ports.QuoteRepository,
	mailer ports.EmailSender,
	logger *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		subRepo:   subRepo,
		quoteRepo: quoteRepo,
		mailer:    mailer,
		logger:    logger,
		now:       time.Now,
	}
}

// DeliveryReport summarizes one batch run.
type DeliveryReport struct {
	Eligible int      `json:"eligible"`
	Sent     int      `json:"sent"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// RunHourlyDelivery sends one nugget to every subscriber whose preferred
// hour is now. Per-recipient failures are collected, never fatal; a bad
// address must not starve the rest of the batch.
func (s *DeliveryService) RunHourlyDelivery(ctx context.Context) (*DeliveryReport, error) {
	utcNow := s.now().UTC()

	subs, err := s.subRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var due []*quotes.Subscription
	for _, sub := range subs {
		if sub.DueAt(utcNow) {
			due = append(due, sub)
		}
	}

	report := &DeliveryReport{Eligible: len(due)}
	if len(due) == 0 {
		s.logger.Info("No subscribers due this hour", zap.Int("active", len(subs)))
		return report, nil
	}

	quote, err := s.quoteRepo.Random(ctx, "")
	if err != nil {
		return nil, err
	}

	for _, sub := range due {
		msg := nuggetEmail(sub.Email, quote, utcNow)
		if err := s.mailer.Send(ctx, msg); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", sub.Email, err))
			s.logger.Warn("failed to send nugget",
				zap.Error(err),
				zap.String("email", sub.Email),
			)
			continue
		}

		sub.RecordDelivery(utcNow)
		if err := s.subRepo.Save(ctx, sub); err != nil {
			s.logger.Warn("failed to record delivery",
				zap.Error(err),
				zap.String("email", sub.Email),
			)
		}
		report.Sent++
	}

	s.logger.Info("Nugget delivery complete",
		zap.Int("eligible", report.Eligible),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.String("quoteID", quote.ID),
	)
	return report, nil
}

// SendTestNugget sends one nugget immediately to a single address.
func (s *DeliveryService) SendTestNugget(ctx context.Context, email string) error {
	quote, err := s.quoteRepo.Random(ctx, "")
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, nuggetEmail(email, quote, s.now().UTC()))
}

func nuggetEmail(to string, q *quotes.Quote, now time.Time) *ports.Email {
	date := now.Format("January 2, 2006")
	subject := fmt.Sprintf("Your Daily Nugget - %s", date)

	var tagsHTML string
	if len(q.Tags) > 0 {
		shown := q.Tags
		if len(shown) > 5 {
			shown = shown[:5]
		}
		var b strings.Builder
		b.WriteString(`<div class="tags">`)
		for _, t := range shown {
			fmt.Fprintf(&b, `<span class="tag">%s</span>`, t)
		}
		b.WriteString(`</div>`)
		tagsHTML = b.String()
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: 'Georgia', serif; background-color: #f5f5f5; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 40px auto; background: white; border-radius: 10px; overflow: hidden; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
.header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; text-align: center; }
.content { padding: 40px; }
.quote { font-size: 24px; line-height: 1.6; color: #2d3748; font-style: italic; margin: 20px 0; }
.author { font-size: 18px; color: #4a5568; text-align: right; margin: 20px 0; }
.tags { margin: 30px 0; }
.tag { display: inline-block; background: #edf2f7; color: #4a5568; padding: 5px 15px; border-radius: 20px; margin: 5px; font-size: 14px; }
.footer { background: #f7fafc; padding: 20px; text-align: center; color: #718096; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1 style="margin: 0; font-size: 28px;">Daily Nugget</h1>
<p style="margin: 10px 0 0 0; opacity: 0.9;">Your daily dose of inspiration</p>
</div>
<div class="content">
<div class="quote">"%s"</div>
<div class="author">&mdash; %s</div>
%s
</div>
<div class="footer">
<p>You're receiving this because you subscribed to Daily Nuggets.</p>
<p>Manage your subscription in the app or in your browser.</p>
</div>
</div>
</body>
</html>`, q.Text, q.Author, tagsHTML)

	textBody := fmt.Sprintf(`Daily Nugget - %s

"%s"

- %s

Tags: %s

---
You're receiving this because you subscribed to Daily Nuggets.
Manage your subscription in the app.`, date, q.Text, q.Author, strings.Join(q.Tags, ", "))

	return &ports.Email{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}
