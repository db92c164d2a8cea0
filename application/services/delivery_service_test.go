package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/domain/quotes"
)

func TestDeliveryService_RunHourlyDelivery(t *testing.T) {
	subRepo := newFakeSubRepo()
	quoteRepo := newFakeQuoteRepo()
	mailer := newFakeMailer()

	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin")
	require.NoError(t, err)
	require.NoError(t, quoteRepo.Save(context.Background(), q))

	due, err := quotes.NewSubscription("due@example.com", "UTC", 8)
	require.NoError(t, err)
	notDue, err := quotes.NewSubscription("later@example.com", "UTC", 20)
	require.NoError(t, err)
	require.NoError(t, subRepo.Save(context.Background(), due))
	require.NoError(t, subRepo.Save(context.Background(), notDue))

	svc := NewDeliveryService(subRepo, quoteRepo, mailer, zap.NewNop())
	svc.now = fixedClock(time.Date(2025, 7, 15, 8, 30, 0, 0, time.UTC))

	report, err := svc.RunHourlyDelivery(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "due@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTMLBody, "Be yourself")
	assert.Contains(t, mailer.sent[0].Subject, "July 15, 2025")

	updated, err := subRepo.GetByEmail(context.Background(), "due@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalSent)
}

func TestDeliveryService_TimezoneEligibility(t *testing.T) {
	subRepo := newFakeSubRepo()
	quoteRepo := newFakeQuoteRepo()
	mailer := newFakeMailer()

	q, err := quotes.NewQuote("Stay hungry", "Steve Jobs", nil, "admin")
	require.NoError(t, err)
	require.NoError(t, quoteRepo.Save(context.Background(), q))

	// 8am New York in July is 12:00 UTC.
	ny, err := quotes.NewSubscription("ny@example.com", "America/New_York", 8)
	require.NoError(t, err)
	require.NoError(t, subRepo.Save(context.Background(), ny))

	svc := NewDeliveryService(subRepo, quoteRepo, mailer, zap.NewNop())

	svc.now = fixedClock(time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC))
	report, err := svc.RunHourlyDelivery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Eligible)

	svc.now = fixedClock(time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC))
	report, err = svc.RunHourlyDelivery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
}

func TestDeliveryService_FailedRecipientDoesNotStopBatch(t *testing.T) {
	subRepo := newFakeSubRepo()
	quoteRepo := newFakeQuoteRepo()
	mailer := newFakeMailer()
	mailer.fail["bad@example.com"] = true

	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", nil, "admin")
	require.NoError(t, err)
	require.NoError(t, quoteRepo.Save(context.Background(), q))

	for _, email := range []string{"bad@example.com", "good@example.com"} {
		sub, err := quotes.NewSubscription(email, "UTC", 8)
		require.NoError(t, err)
		require.NoError(t, subRepo.Save(context.Background(), sub))
	}

	svc := NewDeliveryService(subRepo, quoteRepo, mailer, zap.NewNop())
	svc.now = fixedClock(time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC))

	report, err := svc.RunHourlyDelivery(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Eligible)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "bad@example.com")
}

func TestDeliveryService_NoSubscribersDue(t *testing.T) {
	subRepo := newFakeSubRepo()
	quoteRepo := newFakeQuoteRepo()
	mailer := newFakeMailer()

	svc := NewDeliveryService(subRepo, quoteRepo, mailer, zap.NewNop())
	svc.now = fixedClock(time.Date(2025, 7, 15, 3, 0, 0, 0, time.UTC))

	report, err := svc.RunHourlyDelivery(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Eligible)
	assert.Empty(t, mailer.sent)
}
