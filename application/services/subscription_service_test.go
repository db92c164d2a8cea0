package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSubscriptionService(t *testing.T) (*SubscriptionService, *fakeSubRepo, *fakeMailer) {
	t.Helper()
	repo := newFakeSubRepo()
	mailer := newFakeMailer()
	svc := NewSubscriptionService(repo, mailer, zap.NewNop())
	return svc, repo, mailer
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	svc, _, mailer := newSubscriptionService(t)

	sub, err := svc.Subscribe(context.Background(), "Reader@Example.com", "America/New_York", 7)

	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.True(t, sub.IsSubscribed)

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Subject, "Welcome")
}

func TestSubscriptionService_Subscribe_AlreadyActive(t *testing.T) {
	svc, _, _ := newSubscriptionService(t)
	_, err := svc.Subscribe(context.Background(), "reader@example.com", "UTC", 8)
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), "reader@example.com", "UTC", 8)

	assert.Error(t, err)
}

func TestSubscriptionService_ResubscribeAfterUnsubscribe(t *testing.T) {
	svc, _, _ := newSubscriptionService(t)
	_, err := svc.Subscribe(context.Background(), "reader@example.com", "UTC", 8)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(context.Background(), "reader@example.com"))

	sub, err := svc.Subscribe(context.Background(), "reader@example.com", "Europe/London", 9)

	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, "Europe/London", sub.Timezone)
	assert.Equal(t, 9, sub.PreferredHour)
}

func TestSubscriptionService_UnsubscribeUnknownSucceeds(t *testing.T) {
	svc, _, _ := newSubscriptionService(t)

	err := svc.Unsubscribe(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
}

func TestSubscriptionService_Subscribe_InvalidEmail(t *testing.T) {
	svc, _, _ := newSubscriptionService(t)

	_, err := svc.Subscribe(context.Background(), "not-an-email", "UTC", 8)

	assert.Error(t, err)
}
