package quotes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteme-backend/domain/quotes"
)

func TestNewSubscription(t *testing.T) {
	s, err := quotes.NewSubscription("  Reader@Example.COM ", "America/New_York", 7)

	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", s.Email)
	assert.True(t, s.IsSubscribed)
	assert.Equal(t, quotes.DeliveryEmail, s.DeliveryMethod)
	assert.Equal(t, "America/New_York", s.Timezone)
	assert.Equal(t, 7, s.PreferredHour)
}

func TestNewSubscription_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		timezone string
		hour     int
	}{
		{"bad email", "not-an-email", "UTC", 8},
		{"unknown timezone", "reader@example.com", "Mars/Olympus", 8},
		{"hour too high", "reader@example.com", "UTC", 24},
		{"negative hour", "reader@example.com", "UTC", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quotes.NewSubscription(tt.email, tt.timezone, tt.hour)
			assert.Error(t, err)
		})
	}
}

func TestNewSubscription_DefaultsTimezoneToUTC(t *testing.T) {
	s, err := quotes.NewSubscription("reader@example.com", "", 8)

	require.NoError(t, err)
	assert.Equal(t, "UTC", s.Timezone)
}

func TestSubscription_DueAt(t *testing.T) {
	s, err := quotes.NewSubscription("reader@example.com", "America/New_York", 8)
	require.NoError(t, err)

	// 13:00 UTC is 08:00 in New York during daylight saving time.
	assert.True(t, s.DueAt(time.Date(2025, 7, 15, 13, 0, 0, 0, time.UTC)))
	assert.False(t, s.DueAt(time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)))
}

func TestSubscription_DueAt_UnknownZoneFallsBackToUTC(t *testing.T) {
	s, err := quotes.NewSubscription("reader@example.com", "UTC", 8)
	require.NoError(t, err)
	s.Timezone = "Not/AZone"

	assert.True(t, s.DueAt(time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)))
}

func TestSubscription_DueAt_InactiveNeverDue(t *testing.T) {
	s, err := quotes.NewSubscription("reader@example.com", "UTC", 8)
	require.NoError(t, err)
	s.Unsubscribe()

	assert.False(t, s.DueAt(time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)))
}

func TestSubscription_RecordDelivery(t *testing.T) {
	s, err := quotes.NewSubscription("reader@example.com", "UTC", 8)
	require.NoError(t, err)

	sent := time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)
	s.RecordDelivery(sent)
	s.RecordDelivery(sent.Add(24 * time.Hour))

	assert.Equal(t, 2, s.TotalSent)
	assert.Equal(t, "2025-07-16T08:00:00Z", s.LastSentAt)
}

func TestSubscription_ResubscribeRestoresDelivery(t *testing.T) {
	s, err := quotes.NewSubscription("reader@example.com", "UTC", 8)
	require.NoError(t, err)
	s.Unsubscribe()
	s.Resubscribe()

	assert.True(t, s.IsSubscribed)
}
