package quotes

import (
	"regexp"
	"strings"
	"time"

	"quoteme-backend/pkg/errors"
)

// Delivery methods for daily nuggets.
const (
	DeliveryEmail = "email"
	DeliveryPush  = "push"
)

// DefaultPreferredHour is the local hour nuggets are sent when the
// subscriber has not chosen one.
const DefaultPreferredHour = 8

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Subscription is a daily nugget signup keyed by email address.
type Subscription struct {
	Email          string `json:"email"`
	IsSubscribed   bool   `json:"is_subscribed"`
	DeliveryMethod string `json:"delivery_method"`
	Timezone       string `json:"timezone"`
	PreferredHour  int    `json:"preferred_hour"`
	LastSentAt     string `json:"last_sent_at,omitempty"`
	TotalSent      int    `json:"total_sent"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// NewSubscription creates an active subscription with validated inputs.
// Timezone defaults to UTC and preferred hour to DefaultPreferredHour.
func NewSubscription(email, timezone string, preferredHour int) (*Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRE.MatchString(email) {
		return nil, errors.NewValidationError("invalid email address")
	}

	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, errors.NewValidationError("unknown timezone: " + timezone)
	}

	if preferredHour < 0 || preferredHour > 23 {
		return nil, errors.NewValidationError("preferred_hour must be between 0 and 23")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &Subscription{
		Email:          email,
		IsSubscribed:   true,
		DeliveryMethod: DeliveryEmail,
		Timezone:       timezone,
		PreferredHour:  preferredHour,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Unsubscribe deactivates delivery without deleting history.
func (s *Subscription) Unsubscribe() {
	s.IsSubscribed = false
	s.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// Resubscribe reactivates a previously cancelled subscription.
func (s *Subscription) Resubscribe() {
	s.IsSubscribed = true
	s.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// DueAt reports whether a nugget should be sent at the given UTC instant.
// The subscriber's preferred local hour is mapped through their timezone;
// unknown zones fall back to UTC so a bad record never blocks the batch.
func (s *Subscription) DueAt(utcNow time.Time) bool {
	if !s.IsSubscribed {
		return false
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return utcNow.In(loc).Hour() == s.PreferredHour
}

// RecordDelivery updates delivery stats after a successful send.
func (s *Subscription) RecordDelivery(sentAt time.Time) {
	s.LastSentAt = sentAt.UTC().Format(time.RFC3339)
	s.TotalSent++
	s.UpdatedAt = s.LastSentAt
}
