package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

// SubscriptionService manages daily nugget signups.
type SubscriptionService struct {
	subRepo ports.SubscriptionRepository
	mailer  ports.EmailSender
	logger  *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subRepo ports.SubscriptionRepository,
	mailer ports.EmailSender,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo: subRepo,
		mailer:  mailer,
		logger:  logger,
	}
}

// Subscribe creates or reactivates a subscription and sends a welcome email.
func (s *SubscriptionService) Subscribe(ctx context.Context, email, timezone string, preferredHour int) (*quotes.Subscription, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	existing, err := s.subRepo.GetByEmail(ctx, normalized)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		if existing.IsSubscribed {
			return nil, errors.NewConflictError("this email address is already subscribed")
		}
		existing.Resubscribe()
		if timezone != "" {
			existing.Timezone = timezone
		}
		if preferredHour >= 0 && preferredHour <= 23 {
			existing.PreferredHour = preferredHour
		}
		if err := s.subRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("Subscription reactivated", zap.String("email", normalized))
		return existing, nil
	}

	sub, err := quotes.NewSubscription(email, timezone, preferredHour)
	if err != nil {
		return nil, err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.Send(ctx, welcomeEmail(sub.Email)); err != nil {
			s.logger.Warn("failed to send welcome email",
				zap.Error(err),
				zap.String("email", sub.Email),
			)
		}
	}

	s.logger.Info("Subscription created",
		zap.String("email", sub.Email),
		zap.String("timezone", sub.Timezone),
		zap.Int("preferredHour", sub.PreferredHour),
	)
	return sub, nil
}

// Unsubscribe deactivates delivery. Unknown addresses succeed silently so
// the unsubscribe link can never fail for the recipient.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	sub, err := s.subRepo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	sub.Unsubscribe()
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("Subscription cancelled", zap.String("email", normalized))
	return nil
}

// GetSubscription returns the record for an email address.
func (s *SubscriptionService) GetSubscription(ctx context.Context, email string) (*quotes.Subscription, error) {
	return s.subRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ListSubscriptions returns every subscription record for the admin view.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context) ([]*quotes.Subscription, error) {
	return s.subRepo.ListAll(ctx)
}

func welcomeEmail(to string) *ports.Email {
	return &ports.Email{
		To:      to,
		Subject: "Welcome to Daily Nuggets",
		HTMLBody: fmt.Sprintf(`<html><body style="font-family: Georgia, serif; color: #333;">
<h2>Welcome to Daily Nuggets</h2>
<p>You'll receive one hand-picked quote each morning at your preferred hour.</p>
<p style="color: #888; font-size: 12px;">To stop receiving these, reply with unsubscribe or use the link in any nugget email sent to %s.</p>
</body></html>`, to),
		TextBody: "Welcome to Daily Nuggets. You'll receive one hand-picked quote each morning at your preferred hour.",
	}
}
