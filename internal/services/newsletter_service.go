package services

import (
	"errors"
	"fmt"
	"time"

	"boutique/internal/apperrors"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/mailer"
)

// NewsletterService manages newsletter subscriptions.
type NewsletterService struct {
	repo       repositories.SubscriptionRepository
	dispatcher *mailer.Dispatcher
}

// NewNewsletterService creates a new NewsletterService.
func NewNewsletterService(repo repositories.SubscriptionRepository, dispatcher *mailer.Dispatcher) *NewsletterService {
	return &NewsletterService{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// Subscribe signs an email up, reactivating a lapsed subscription. A welcome
// email goes out best-effort.
func (s *NewsletterService) Subscribe(email string) error {
	if email == "" {
		return fmt.Errorf("email required: %w", apperrors.ErrInvalidRequest)
	}

	existing, err := s.repo.GetByEmail(email)
	switch {
	case err == nil && existing.IsActive:
		return fmt.Errorf("already subscribed: %w", apperrors.ErrConflict)
	case err == nil:
		if err := s.repo.SetActive(email, true); err != nil {
			return err
		}
	case errors.Is(err, apperrors.ErrNotFound):
		if err := s.repo.Create(&models.Subscription{
			Email:        email,
			IsActive:     true,
			SubscribedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
	default:
		return err
	}

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(mailer.KindWelcome, email, mailer.Data{
			Subject:  "Welcome to our newsletter!",
			Username: email,
		})
	}
	return nil
}

// Unsubscribe deactivates a subscription.
func (s *NewsletterService) Unsubscribe(email string) error {
	if email == "" {
		return fmt.Errorf("email required: %w", apperrors.ErrInvalidRequest)
	}
	return s.repo.SetActive(email, false)
}
