package repositories

import (
	"errors"
	"fmt"

	"boutique/internal/apperrors"
	"boutique/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for newsletter subscriptions.
type SubscriptionRepository interface {
	GetByEmail(email string) (*models.Subscription, error)
	Create(sub *models.Subscription) error
	SetActive(email string, active bool) error
}

// GORMSubscriptionRepository is a GORM implementation of SubscriptionRepository.
type GORMSubscriptionRepository struct {
	db *gorm.DB
}

// NewGORMSubscriptionRepository creates a new instance of GORMSubscriptionRepository.
func NewGORMSubscriptionRepository(db *gorm.DB) *GORMSubscriptionRepository {
	return &GORMSubscriptionRepository{
		db: db,
	}
}

// GetByEmail retrieves a subscription by email.
func (r *GORMSubscriptionRepository) GetByEmail(email string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.First(&sub, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription for %s: %w", email, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription for %s: %w", email, err)
	}
	return &sub, nil
}

// Create adds a new subscription.
func (r *GORMSubscriptionRepository) Create(sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if err := r.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// SetActive flips a subscription's active flag.
func (r *GORMSubscriptionRepository) SetActive(email string, active bool) error {
	res := r.db.Model(&models.Subscription{}).Where("email = ?", email).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update subscription for %s: %w", email, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription for %s: %w", email, apperrors.ErrNotFound)
	}
	return nil
}
