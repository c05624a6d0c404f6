package models

import "time"

// Subscription is a newsletter sign-up.
type Subscription struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
