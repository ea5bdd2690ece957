package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "Active"
	SubscriptionStatusExpired SubscriptionStatus = "Expired"
)

// Subscription gates a driver's ability to post trips.
type Subscription struct {
	gorm.Model
	UserID    uint               `json:"userId" gorm:"not null;index"`
	Status    SubscriptionStatus `json:"status" gorm:"not null;default:'Active'"`
	StartDate time.Time          `json:"startDate" gorm:"not null"`
	EndDate   time.Time          `json:"endDate" gorm:"not null"`
	User      *User              `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive reports whether the subscription is usable right now.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive && time.Now().Before(s.EndDate)
}
