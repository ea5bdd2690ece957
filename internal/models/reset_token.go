package models

import (
	"time"

	"gorm.io/gorm"
)

// ResetToken is a single-use password reset token delivered by email.
type ResetToken struct {
	gorm.Model
	UserID    uint      `json:"userId" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (ResetToken) TableName() string {
	return "reset_tokens"
}

// IsValid checks that the token is neither used nor expired.
func (t *ResetToken) IsValid() bool {
	return !t.Used && time.Now().Before(t.ExpiresAt)
}
