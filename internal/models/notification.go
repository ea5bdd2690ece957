package models

import "gorm.io/gorm"

type NotificationCategory string

const (
	NotificationCategoryRequest      NotificationCategory = "Request"
	NotificationCategoryBooking      NotificationCategory = "Booking"
	NotificationCategoryTrip         NotificationCategory = "Trip"
	NotificationCategorySubscription NotificationCategory = "Subscription"
)

// Notification is a durable in-app notification record.
type Notification struct {
	gorm.Model
	UserID   uint                 `json:"userId" gorm:"not null;index"`
	Message  string               `json:"message" gorm:"type:text;not null"`
	Category NotificationCategory `json:"category" gorm:"not null"`
	IsRead   bool                 `json:"isRead" gorm:"not null;default:false"`
	User     *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}
