package services

import (
	"log"

	"github.com/rwandashareride/backend/internal/models"
	"gorm.io/gorm"
)

// Notifier writes durable in-app notification records. It is the
// notification sink the matching engine and handlers fire into; failures
// are logged by callers and never surfaced to the end user.
type Notifier struct {
	db *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Notify creates a notification record for the user.
func (n *Notifier) Notify(userID uint, message string, category models.NotificationCategory) error {
	notification := models.Notification{
		UserID:   userID,
		Message:  message,
		Category: category,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		return err
	}
	return nil
}

// NotifyAllDrivers fans a notification out to every driver. Used when a new
// ride request is posted.
func (n *Notifier) NotifyAllDrivers(message string, category models.NotificationCategory) error {
	var drivers []models.User
	if err := n.db.Where("role = ?", models.RoleDriver).Find(&drivers).Error; err != nil {
		return err
	}

	for _, driver := range drivers {
		if err := n.Notify(driver.ID, message, category); err != nil {
			log.Printf("Failed to notify driver %d: %v", driver.ID, err)
		}
	}
	return nil
}
