package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"github.com/rwandashareride/backend/pkg/utils"
	"gorm.io/gorm"
)

const subscriptionPeriod = 30 * 24 * time.Hour

// ActivateSubscription starts a 30-day posting subscription for the driver.
func ActivateSubscription(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var existing models.Subscription
		err := db.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
			Order("end_date DESC").First(&existing).Error
		if err == nil && existing.IsActive() {
			c.JSON(409, gin.H{"ok": false, "message": "You already have an active subscription"})
			return
		}

		now := time.Now()
		subscription := models.Subscription{
			UserID:    userID,
			Status:    models.SubscriptionStatusActive,
			StartDate: now,
			EndDate:   now.Add(subscriptionPeriod),
		}
		if err := db.Create(&subscription).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to activate subscription"})
			return
		}

		if err := notifier.Notify(userID,
			"Your subscription is now active. You can post trips for the next 30 days.",
			models.NotificationCategorySubscription); err != nil {
			log.Printf("Failed to notify user %d of subscription %d: %v", userID, subscription.ID, err)
		}

		var user models.User
		if err := db.First(&user, userID).Error; err == nil {
			endDate := subscription.EndDate.Format("2006-01-02")
			go func() {
				if err := utils.SendSubscriptionActivatedEmail(user.Email, user.FirstName, endDate); err != nil {
					log.Printf("Failed to send subscription email to %s: %v", user.Email, err)
				}
			}()
		}

		c.JSON(201, gin.H{"ok": true, "message": "Subscription successfully activated", "data": subscription})
	}
}

// GetSubscriptionStatus reports whether the acting user can post trips
func GetSubscriptionStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var subscription models.Subscription
		err := db.Where("user_id = ?", userID).
			Order("end_date DESC").First(&subscription).Error
		if err != nil {
			c.JSON(200, gin.H{"ok": true, "data": gin.H{"active": false}})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": gin.H{
			"active":       subscription.IsActive(),
			"subscription": subscription,
		}})
	}
}

// ExpireLapsedSubscriptions flips every past-end-date Active subscription to
// Expired (admin sweep).
func ExpireLapsedSubscriptions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Model(&models.Subscription{}).
			Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, time.Now()).
			Update("status", models.SubscriptionStatusExpired)
		if res.Error != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to expire subscriptions"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Lapsed subscriptions expired", "data": gin.H{"expired": res.RowsAffected}})
	}
}
