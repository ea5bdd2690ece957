package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"gorm.io/gorm"
)

// GetNotifications lists the acting user's notifications, newest first
func GetNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var notifications []models.Notification
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&notifications).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch notifications"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": notifications})
	}
}

// MarkNotificationRead flags one of the user's notifications as read
func MarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var notification models.Notification
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).
			First(&notification).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Notification not found"})
			return
		}

		if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to update notification"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Notification marked as read", "data": notification})
	}
}

// DeleteNotification removes one of the user's notifications
func DeleteNotification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var notification models.Notification
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).
			First(&notification).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Notification not found"})
			return
		}

		if err := db.Delete(&notification).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to delete notification"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Notification deleted successfully"})
	}
}
