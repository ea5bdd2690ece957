package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"gorm.io/gorm"
)

// RequireActiveSubscription blocks drivers without a current subscription
// from posting trips. Admins are exempt.
func RequireActiveSubscription(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if models.Role(c.GetString("userRole")) == models.RoleAdmin {
			c.Next()
			return
		}

		userID := c.GetUint("userId")

		var sub models.Subscription
		err := db.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
			Order("end_date DESC").
			First(&sub).Error
		if err != nil || !sub.IsActive() {
			c.JSON(403, gin.H{"ok": false, "message": "An active subscription is required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
