package handlers

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"gorm.io/gorm"
)

type ReviewInput struct {
	ReviewedUserID uint   `json:"reviewedUserId" binding:"required"`
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Comment        string `json:"comment" binding:"required"`
}

// CreateReview leaves a rating on another user and notifies them.
func CreateReview(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewerID := c.GetUint("userId")

		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		if input.ReviewedUserID == reviewerID {
			c.JSON(403, gin.H{"ok": false, "message": "You cannot review yourself"})
			return
		}

		var reviewed models.User
		if err := db.First(&reviewed, input.ReviewedUserID).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "User not found"})
			return
		}

		review := models.Review{
			ReviewedUserID: input.ReviewedUserID,
			ReviewerID:     reviewerID,
			Rating:         input.Rating,
			Comment:        input.Comment,
		}
		if err := db.Create(&review).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to create review"})
			return
		}

		var reviewer models.User
		if err := db.First(&reviewer, reviewerID).Error; err == nil {
			message := fmt.Sprintf("%s left you a %d-star review.", reviewer.FullName(), review.Rating)
			if err := notifier.Notify(reviewed.ID, message, models.NotificationCategoryTrip); err != nil {
				log.Printf("Failed to notify user %d of review %d: %v", reviewed.ID, review.ID, err)
			}
		}

		c.JSON(201, gin.H{"ok": true, "message": "Review successfully created", "data": review})
	}
}

// GetReviewsForUser lists all reviews left on a user
func GetReviewsForUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reviews []models.Review
		if err := db.Where("reviewed_user_id = ?", c.Param("id")).
			Preload("Reviewer").
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch reviews"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": reviews})
	}
}

// DeleteReview removes a review (reviewer or admin)
func DeleteReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var review models.Review
		if err := db.First(&review, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Review not found"})
			return
		}

		if review.ReviewerID != userID && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "Only the review author can delete this review"})
			return
		}

		if err := db.Delete(&review).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to delete review"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Review deleted successfully"})
	}
}
