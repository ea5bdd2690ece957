package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"gorm.io/gorm"
)

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// CreateContactEntry stores a public contact form submission.
func CreateContactEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ContactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		entry := models.ContactUs{
			Name:    input.Name,
			Email:   input.Email,
			Message: input.Message,
		}
		if err := db.Create(&entry).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to submit message"})
			return
		}

		c.JSON(201, gin.H{"ok": true, "message": "Message successfully submitted", "data": entry})
	}
}

// GetContactEntries lists all contact form submissions (admin only)
func GetContactEntries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []models.ContactUs
		if err := db.Order("created_at DESC").Find(&entries).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch messages"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": entries})
	}
}

// GetContactEntry fetches a single contact form submission (admin only)
func GetContactEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entry models.ContactUs
		if err := db.First(&entry, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Message not found"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": entry})
	}
}

// DeleteContactEntry removes a contact form submission (admin only)
func DeleteContactEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entry models.ContactUs
		if err := db.First(&entry, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Message not found"})
			return
		}

		if err := db.Delete(&entry).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to delete message"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Message deleted successfully"})
	}
}
