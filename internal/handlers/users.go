package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"gorm.io/gorm"
)

// GetProfile retrieves the authenticated user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "User not found"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": user})
	}
}

// UpdateProfile updates the user's profile information. An optional
// multipart "photo" field replaces the profile picture.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "User not found"})
			return
		}

		if firstName := c.PostForm("firstName"); firstName != "" {
			user.FirstName = firstName
		}
		if lastName := c.PostForm("lastName"); lastName != "" {
			user.LastName = lastName
		}
		if phone := c.PostForm("phoneNumber"); phone != "" {
			user.PhoneNumber = phone
		}

		if file, err := c.FormFile("photo"); err == nil {
			url, err := services.UploadImage(file, services.FolderProfiles)
			if err != nil {
				c.JSON(500, gin.H{"ok": false, "message": "Failed to upload profile picture"})
				return
			}
			user.ProfilePicture = url
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to update profile"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Profile successfully updated", "data": user})
	}
}

// GetUsers lists all users (admin only)
func GetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch users"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": users})
	}
}

// UpdateUserRole changes a user's role (admin only). The seeded super-admin
// account cannot be demoted.
func UpdateUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Role string `json:"role" binding:"required,oneof=admin driver passenger"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "User not found"})
			return
		}

		if user.ID == models.SuperAdminID {
			c.JSON(403, gin.H{"ok": false, "message": "The super admin account cannot be modified"})
			return
		}

		if err := db.Model(&user).Update("role", models.Role(input.Role)).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to update role"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Role successfully updated", "data": user})
	}
}

// DeleteUser removes a user account (admin only, super-admin protected)
func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "User not found"})
			return
		}

		if user.ID == models.SuperAdminID {
			c.JSON(403, gin.H{"ok": false, "message": "The super admin account cannot be deleted"})
			return
		}

		if err := db.Delete(&user).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to delete user"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "User deleted successfully"})
	}
}
