package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/pkg/utils"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role" binding:"required,oneof=driver passenger"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		user := models.User{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Email:       input.Email,
			Password:    input.Password,
			PhoneNumber: input.PhoneNumber,
			Role:        models.Role(input.Role),
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to hash password"})
			return
		}

		if err := db.Create(&user).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to create user"})
			return
		}

		go func() {
			if err := utils.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
				log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
			}
		}()

		c.JSON(201, gin.H{
			"ok":      true,
			"message": "User successfully registered",
			"data": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
				"role":      user.Role,
			},
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(401, gin.H{"ok": false, "message": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"ok": false, "message": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"ok":      true,
			"message": "Login successful",
			"data": gin.H{
				"token": token,
				"user": gin.H{
					"id":        user.ID,
					"email":     user.Email,
					"firstName": user.FirstName,
					"lastName":  user.LastName,
					"role":      user.Role,
				},
			},
		})
	}
}

// RequestPasswordReset emails a single-use reset token. The response is the
// same whether or not the address exists.
func RequestPasswordReset(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(200, gin.H{"ok": true, "message": "If the email exists, a reset link has been sent"})
			return
		}

		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to generate reset token"})
			return
		}
		token := hex.EncodeToString(raw)

		resetToken := models.ResetToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := db.Create(&resetToken).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to store reset token"})
			return
		}

		go func() {
			if err := utils.SendPasswordResetEmail(user.Email, token); err != nil {
				log.Printf("Failed to send reset email to %s: %v", user.Email, err)
			}
		}()

		c.JSON(200, gin.H{"ok": true, "message": "If the email exists, a reset link has been sent"})
	}
}

// ResetPassword consumes a reset token and sets the new password.
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Token    string `json:"token" binding:"required"`
			Password string `json:"password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		var resetToken models.ResetToken
		if err := db.Where("token = ?", input.Token).First(&resetToken).Error; err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "Invalid or expired reset token"})
			return
		}
		if !resetToken.IsValid() {
			c.JSON(400, gin.H{"ok": false, "message": "Invalid or expired reset token"})
			return
		}

		var user models.User
		if err := db.First(&user, resetToken.UserID).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "User not found"})
			return
		}

		user.Password = input.Password
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to hash password"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&user).Update("password_hash", user.PasswordHash).Error; err != nil {
				return err
			}
			return tx.Model(&resetToken).Update("used", true).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to reset password"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Password successfully reset"})
	}
}
