package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"gorm.io/gorm"
)

type MessageInput struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// SendMessage persists a direct message and pushes it to the receiver's live
// connections when there are any.
func SendMessage(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID := c.GetUint("userId")

		var input MessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		if input.ReceiverID == senderID {
			c.JSON(400, gin.H{"ok": false, "message": "You cannot message yourself"})
			return
		}

		var receiver models.User
		if err := db.First(&receiver, input.ReceiverID).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Receiver not found"})
			return
		}

		message := models.Message{
			SenderID:   senderID,
			ReceiverID: input.ReceiverID,
			Body:       input.Body,
		}
		if err := db.Create(&message).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to send message"})
			return
		}

		hub.SendChatMessage(receiver.ID, services.ChatMessage{
			MessageID: message.ID,
			SenderID:  senderID,
			Body:      message.Body,
		})

		c.JSON(201, gin.H{"ok": true, "message": "Message sent", "data": message})
	}
}

// GetConversation lists the message history between the acting user and
// another user, oldest first.
func GetConversation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		otherID := c.Param("id")

		var messages []models.Message
		err := db.Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID,
		).Order("created_at ASC").Find(&messages).Error
		if err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch messages"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": messages})
	}
}
