package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/matching"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"gorm.io/gorm"
)

type RequestInput struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	TravelDate    string `json:"travelDate" binding:"required"`
	SeatsRequired int    `json:"seatsRequired" binding:"required,min=1"`
	Description   string `json:"description"`
}

// CreateRequest posts a ride request and notifies all drivers about it.
func CreateRequest(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input RequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		if _, err := time.Parse(dateLayout, input.TravelDate); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "travelDate must be YYYY-MM-DD"})
			return
		}

		request := models.Request{
			UserID:        userID,
			Origin:        input.Origin,
			Destination:   input.Destination,
			TravelDate:    input.TravelDate,
			SeatsRequired: input.SeatsRequired,
			Description:   input.Description,
			Status:        models.RequestStatusPending,
		}
		if err := db.Create(&request).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to create request"})
			return
		}

		go func() {
			message := fmt.Sprintf(
				"New ride request from %s to %s on %s (%d seats). Post a matching trip or take it now!",
				request.Origin, request.Destination, request.TravelDate, request.SeatsRequired,
			)
			if err := notifier.NotifyAllDrivers(message, models.NotificationCategoryRequest); err != nil {
				log.Printf("Failed to notify drivers of request %d: %v", request.ID, err)
			}
		}()

		c.JSON(201, gin.H{"ok": true, "message": "Request successfully created", "data": request})
	}
}

// GetRequests lists ride requests with their requesting users
func GetRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var requests []models.Request
		if err := db.Preload("User").Order("created_at DESC").Find(&requests).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch requests"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": requests})
	}
}

// GetRequest fetches a single ride request
func GetRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.Request
		if err := db.Preload("User").First(&request, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Request not found"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": request})
	}
}

// DeleteRequest removes a ride request. Only the owner (or an admin) may
// delete it, and only while it is still pending.
func DeleteRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var request models.Request
		if err := db.First(&request, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Request not found"})
			return
		}

		if request.UserID != userID && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "Only the request owner can delete this request"})
			return
		}

		if request.Status != models.RequestStatusPending {
			c.JSON(409, gin.H{"ok": false, "message": "A matched request can no longer be deleted"})
			return
		}

		if err := db.Delete(&request).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to delete request"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Request deleted successfully"})
	}
}

// TakeAndApproveRequest lets the acting driver claim a pending request
// against one of their compatible trips.
func TakeAndApproveRequest(engine *matching.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		requestID, err := strconv.ParseUint(c.Param("requestId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "Invalid request id"})
			return
		}

		result, err := engine.TakeAndApprove(c.Request.Context(), uint(requestID), driverID)
		if err != nil {
			switch {
			case errors.Is(err, matching.ErrRequestNotFound):
				c.JSON(404, gin.H{"ok": false, "message": "Request not found"})
			case errors.Is(err, matching.ErrAlreadyMatched):
				c.JSON(403, gin.H{"ok": false, "message": "This request has already been matched"})
			case errors.Is(err, matching.ErrNoMatchingTrip):
				c.JSON(403, gin.H{"ok": false, "message": "No matching trip with enough seats was found for this request"})
			default:
				c.JSON(500, gin.H{"ok": false, "message": "Failed to process request"})
			}
			return
		}

		c.JSON(200, gin.H{
			"ok":      true,
			"message": "Request successfully taken and approved",
			"data": gin.H{
				"request": result.Request,
				"trip":    result.Trip,
				"booking": result.Booking,
			},
		})
	}
}
