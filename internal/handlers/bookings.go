package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/matching"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"github.com/rwandashareride/backend/pkg/utils"
	"gorm.io/gorm"
)

// CreateBooking books the acting passenger onto a trip. Each passenger can
// hold at most one booking per trip.
func CreateBooking(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		passengerID := c.GetUint("userId")

		tripID, err := strconv.ParseUint(c.Query("tripId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "tripId query parameter is required"})
			return
		}

		var trip models.Trip
		if err := db.Preload("Driver").First(&trip, tripID).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Trip not found"})
			return
		}

		if trip.DriverID == passengerID {
			c.JSON(403, gin.H{"ok": false, "message": "You cannot book your own trip"})
			return
		}

		if trip.AvailableSeats < 1 {
			c.JSON(403, gin.H{"ok": false, "message": "No seats available on this trip"})
			return
		}

		var existing models.Booking
		if err := db.Where("trip_id = ? AND passenger_id = ?", trip.ID, passengerID).
			First(&existing).Error; err == nil {
			c.JSON(409, gin.H{"ok": false, "message": "You have already booked this trip"})
			return
		}

		booking := models.Booking{
			TripID:        trip.ID,
			PassengerID:   passengerID,
			BookingStatus: models.BookingStatusPending,
		}
		if err := db.Create(&booking).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to create booking"})
			return
		}

		var passenger models.User
		if err := db.First(&passenger, passengerID).Error; err == nil {
			message := fmt.Sprintf(
				"%s has requested to book a seat on your trip from %s to %s on %s.",
				passenger.FullName(), trip.Origin, trip.Destination, trip.DepartureDate,
			)
			if err := notifier.Notify(trip.DriverID, message, models.NotificationCategoryBooking); err != nil {
				log.Printf("Failed to notify driver %d of booking %d: %v", trip.DriverID, booking.ID, err)
			}

			if trip.Driver != nil {
				driverEmail := trip.Driver.Email
				driverName := trip.Driver.FullName()
				passengerName := passenger.FullName()
				go func() {
					if err := utils.SendTripBookedEmail(driverEmail, driverName, passengerName, trip.Origin, trip.Destination, trip.DepartureDate); err != nil {
						log.Printf("Failed to send booking email to %s: %v", driverEmail, err)
					}
				}()
			}
		}

		c.JSON(201, gin.H{"ok": true, "message": "Booking successfully created", "data": booking})
	}
}

// GetDriverBookings lists pending bookings on the acting driver's trips
func GetDriverBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var bookings []models.Booking
		err := db.Joins("JOIN trips ON trips.id = bookings.trip_id").
			Where("trips.driver_id = ? AND bookings.booking_status = ?", driverID, models.BookingStatusPending).
			Preload("Trip").Preload("Passenger").
			Order("bookings.created_at DESC").
			Find(&bookings).Error
		if err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": bookings})
	}
}

// GetBookingsForTrip lists all bookings on one trip (trip owner or admin)
func GetBookingsForTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var trip models.Trip
		if err := db.First(&trip, c.Param("tripId")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Trip not found"})
			return
		}

		if trip.DriverID != userID && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "Only the trip owner can view its bookings"})
			return
		}

		var bookings []models.Booking
		if err := db.Where("trip_id = ?", trip.ID).
			Preload("Passenger").
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": bookings})
	}
}

// GetBooking fetches a single booking (passenger, trip owner or admin)
func GetBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var booking models.Booking
		if err := db.Preload("Trip").Preload("Passenger").
			First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Booking not found"})
			return
		}

		isOwner := booking.PassengerID == userID ||
			(booking.Trip != nil && booking.Trip.DriverID == userID)
		if !isOwner && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "You do not have access to this booking"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": booking})
	}
}

// ProcessBookingRequest lets the trip's driver approve or decline a booking.
func ProcessBookingRequest(db *gorm.DB, engine *matching.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var input struct {
			Action string `json:"action" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		bookingID, err := strconv.ParseUint(c.Query("bookingId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "bookingId query parameter is required"})
			return
		}

		var booking models.Booking
		if err := db.Preload("Trip").First(&booking, bookingID).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Booking not found"})
			return
		}
		if booking.Trip == nil || booking.Trip.DriverID != driverID {
			c.JSON(403, gin.H{"ok": false, "message": "Only the trip owner can process this booking"})
			return
		}

		processed, err := engine.ProcessBooking(c.Request.Context(), uint(bookingID), input.Action)
		if err != nil {
			switch {
			case errors.Is(err, matching.ErrInvalidAction):
				c.JSON(400, gin.H{"ok": false, "message": "action must be approve or decline"})
			case errors.Is(err, matching.ErrBookingNotFound):
				c.JSON(404, gin.H{"ok": false, "message": "Booking not found"})
			case errors.Is(err, matching.ErrAlreadyProcessed):
				c.JSON(403, gin.H{"ok": false, "message": "This booking has already been processed"})
			case errors.Is(err, matching.ErrCapacityExhausted):
				c.JSON(403, gin.H{"ok": false, "message": "No seats left on this trip"})
			default:
				c.JSON(500, gin.H{"ok": false, "message": "Failed to process booking"})
			}
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": fmt.Sprintf("Booking successfully %sd", input.Action), "data": processed})
	}
}

// DeleteBooking cancels a booking (passenger or admin). Approved bookings
// release their seat back to the trip.
func DeleteBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var booking models.Booking
		if err := db.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Booking not found"})
			return
		}

		if booking.PassengerID != userID && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "Only the booking owner can cancel this booking"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if booking.BookingStatus == models.BookingStatusApproved {
				if err := tx.Model(&models.Trip{}).Where("id = ?", booking.TripID).
					Update("available_seats", gorm.Expr("available_seats + 1")).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&booking).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to cancel booking"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Booking cancelled successfully"})
	}
}
