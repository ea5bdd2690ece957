package matching

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rwandashareride/backend/internal/models"
	"gorm.io/gorm"
)

// Booking actions accepted by ProcessBooking.
const (
	ActionApprove = "approve"
	ActionDecline = "decline"
)

// Notifier is the durable notification sink. Failures are logged by the
// engine and never propagated.
type Notifier interface {
	Notify(userID uint, message string, category models.NotificationCategory) error
}

// Mailer is the email sink, one method per template kind.
type Mailer interface {
	SendRequestApproved(passengerEmail, passengerName, driverName, origin, destination, travelDate string) error
	SendBookingApproved(passengerEmail, passengerName, driverName, origin, destination, travelDate string) error
	SendBookingDeclined(passengerEmail, passengerName, driverName string) error
}

// UserRouter delivers realtime payloads to a connected user, if any.
type UserRouter interface {
	SendRequestApproved(passengerID uint, requestID, tripID, driverID uint, driverName string)
	SendBookingProcessed(passengerID uint, bookingID, tripID uint, status string)
}

// Publisher fans match events out to other instances.
type Publisher interface {
	PublishMatchUpdate(ctx context.Context, requestID uint, status string, data map[string]interface{}) error
	PublishBookingUpdate(ctx context.Context, bookingID uint, status string, data map[string]interface{}) error
}

// Engine coordinates the request/trip/booking state machine. All state
// transitions happen inside a single database transaction; the notification,
// email and realtime side effects run only after that transaction commits
// and can never roll it back.
type Engine struct {
	db        *gorm.DB
	notifier  Notifier
	mailer    Mailer
	router    UserRouter
	publisher Publisher
}

func NewEngine(db *gorm.DB, notifier Notifier, mailer Mailer, router UserRouter, publisher Publisher) *Engine {
	return &Engine{
		db:        db,
		notifier:  notifier,
		mailer:    mailer,
		router:    router,
		publisher: publisher,
	}
}

// MatchResult is the state of the three entities after a successful match.
type MatchResult struct {
	Request models.Request
	Trip    models.Trip
	Booking models.Booking
}

// TakeAndApprove lets the acting driver claim a pending ride request against
// one of their own compatible trips. In one transaction it marks the request
// Matched, decrements the trip's seats by the request's SeatsRequired and
// approves the passenger's booking on that trip (creating it when absent).
//
// The status flip and the seat decrement are conditional writes, so two
// drivers racing for the same request, or two matches racing for the same
// trip's last seats, resolve to exactly one winner.
func (e *Engine) TakeAndApprove(ctx context.Context, requestID, driverID uint) (*MatchResult, error) {
	var result MatchResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.Request
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if req.Status == models.RequestStatusMatched {
			return ErrAlreadyMatched
		}

		var trip models.Trip
		err := tx.Where(
			"driver_id = ? AND origin = ? AND destination = ? AND departure_date = ? AND available_seats >= ?",
			driverID, req.Origin, req.Destination, req.TravelDate, req.SeatsRequired,
		).Order("id").First(&trip).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoMatchingTrip
			}
			return err
		}

		// Re-check the status at write time; a concurrent claim loses here.
		res := tx.Model(&models.Request{}).
			Where("id = ? AND status <> ?", req.ID, models.RequestStatusMatched).
			Update("status", models.RequestStatusMatched)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyMatched
		}

		// Seat arithmetic re-validated at write time; never goes negative.
		res = tx.Model(&models.Trip{}).
			Where("id = ? AND available_seats >= ?", trip.ID, req.SeatsRequired).
			Update("available_seats", gorm.Expr("available_seats - ?", req.SeatsRequired))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoMatchingTrip
		}

		// Approve the passenger's booking on the matched trip,
		// creating it when the passenger never booked directly.
		var booking models.Booking
		err = tx.Where("trip_id = ? AND passenger_id = ?", trip.ID, req.UserID).First(&booking).Error
		switch {
		case err == nil:
			if err := tx.Model(&booking).
				Update("booking_status", models.BookingStatusApproved).Error; err != nil {
				return err
			}
			booking.BookingStatus = models.BookingStatusApproved
		case errors.Is(err, gorm.ErrRecordNotFound):
			booking = models.Booking{
				TripID:        trip.ID,
				PassengerID:   req.UserID,
				BookingStatus: models.BookingStatusApproved,
			}
			if err := tx.Create(&booking).Error; err != nil {
				return err
			}
		default:
			return err
		}

		req.Status = models.RequestStatusMatched
		trip.AvailableSeats -= req.SeatsRequired
		result = MatchResult{Request: req, Trip: trip, Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.dispatchRequestApproved(ctx, &result)
	return &result, nil
}

// ProcessBooking approves or declines a pending booking. An approval
// decrements the trip's seats by exactly one, unlike the request path which
// decrements by the request's SeatsRequired. A booking that already left
// Pending cannot be processed again.
func (e *Engine) ProcessBooking(ctx context.Context, bookingID uint, action string) (*models.Booking, error) {
	if action != ActionApprove && action != ActionDecline {
		return nil, ErrInvalidAction
	}

	var booking models.Booking
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Trip").Preload("Trip.Driver").Preload("Passenger").
			First(&booking, bookingID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.BookingStatus != models.BookingStatusPending {
			return ErrAlreadyProcessed
		}

		if action == ActionDecline {
			res := tx.Model(&models.Booking{}).
				Where("id = ? AND booking_status = ?", booking.ID, models.BookingStatusPending).
				Update("booking_status", models.BookingStatusDeclined)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrAlreadyProcessed
			}
			booking.BookingStatus = models.BookingStatusDeclined
			return nil
		}

		res := tx.Model(&models.Trip{}).
			Where("id = ? AND available_seats >= 1", booking.TripID).
			Update("available_seats", gorm.Expr("available_seats - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCapacityExhausted
		}

		// Re-checked at write time; a lost race rolls the decrement back.
		res = tx.Model(&models.Booking{}).
			Where("id = ? AND booking_status = ?", booking.ID, models.BookingStatusPending).
			Update("booking_status", models.BookingStatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		booking.BookingStatus = models.BookingStatusApproved
		if booking.Trip != nil {
			booking.Trip.AvailableSeats--
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.dispatchBookingProcessed(ctx, &booking)
	return &booking, nil
}

// dispatchRequestApproved fires the post-commit side effects for a match.
// Every failure here is logged and swallowed.
func (e *Engine) dispatchRequestApproved(ctx context.Context, result *MatchResult) {
	var passenger, driver models.User
	if err := e.db.First(&passenger, result.Request.UserID).Error; err != nil {
		log.Printf("Match dispatch: failed to load passenger %d: %v", result.Request.UserID, err)
		return
	}
	if err := e.db.First(&driver, result.Trip.DriverID).Error; err != nil {
		log.Printf("Match dispatch: failed to load driver %d: %v", result.Trip.DriverID, err)
		return
	}

	message := fmt.Sprintf(
		"Great news! Your ride request from %s to %s has been taken and approved by %s. Your driver will pick you up on %s. Safe travels!",
		result.Request.Origin, result.Request.Destination, driver.FullName(), result.Trip.DepartureDate,
	)
	if e.notifier != nil {
		if err := e.notifier.Notify(passenger.ID, message, models.NotificationCategoryRequest); err != nil {
			log.Printf("Match dispatch: failed to create notification for user %d: %v", passenger.ID, err)
		}
	}

	if e.mailer != nil {
		go func() {
			if err := e.mailer.SendRequestApproved(
				passenger.Email, passenger.FullName(), driver.FullName(),
				result.Request.Origin, result.Request.Destination, result.Request.TravelDate,
			); err != nil {
				log.Printf("Match dispatch: failed to email %s: %v", passenger.Email, err)
			}
		}()
	}

	if e.router != nil {
		e.router.SendRequestApproved(passenger.ID, result.Request.ID, result.Trip.ID, driver.ID, driver.FullName())
	}

	if e.publisher != nil {
		err := e.publisher.PublishMatchUpdate(ctx, result.Request.ID, string(result.Request.Status), map[string]interface{}{
			"tripId":    result.Trip.ID,
			"bookingId": result.Booking.ID,
		})
		if err != nil {
			log.Printf("Match dispatch: failed to publish match update: %v", err)
		}
	}
}

// dispatchBookingProcessed fires the post-commit side effects for a direct
// booking decision.
func (e *Engine) dispatchBookingProcessed(ctx context.Context, booking *models.Booking) {
	if booking.Trip == nil || booking.Passenger == nil || booking.Trip.Driver == nil {
		log.Printf("Booking dispatch: booking %d missing associations, skipping side effects", booking.ID)
		return
	}
	passenger := booking.Passenger
	driver := booking.Trip.Driver

	var message string
	if booking.BookingStatus == models.BookingStatusApproved {
		message = fmt.Sprintf(
			"Great news! Your booking request for the trip with %s has been approved. Your driver will pick you up on %s. Please be ready for a smooth journey. Safe travels!",
			driver.FullName(), booking.Trip.DepartureDate,
		)
	} else {
		message = fmt.Sprintf(
			"Your booking request for the trip with %s has been declined.",
			driver.FullName(),
		)
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(passenger.ID, message, models.NotificationCategoryBooking); err != nil {
			log.Printf("Booking dispatch: failed to create notification for user %d: %v", passenger.ID, err)
		}
	}

	if e.mailer != nil {
		status := booking.BookingStatus
		go func() {
			var err error
			if status == models.BookingStatusApproved {
				err = e.mailer.SendBookingApproved(
					passenger.Email, passenger.FullName(), driver.FullName(),
					booking.Trip.Origin, booking.Trip.Destination, booking.Trip.DepartureDate,
				)
			} else {
				err = e.mailer.SendBookingDeclined(passenger.Email, passenger.FullName(), driver.FullName())
			}
			if err != nil {
				log.Printf("Booking dispatch: failed to email %s: %v", passenger.Email, err)
			}
		}()
	}

	if e.router != nil {
		e.router.SendBookingProcessed(passenger.ID, booking.ID, booking.TripID, string(booking.BookingStatus))
	}

	if e.publisher != nil {
		err := e.publisher.PublishBookingUpdate(ctx, booking.ID, string(booking.BookingStatus), map[string]interface{}{
			"tripId": booking.TripID,
		})
		if err != nil {
			log.Printf("Booking dispatch: failed to publish booking update: %v", err)
		}
	}
}
