package matching

import (
	"context"

	"github.com/rwandashareride/backend/internal/services"
	"github.com/rwandashareride/backend/pkg/utils"
)

// SMTPMailer binds the engine's mail sink to the SMTP templates.
type SMTPMailer struct{}

func (SMTPMailer) SendRequestApproved(passengerEmail, passengerName, driverName, origin, destination, travelDate string) error {
	return utils.SendRequestApprovedEmail(passengerEmail, passengerName, driverName, origin, destination, travelDate)
}

func (SMTPMailer) SendBookingApproved(passengerEmail, passengerName, driverName, origin, destination, travelDate string) error {
	return utils.SendBookingApprovedEmail(passengerEmail, passengerName, driverName, origin, destination, travelDate)
}

func (SMTPMailer) SendBookingDeclined(passengerEmail, passengerName, driverName string) error {
	return utils.SendBookingDeclinedEmail(passengerEmail, passengerName, driverName)
}

// HubRouter binds the engine's realtime sink to the websocket hub.
type HubRouter struct {
	Hub *services.Hub
}

func (r HubRouter) SendRequestApproved(passengerID uint, requestID, tripID, driverID uint, driverName string) {
	r.Hub.SendRequestApproved(passengerID, services.RequestApproved{
		RequestID:  requestID,
		TripID:     tripID,
		DriverID:   driverID,
		DriverName: driverName,
	})
}

func (r HubRouter) SendBookingProcessed(passengerID uint, bookingID, tripID uint, status string) {
	r.Hub.SendBookingProcessed(passengerID, services.BookingProcessed{
		BookingID: bookingID,
		TripID:    tripID,
		Status:    status,
	})
}

// RedisPublisher binds the engine's event publisher to Redis pub/sub.
type RedisPublisher struct{}

func (RedisPublisher) PublishMatchUpdate(ctx context.Context, requestID uint, status string, data map[string]interface{}) error {
	return services.PublishMatchUpdate(ctx, requestID, status, data)
}

func (RedisPublisher) PublishBookingUpdate(ctx context.Context, bookingID uint, status string, data map[string]interface{}) error {
	return services.PublishBookingUpdate(ctx, bookingID, status, data)
}
