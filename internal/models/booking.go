package models

import "gorm.io/gorm"

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "Pending"
	BookingStatusApproved BookingStatus = "Approved"
	BookingStatusDeclined BookingStatus = "Declined"
)

// Booking links exactly one passenger to one trip. The (TripID, PassengerID)
// pair is unique, which is what makes the matching engine's
// update-by-pair well defined.
type Booking struct {
	gorm.Model
	TripID        uint          `json:"tripId" gorm:"not null;uniqueIndex:idx_trip_passenger"`
	PassengerID   uint          `json:"passengerId" gorm:"not null;uniqueIndex:idx_trip_passenger"`
	BookingStatus BookingStatus `json:"bookingStatus" gorm:"not null;default:'Pending'"`
	Trip          *Trip         `json:"trip,omitempty" gorm:"foreignKey:TripID"`
	Passenger     *User         `json:"passenger,omitempty" gorm:"foreignKey:PassengerID"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
