package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusPending   TripStatus = "Pending"
	TripStatusMatched   TripStatus = "Matched"
	TripStatusUnmatched TripStatus = "Unmatched"
)

// Trip represents a driver-posted ride offer with a fixed route, date and
// seat capacity. AvailableSeats is only ever decremented by the matching
// engine, never directly by passengers.
type Trip struct {
	gorm.Model
	DriverID        uint           `json:"driverId" gorm:"not null"`
	Origin          string         `json:"origin" gorm:"not null"`
	Destination     string         `json:"destination" gorm:"not null"`
	DepartureDate   string         `json:"departureDate" gorm:"not null"` // YYYY-MM-DD, exact-match key
	DepartureTime   string         `json:"departureTime" gorm:"not null"` // HH:MM
	AvailableSeats  int            `json:"availableSeats" gorm:"not null;check:available_seats >= 0"`
	PricePerSeat    float64        `json:"pricePerSeat" gorm:"not null"`
	CarMake         string         `json:"carMake" gorm:"not null"`
	CarModel        string         `json:"carModel" gorm:"not null"`
	CarYear         int            `json:"carYear" gorm:"not null"`
	CarColor        string         `json:"carColor" gorm:"not null"`
	CarPhoto        string         `json:"carPhoto,omitempty"`
	Stops           datatypes.JSON `json:"stops,omitempty"` // ordered waypoint list, nullable
	LuggageSize     string         `json:"luggageSize" gorm:"not null"`
	TripDescription string         `json:"tripDescription" gorm:"type:text;not null"`
	TripStatus      TripStatus     `json:"tripStatus" gorm:"not null;default:'Pending'"`
	Driver          *User          `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Trip) TableName() string {
	return "trips"
}
