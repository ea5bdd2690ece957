package models

import "gorm.io/gorm"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusMatched   RequestStatus = "Matched"
	RequestStatusUnmatched RequestStatus = "Unmatched"
)

// Request is a passenger's ask for a ride on a given route and date.
// Once Status reaches Matched it is terminal; only the matching engine
// moves a request out of Pending.
type Request struct {
	gorm.Model
	UserID        uint          `json:"userId" gorm:"not null"`
	Origin        string        `json:"origin" gorm:"not null"`
	Destination   string        `json:"destination" gorm:"not null"`
	TravelDate    string        `json:"travelDate" gorm:"not null"` // YYYY-MM-DD, exact-match key
	SeatsRequired int           `json:"seatsRequired" gorm:"not null;check:seats_required >= 1"`
	Description   string        `json:"description" gorm:"type:text;not null"`
	Status        RequestStatus `json:"status" gorm:"not null;default:'Pending'"`
	User          *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (Request) TableName() string {
	return "requests"
}
