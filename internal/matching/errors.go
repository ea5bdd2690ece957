package matching

import "errors"

var (
	// ErrRequestNotFound means the ride request id does not exist.
	ErrRequestNotFound = errors.New("request not found")
	// ErrBookingNotFound means the booking id does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrAlreadyMatched means the request was already taken by a driver.
	ErrAlreadyMatched = errors.New("request already taken by another driver")
	// ErrNoMatchingTrip means the acting driver has no compatible trip with
	// enough seats for the request.
	ErrNoMatchingTrip = errors.New("no matching trip found for the driver")
	// ErrCapacityExhausted means the trip has no seat left to approve into.
	ErrCapacityExhausted = errors.New("trip has no available seats")
	// ErrAlreadyProcessed means the booking already left the Pending state.
	ErrAlreadyProcessed = errors.New("booking has already been processed")
	// ErrInvalidAction means the booking action was neither approve nor decline.
	ErrInvalidAction = errors.New(`invalid action, use "approve" or "decline"`)
)
