package matching

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rwandashareride/backend/internal/database"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	// A single connection serializes concurrent transactions the way a
	// server-side database would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, email string) models.User {
	t.Helper()
	user := models.User{
		FirstName:    "Test",
		LastName:     string(role),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTrip(t *testing.T, db *gorm.DB, driverID uint, origin, destination, date string, seats int) models.Trip {
	t.Helper()
	trip := models.Trip{
		DriverID:        driverID,
		Origin:          origin,
		Destination:     destination,
		DepartureDate:   date,
		DepartureTime:   "08:00",
		AvailableSeats:  seats,
		PricePerSeat:    3500,
		CarMake:         "Toyota",
		CarModel:        "Corolla",
		CarYear:         2019,
		CarColor:        "White",
		LuggageSize:     "medium",
		TripDescription: "Direct ride",
		TripStatus:      models.TripStatusPending,
	}
	require.NoError(t, db.Create(&trip).Error)
	return trip
}

func seedRequest(t *testing.T, db *gorm.DB, userID uint, origin, destination, date string, seats int) models.Request {
	t.Helper()
	request := models.Request{
		UserID:        userID,
		Origin:        origin,
		Destination:   destination,
		TravelDate:    date,
		SeatsRequired: seats,
		Description:   "Looking for a ride",
		Status:        models.RequestStatusPending,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

// recordingNotifier captures notifications so tests can assert on the
// post-commit side effects without SMTP or Redis.
type recordingNotifier struct {
	mu      sync.Mutex
	entries []struct {
		UserID  uint
		Message string
	}
}

func (n *recordingNotifier) Notify(userID uint, message string, category models.NotificationCategory) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, struct {
		UserID  uint
		Message string
	}{userID, message})
	return nil
}

func TestTakeAndApproveMatchesRequest(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	engine := NewEngine(db, notifier, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 4)
	request := seedRequest(t, db, passenger.ID, "Kigali", "Huye", "2026-09-15", 2)

	result, err := engine.TakeAndApprove(context.Background(), request.ID, driver.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusMatched, result.Request.Status)
	assert.Equal(t, 2, result.Trip.AvailableSeats)
	assert.Equal(t, models.BookingStatusApproved, result.Booking.BookingStatus)
	assert.Equal(t, trip.ID, result.Booking.TripID)
	assert.Equal(t, passenger.ID, result.Booking.PassengerID)

	var storedTrip models.Trip
	require.NoError(t, db.First(&storedTrip, trip.ID).Error)
	assert.Equal(t, 2, storedTrip.AvailableSeats)

	var storedRequest models.Request
	require.NoError(t, db.First(&storedRequest, request.ID).Error)
	assert.Equal(t, models.RequestStatusMatched, storedRequest.Status)

	require.Len(t, notifier.entries, 1)
	assert.Equal(t, passenger.ID, notifier.entries[0].UserID)
	assert.Contains(t, notifier.entries[0].Message, "Kigali")
}

func TestTakeAndApproveReusesExistingBooking(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Musanze", "2026-09-20", 3)
	request := seedRequest(t, db, passenger.ID, "Kigali", "Musanze", "2026-09-20", 1)

	booking := models.Booking{
		TripID:        trip.ID,
		PassengerID:   passenger.ID,
		BookingStatus: models.BookingStatusPending,
	}
	require.NoError(t, db.Create(&booking).Error)

	result, err := engine.TakeAndApprove(context.Background(), request.ID, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, result.Booking.ID)
	assert.Equal(t, models.BookingStatusApproved, result.Booking.BookingStatus)

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("trip_id = ? AND passenger_id = ?", trip.ID, passenger.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTakeAndApproveRequestNotFound(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")

	_, err := engine.TakeAndApprove(context.Background(), 999, driver.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestTakeAndApproveAlreadyMatched(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 4)
	request := seedRequest(t, db, passenger.ID, "Kigali", "Huye", "2026-09-15", 2)
	require.NoError(t, db.Model(&request).Update("status", models.RequestStatusMatched).Error)

	_, err := engine.TakeAndApprove(context.Background(), request.ID, driver.ID)
	assert.ErrorIs(t, err, ErrAlreadyMatched)

	// Nothing may change when the claim is rejected.
	var storedTrip models.Trip
	require.NoError(t, db.First(&storedTrip, trip.ID).Error)
	assert.Equal(t, 4, storedTrip.AvailableSeats)
}

func TestTakeAndApproveNoMatchingTrip(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	seedTrip(t, db, driver.ID, "Kigali", "Rubavu", "2026-09-15", 4)
	request := seedRequest(t, db, passenger.ID, "Kigali", "Huye", "2026-09-15", 2)

	_, err := engine.TakeAndApprove(context.Background(), request.ID, driver.ID)
	assert.ErrorIs(t, err, ErrNoMatchingTrip)

	var storedRequest models.Request
	require.NoError(t, db.First(&storedRequest, request.ID).Error)
	assert.Equal(t, models.RequestStatusPending, storedRequest.Status)
}

func TestTakeAndApproveInsufficientSeats(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 1)
	request := seedRequest(t, db, passenger.ID, "Kigali", "Huye", "2026-09-15", 2)

	_, err := engine.TakeAndApprove(context.Background(), request.ID, driver.ID)
	assert.ErrorIs(t, err, ErrNoMatchingTrip)
}

func TestTakeAndApproveConcurrentClaims(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	request := seedRequest(t, db, passenger.ID, "Kigali", "Huye", "2026-09-15", 2)

	const drivers = 4
	tripIDs := make([]uint, drivers)
	driverIDs := make([]uint, drivers)
	for i := 0; i < drivers; i++ {
		driver := seedUser(t, db, models.RoleDriver, fmt.Sprintf("driver%d@example.com", i))
		trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 4)
		driverIDs[i] = driver.ID
		tripIDs[i] = trip.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.TakeAndApprove(context.Background(), request.ID, driverIDs[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyMatched)
		}
	}
	assert.Equal(t, 1, winners, "exactly one driver should claim the request")

	// Exactly one trip lost seats, by exactly the requested amount.
	var totalSeats int
	for _, id := range tripIDs {
		var trip models.Trip
		require.NoError(t, db.First(&trip, id).Error)
		assert.GreaterOrEqual(t, trip.AvailableSeats, 0)
		totalSeats += trip.AvailableSeats
	}
	assert.Equal(t, drivers*4-request.SeatsRequired, totalSeats)
}

func TestProcessBookingApprove(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	engine := NewEngine(db, notifier, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 5)

	booking := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookingStatus: models.BookingStatusPending}
	require.NoError(t, db.Create(&booking).Error)

	processed, err := engine.ProcessBooking(context.Background(), booking.ID, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusApproved, processed.BookingStatus)

	var storedTrip models.Trip
	require.NoError(t, db.First(&storedTrip, trip.ID).Error)
	assert.Equal(t, 4, storedTrip.AvailableSeats)

	require.Len(t, notifier.entries, 1)
	assert.Equal(t, passenger.ID, notifier.entries[0].UserID)
}

func TestProcessBookingDecline(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 5)

	booking := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookingStatus: models.BookingStatusPending}
	require.NoError(t, db.Create(&booking).Error)

	processed, err := engine.ProcessBooking(context.Background(), booking.ID, ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusDeclined, processed.BookingStatus)

	// A decline never touches capacity.
	var storedTrip models.Trip
	require.NoError(t, db.First(&storedTrip, trip.ID).Error)
	assert.Equal(t, 5, storedTrip.AvailableSeats)
}

func TestProcessBookingInvalidAction(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	_, err := engine.ProcessBooking(context.Background(), 1, "cancel")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestProcessBookingNotFound(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	_, err := engine.ProcessBooking(context.Background(), 999, ActionApprove)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestProcessBookingApproveIsIdempotentOnSeats(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 5)

	booking := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookingStatus: models.BookingStatusPending}
	require.NoError(t, db.Create(&booking).Error)

	_, err := engine.ProcessBooking(context.Background(), booking.ID, ActionApprove)
	require.NoError(t, err)

	// Re-approving must not take a second seat.
	_, err = engine.ProcessBooking(context.Background(), booking.ID, ActionApprove)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var storedTrip models.Trip
	require.NoError(t, db.First(&storedTrip, trip.ID).Error)
	assert.Equal(t, 4, storedTrip.AvailableSeats)
}

func TestProcessBookingRejectsDeclined(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 5)

	booking := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookingStatus: models.BookingStatusDeclined}
	require.NoError(t, db.Create(&booking).Error)

	_, err := engine.ProcessBooking(context.Background(), booking.ID, ActionApprove)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var storedBooking models.Booking
	require.NoError(t, db.First(&storedBooking, booking.ID).Error)
	assert.Equal(t, models.BookingStatusDeclined, storedBooking.BookingStatus)
}

func TestProcessBookingCapacityExhausted(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, nil, nil, nil, nil)

	driver := seedUser(t, db, models.RoleDriver, "driver@example.com")
	passenger := seedUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := seedTrip(t, db, driver.ID, "Kigali", "Huye", "2026-09-15", 0)

	booking := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookingStatus: models.BookingStatusPending}
	require.NoError(t, db.Create(&booking).Error)

	_, err := engine.ProcessBooking(context.Background(), booking.ID, ActionApprove)
	assert.ErrorIs(t, err, ErrCapacityExhausted)

	var storedBooking models.Booking
	require.NoError(t, db.First(&storedBooking, booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, storedBooking.BookingStatus)
}
