package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rwandashareride/backend/internal/database"
	"github.com/rwandashareride/backend/internal/matching"
	"github.com/rwandashareride/backend/internal/middleware"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"github.com/rwandashareride/backend/pkg/utils"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	notifier := services.NewNotifier(db)
	engine := matching.NewEngine(db, notifier, nil, nil, nil)

	r := gin.New()
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", Register(db))
	auth.POST("/login", Login(db))

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())

	trips := protected.Group("/trips")
	trips.POST("", middleware.DriverOnly(), middleware.RequireActiveSubscription(db), CreateTrip(db))
	trips.PUT("/:id", middleware.DriverOnly(), UpdateTrip(db))

	requests := protected.Group("/requests")
	requests.POST("", middleware.PassengerOnly(), CreateRequest(db, notifier))
	requests.DELETE("/:id", DeleteRequest(db))
	requests.PUT("/takeAndApprove/:requestId", middleware.DriverOnly(), TakeAndApproveRequest(engine))

	bookings := protected.Group("/bookings")
	bookings.POST("", middleware.PassengerOnly(), CreateBooking(db, notifier))
	bookings.PUT("/process", middleware.DriverOnly(), ProcessBookingRequest(db, engine))

	api.POST("/contactus", CreateContactEntry(db))
	contact := protected.Group("/contactus", middleware.AdminOnly())
	contact.GET("", GetContactEntries(db))

	return r
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, email string) (models.User, string) {
	t.Helper()
	user := models.User{
		FirstName: "Test",
		LastName:  string(role),
		Email:     email,
		Password:  "secret123",
		Role:      role,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return user, token
}

func activateSubscription(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Subscription{
		UserID:    userID,
		Status:    models.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
	}).Error)
}

func createTrip(t *testing.T, db *gorm.DB, driverID uint, seats int) models.Trip {
	t.Helper()
	trip := models.Trip{
		DriverID:        driverID,
		Origin:          "Kigali",
		Destination:     "Huye",
		DepartureDate:   "2026-09-15",
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

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)

	w := doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"firstName": "Alice",
		"lastName":  "Uwase",
		"email":     "alice@example.com",
		"password":  "secret123",
		"role":      "passenger",
	})
	assert.Equal(t, 201, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, 200, w.Code)

	var resp struct {
		Ok   bool `json:"ok"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Ok)
	assert.NotEmpty(t, resp.Data.Token)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	createUser(t, db, models.RolePassenger, "alice@example.com")

	w := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, 401, w.Code)
}

func TestCreateTripRequiresSubscription(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, token := createUser(t, db, models.RoleDriver, "driver@example.com")

	body := gin.H{
		"origin":          "Kigali",
		"destination":     "Huye",
		"departureDate":   "2026-09-15",
		"departureTime":   "08:00",
		"availableSeats":  4,
		"pricePerSeat":    3500,
		"carMake":         "Toyota",
		"carModel":        "Corolla",
		"carYear":         2019,
		"carColor":        "White",
		"luggageSize":     "medium",
		"tripDescription": "Direct ride",
	}

	w := doJSON(t, r, "POST", "/api/trips", token, body)
	assert.Equal(t, 403, w.Code)

	activateSubscription(t, db, driver.ID)
	w = doJSON(t, r, "POST", "/api/trips", token, body)
	assert.Equal(t, 201, w.Code)
}

func TestUpdateTripPartial(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, token := createUser(t, db, models.RoleDriver, "driver@example.com")
	trip := createTrip(t, db, driver.ID, 4)

	w := doJSON(t, r, "PUT", fmt.Sprintf("/api/trips/%d", trip.ID), token, gin.H{
		"departureTime": "14:30",
	})
	require.Equal(t, 200, w.Code)

	var stored models.Trip
	require.NoError(t, db.First(&stored, trip.ID).Error)
	assert.Equal(t, "14:30", stored.DepartureTime)
	// Untouched fields keep their values.
	assert.Equal(t, "Kigali", stored.Origin)
	assert.Equal(t, 4, stored.AvailableSeats)
}

func TestUpdateTripRejectsNonOwner(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, _ := createUser(t, db, models.RoleDriver, "owner@example.com")
	_, otherToken := createUser(t, db, models.RoleDriver, "other@example.com")
	trip := createTrip(t, db, driver.ID, 4)

	w := doJSON(t, r, "PUT", fmt.Sprintf("/api/trips/%d", trip.ID), otherToken, gin.H{
		"departureTime": "14:30",
	})
	assert.Equal(t, 403, w.Code)
}

func TestDeleteRequestPendingOnly(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	passenger, token := createUser(t, db, models.RolePassenger, "passenger@example.com")

	request := models.Request{
		UserID: passenger.ID, Origin: "Kigali", Destination: "Huye",
		TravelDate: "2026-09-15", SeatsRequired: 2, Description: "ride",
		Status: models.RequestStatusMatched,
	}
	require.NoError(t, db.Create(&request).Error)

	w := doJSON(t, r, "DELETE", fmt.Sprintf("/api/requests/%d", request.ID), token, nil)
	assert.Equal(t, 409, w.Code)

	require.NoError(t, db.Model(&request).Update("status", models.RequestStatusPending).Error)
	w = doJSON(t, r, "DELETE", fmt.Sprintf("/api/requests/%d", request.ID), token, nil)
	assert.Equal(t, 200, w.Code)
}

func TestDeleteRequestRejectsNonOwner(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	passenger, _ := createUser(t, db, models.RolePassenger, "owner@example.com")
	_, otherToken := createUser(t, db, models.RolePassenger, "other@example.com")

	request := models.Request{
		UserID: passenger.ID, Origin: "Kigali", Destination: "Huye",
		TravelDate: "2026-09-15", SeatsRequired: 2, Description: "ride",
		Status: models.RequestStatusPending,
	}
	require.NoError(t, db.Create(&request).Error)

	w := doJSON(t, r, "DELETE", fmt.Sprintf("/api/requests/%d", request.ID), otherToken, nil)
	assert.Equal(t, 403, w.Code)
}

func TestCreateBookingRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, _ := createUser(t, db, models.RoleDriver, "driver@example.com")
	_, token := createUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := createTrip(t, db, driver.ID, 4)

	path := fmt.Sprintf("/api/bookings?tripId=%d", trip.ID)
	w := doJSON(t, r, "POST", path, token, nil)
	assert.Equal(t, 201, w.Code)

	w = doJSON(t, r, "POST", path, token, nil)
	assert.Equal(t, 409, w.Code)
}

func TestCreateBookingRejectsOwnTrip(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, token := createUser(t, db, models.RoleDriver, "driver@example.com")
	trip := createTrip(t, db, driver.ID, 4)

	// Drivers cannot book, and owners cannot book their own trip either way.
	w := doJSON(t, r, "POST", fmt.Sprintf("/api/bookings?tripId=%d", trip.ID), token, nil)
	assert.Equal(t, 403, w.Code)
}

func TestTakeAndApproveEndpoint(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, driverToken := createUser(t, db, models.RoleDriver, "driver@example.com")
	passenger, _ := createUser(t, db, models.RolePassenger, "passenger@example.com")
	trip := createTrip(t, db, driver.ID, 4)

	request := models.Request{
		UserID: passenger.ID, Origin: "Kigali", Destination: "Huye",
		TravelDate: "2026-09-15", SeatsRequired: 2, Description: "ride",
		Status: models.RequestStatusPending,
	}
	require.NoError(t, db.Create(&request).Error)

	path := fmt.Sprintf("/api/requests/takeAndApprove/%d", request.ID)
	w := doJSON(t, r, "PUT", path, driverToken, nil)
	require.Equal(t, 200, w.Code)

	var stored models.Trip
	require.NoError(t, db.First(&stored, trip.ID).Error)
	assert.Equal(t, 2, stored.AvailableSeats)

	// A second claim on the same request is rejected without touching seats.
	w = doJSON(t, r, "PUT", path, driverToken, nil)
	assert.Equal(t, 403, w.Code)

	w = doJSON(t, r, "PUT", "/api/requests/takeAndApprove/999", driverToken, nil)
	assert.Equal(t, 404, w.Code)
}

func TestContactForm(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)

	// Submission needs no account.
	w := doJSON(t, r, "POST", "/api/contactus", "", gin.H{
		"name":    "Eric",
		"email":   "eric@example.com",
		"message": "Do you operate on public holidays?",
	})
	assert.Equal(t, 201, w.Code)

	w = doJSON(t, r, "POST", "/api/contactus", "", gin.H{
		"name": "Eric",
	})
	assert.Equal(t, 400, w.Code)

	// Reading submissions is admin only.
	_, passengerToken := createUser(t, db, models.RolePassenger, "passenger@example.com")
	w = doJSON(t, r, "GET", "/api/contactus", passengerToken, nil)
	assert.Equal(t, 403, w.Code)

	_, adminToken := createUser(t, db, models.RoleAdmin, "admin@example.com")
	w = doJSON(t, r, "GET", "/api/contactus", adminToken, nil)
	require.Equal(t, 200, w.Code)

	var resp struct {
		Data []models.ContactUs `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "eric@example.com", resp.Data[0].Email)
}

func TestProcessBookingEndpoint(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	driver, driverToken := createUser(t, db, models.RoleDriver, "driver@example.com")
	passenger, _ := createUser(t, db, models.RolePassenger, "passenger@example.com")
	_, otherToken := createUser(t, db, models.RoleDriver, "other@example.com")
	trip := createTrip(t, db, driver.ID, 4)

	booking := models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookingStatus: models.BookingStatusPending}
	require.NoError(t, db.Create(&booking).Error)

	path := fmt.Sprintf("/api/bookings/process?bookingId=%d", booking.ID)

	// Only the trip owner can decide.
	w := doJSON(t, r, "PUT", path, otherToken, gin.H{"action": "approve"})
	assert.Equal(t, 403, w.Code)

	w = doJSON(t, r, "PUT", path, driverToken, gin.H{"action": "reject"})
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, r, "PUT", path, driverToken, gin.H{"action": "approve"})
	require.Equal(t, 200, w.Code)

	var stored models.Trip
	require.NoError(t, db.First(&stored, trip.ID).Error)
	assert.Equal(t, 3, stored.AvailableSeats)
}
