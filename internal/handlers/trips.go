package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/models"
	"github.com/rwandashareride/backend/internal/services"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type TripInput struct {
	Origin          string   `json:"origin" binding:"required"`
	Destination     string   `json:"destination" binding:"required"`
	DepartureDate   string   `json:"departureDate" binding:"required"`
	DepartureTime   string   `json:"departureTime" binding:"required"`
	AvailableSeats  int      `json:"availableSeats" binding:"required,min=1"`
	PricePerSeat    float64  `json:"pricePerSeat" binding:"required"`
	CarMake         string   `json:"carMake" binding:"required"`
	CarModel        string   `json:"carModel" binding:"required"`
	CarYear         int      `json:"carYear" binding:"required"`
	CarColor        string   `json:"carColor" binding:"required"`
	Stops           []string `json:"stops"`
	LuggageSize     string   `json:"luggageSize" binding:"required"`
	TripDescription string   `json:"tripDescription" binding:"required"`
}

// CreateTrip posts a new trip owned by the acting driver.
func CreateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var input TripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		if _, err := time.Parse(dateLayout, input.DepartureDate); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "departureDate must be YYYY-MM-DD"})
			return
		}

		trip := models.Trip{
			DriverID:        driverID,
			Origin:          input.Origin,
			Destination:     input.Destination,
			DepartureDate:   input.DepartureDate,
			DepartureTime:   input.DepartureTime,
			AvailableSeats:  input.AvailableSeats,
			PricePerSeat:    input.PricePerSeat,
			CarMake:         input.CarMake,
			CarModel:        input.CarModel,
			CarYear:         input.CarYear,
			CarColor:        input.CarColor,
			LuggageSize:     input.LuggageSize,
			TripDescription: input.TripDescription,
			TripStatus:      models.TripStatusPending,
		}
		if len(input.Stops) > 0 {
			stops, err := json.Marshal(input.Stops)
			if err != nil {
				c.JSON(400, gin.H{"ok": false, "message": "Invalid stops"})
				return
			}
			trip.Stops = stops
		}

		if err := db.Create(&trip).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to create trip"})
			return
		}

		c.JSON(201, gin.H{"ok": true, "message": "Trip successfully added", "data": trip})
	}
}

// GetTrips lists all trips with their drivers
func GetTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trips []models.Trip
		if err := db.Preload("Driver").Order("created_at DESC").Find(&trips).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch trips"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": trips})
	}
}

// GetDriverTrips lists the acting driver's own trips
func GetDriverTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var trips []models.Trip
		if err := db.Where("driver_id = ?", driverID).
			Order("created_at DESC").
			Find(&trips).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to fetch trips"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": trips})
	}
}

// SearchTrips filters trips on exact origin/destination/date
func SearchTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Driver").Order("created_at DESC")
		if from := c.Query("from"); from != "" {
			query = query.Where("origin = ?", from)
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("destination = ?", to)
		}
		if leaving := c.Query("leaving"); leaving != "" {
			query = query.Where("departure_date = ?", leaving)
		}

		var trips []models.Trip
		if err := query.Find(&trips).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to search trips"})
			return
		}

		if len(trips) == 0 {
			c.JSON(404, gin.H{"ok": false, "message": "No trips found with the provided search criteria"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": trips})
	}
}

// GetTrip fetches a single trip
func GetTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.Preload("Driver").First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Trip not found"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "data": trip})
	}
}

// UpdateTrip applies a partial update: only fields present and non-empty in
// the body overwrite the stored values. Seats are owner-editable here;
// matched capacity changes go through the matching engine only.
func UpdateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Trip not found"})
			return
		}

		if trip.DriverID != userID && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "Only the trip owner can update this trip"})
			return
		}

		var input struct {
			Origin          string   `json:"origin"`
			Destination     string   `json:"destination"`
			DepartureDate   string   `json:"departureDate"`
			DepartureTime   string   `json:"departureTime"`
			AvailableSeats  int      `json:"availableSeats"`
			PricePerSeat    float64  `json:"pricePerSeat"`
			CarMake         string   `json:"carMake"`
			CarModel        string   `json:"carModel"`
			CarYear         int      `json:"carYear"`
			CarColor        string   `json:"carColor"`
			Stops           []string `json:"stops"`
			LuggageSize     string   `json:"luggageSize"`
			TripDescription string   `json:"tripDescription"`
			TripStatus      string   `json:"tripStatus"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"ok": false, "message": err.Error()})
			return
		}

		if input.Origin != "" {
			trip.Origin = input.Origin
		}
		if input.Destination != "" {
			trip.Destination = input.Destination
		}
		if input.DepartureDate != "" {
			if _, err := time.Parse(dateLayout, input.DepartureDate); err != nil {
				c.JSON(400, gin.H{"ok": false, "message": "departureDate must be YYYY-MM-DD"})
				return
			}
			trip.DepartureDate = input.DepartureDate
		}
		if input.DepartureTime != "" {
			trip.DepartureTime = input.DepartureTime
		}
		if input.AvailableSeats > 0 {
			trip.AvailableSeats = input.AvailableSeats
		}
		if input.PricePerSeat > 0 {
			trip.PricePerSeat = input.PricePerSeat
		}
		if input.CarMake != "" {
			trip.CarMake = input.CarMake
		}
		if input.CarModel != "" {
			trip.CarModel = input.CarModel
		}
		if input.CarYear > 0 {
			trip.CarYear = input.CarYear
		}
		if input.CarColor != "" {
			trip.CarColor = input.CarColor
		}
		if len(input.Stops) > 0 {
			stops, err := json.Marshal(input.Stops)
			if err != nil {
				c.JSON(400, gin.H{"ok": false, "message": "Invalid stops"})
				return
			}
			trip.Stops = stops
		}
		if input.LuggageSize != "" {
			trip.LuggageSize = input.LuggageSize
		}
		if input.TripDescription != "" {
			trip.TripDescription = input.TripDescription
		}
		if input.TripStatus != "" {
			trip.TripStatus = models.TripStatus(input.TripStatus)
		}

		if err := db.Save(&trip).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to update trip"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Trip successfully updated", "data": trip})
	}
}

// UploadCarPhoto attaches a vehicle photo to the trip
func UploadCarPhoto(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Trip not found"})
			return
		}

		if trip.DriverID != userID {
			c.JSON(403, gin.H{"ok": false, "message": "Only the trip owner can upload a photo"})
			return
		}

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"ok": false, "message": "photo file is required"})
			return
		}

		url, err := services.UploadImage(file, services.FolderCars)
		if err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to upload photo"})
			return
		}

		if err := db.Model(&trip).Update("car_photo", url).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to save photo reference"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Photo uploaded successfully", "data": gin.H{"carPhoto": url}})
	}
}

// DeleteTrip removes a trip (owner or admin)
func DeleteTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"ok": false, "message": "Trip not found"})
			return
		}

		if trip.DriverID != userID && models.Role(c.GetString("userRole")) != models.RoleAdmin {
			c.JSON(403, gin.H{"ok": false, "message": "Only the trip owner can delete this trip"})
			return
		}

		if err := db.Delete(&trip).Error; err != nil {
			c.JSON(500, gin.H{"ok": false, "message": "Failed to delete trip"})
			return
		}

		c.JSON(200, gin.H{"ok": true, "message": "Trip deleted successfully"})
	}
}
