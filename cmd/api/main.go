package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rwandashareride/backend/internal/database"
	"github.com/rwandashareride/backend/internal/handlers"
	"github.com/rwandashareride/backend/internal/matching"
	"github.com/rwandashareride/backend/internal/middleware"
	"github.com/rwandashareride/backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	notifier := services.NewNotifier(db)
	engine := matching.NewEngine(
		db,
		notifier,
		matching.SMTPMailer{},
		matching.HubRouter{Hub: hub},
		matching.RedisPublisher{},
	)

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "/app/uploads"
	}
	r.Static("/uploads", uploadDir)

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		// Public contact form
		api.POST("/contactus", handlers.CreateContactEntry(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.GET("", middleware.AdminOnly(), handlers.GetUsers(db))
				users.PUT("/:id/role", middleware.AdminOnly(), handlers.UpdateUserRole(db))
				users.DELETE("/:id", middleware.AdminOnly(), handlers.DeleteUser(db))
				users.GET("/:id/reviews", handlers.GetReviewsForUser(db))
			}

			trips := protected.Group("/trips")
			{
				trips.POST("", middleware.DriverOnly(), middleware.RequireActiveSubscription(db), handlers.CreateTrip(db))
				trips.GET("", handlers.GetTrips(db))
				trips.GET("/driver", middleware.DriverOnly(), handlers.GetDriverTrips(db))
				trips.GET("/search", handlers.SearchTrips(db))
				trips.GET("/:id", handlers.GetTrip(db))
				trips.PUT("/:id", middleware.DriverOnly(), handlers.UpdateTrip(db))
				trips.POST("/:id/photo", middleware.DriverOnly(), handlers.UploadCarPhoto(db))
				trips.DELETE("/:id", handlers.DeleteTrip(db))
			}

			requests := protected.Group("/requests")
			{
				requests.POST("", middleware.PassengerOnly(), handlers.CreateRequest(db, notifier))
				requests.GET("", handlers.GetRequests(db))
				requests.GET("/:id", handlers.GetRequest(db))
				requests.DELETE("/:id", handlers.DeleteRequest(db))
				requests.PUT("/takeAndApprove/:requestId", middleware.DriverOnly(), handlers.TakeAndApproveRequest(engine))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", middleware.PassengerOnly(), handlers.CreateBooking(db, notifier))
				bookings.GET("/driver", middleware.DriverOnly(), handlers.GetDriverBookings(db))
				bookings.GET("/trip/:tripId", middleware.DriverOnly(), handlers.GetBookingsForTrip(db))
				bookings.GET("/:id", handlers.GetBooking(db))
				bookings.PUT("/process", middleware.DriverOnly(), handlers.ProcessBookingRequest(db, engine))
				bookings.DELETE("/:id", handlers.DeleteBooking(db))
			}

			reviews := protected.Group("/reviews")
			{
				reviews.POST("", handlers.CreateReview(db, notifier))
				reviews.DELETE("/:id", handlers.DeleteReview(db))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.GetNotifications(db))
				notifications.PATCH("/:id/read", handlers.MarkNotificationRead(db))
				notifications.DELETE("/:id", handlers.DeleteNotification(db))
			}

			subscriptions := protected.Group("/subscriptions")
			{
				subscriptions.POST("", middleware.DriverOnly(), handlers.ActivateSubscription(db, notifier))
				subscriptions.GET("/status", handlers.GetSubscriptionStatus(db))
				subscriptions.POST("/expire-lapsed", middleware.AdminOnly(), handlers.ExpireLapsedSubscriptions(db))
			}

			messages := protected.Group("/messages")
			{
				messages.POST("", handlers.SendMessage(db, hub))
				messages.GET("/:id", handlers.GetConversation(db))
			}

			contact := protected.Group("/contactus", middleware.AdminOnly())
			{
				contact.GET("", handlers.GetContactEntries(db))
				contact.GET("/:id", handlers.GetContactEntry(db))
				contact.DELETE("/:id", handlers.DeleteContactEntry(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
