package main

import (
	"fmt"
	"log"
	"os"

	"clubcare/internal/auth"
	"clubcare/internal/database"
	"clubcare/internal/handlers"
	"clubcare/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables from .env (ignored in production images)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// A fresh deployment needs a working admin login
	if err := auth.EnsureAdminAccount(database.GetDB()); err != nil {
		log.Fatal("Failed to bootstrap admin account:", err)
	}

	// Push gateway; the server still serves everything else when FCM
	// credentials are missing
	var pusher services.Pusher
	fcm, err := services.NewFCMService()
	if err != nil {
		log.Printf("Warning: push notifications disabled: %v", err)
	} else {
		pusher = fcm
	}

	cache := services.NewCacheService()

	var woo *services.WooService
	if wooSvc, err := services.NewWooService(cache); err != nil {
		log.Printf("Warning: WooCommerce integration disabled: %v", err)
	} else {
		woo = wooSvc
	}

	var img *services.ImageService
	if imgSvc, err := services.NewImageService(); err != nil {
		log.Printf("Warning: image uploads disabled: %v", err)
	} else {
		img = imgSvc
	}

	email := services.NewEmailService()

	if err := services.InitMapsClient(); err != nil {
		log.Printf("Warning: branch location validation disabled: %v", err)
	}

	handlers.InitServices(pusher, woo, img, email)

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
	}))

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes (no auth required)
	router.POST("/auth/login", handlers.Login)

	// Public content routes
	router.GET("/public/medicines", handlers.ListMedicines)
	router.GET("/public/medicines/search", handlers.SearchMedicines)
	router.GET("/public/medicines/:slug", handlers.GetMedicine)
	router.GET("/public/blogs", handlers.ListBlogs)
	router.GET("/public/blogs/:slug", handlers.GetBlog)
	router.GET("/public/faqs", handlers.ListFAQs)
	router.GET("/public/branches", handlers.ListBranches)

	// WooCommerce webhook intake sits outside the app-key group: the shop
	// can only sign deliveries, not add custom headers
	router.POST("/api/woo/webhook", handlers.WooWebhook)

	// Mobile app routes (shared app key required)
	api := router.Group("/api")
	api.Use(auth.APIKeyMiddleware())
	{
		api.POST("/users", handlers.CreateUser)
		api.POST("/users/token", handlers.RegisterDeviceToken)
		api.POST("/checkins", handlers.CreateCheckIn)
		api.GET("/checkins/status", handlers.GetCheckInStatus)
		api.GET("/woo/orders", handlers.GetWooOrders)
		api.GET("/woo/subscriptions", handlers.GetWooSubscriptions)
	}

	// Cron trigger routes (shared cron secret required)
	cron := router.Group("/api/cron")
	cron.Use(auth.CronAuthMiddleware())
	{
		// Some schedulers can only issue GETs, so both verbs are accepted
		cron.POST("/dispatch-reminders", handlers.DispatchReminders)
		cron.GET("/dispatch-reminders", handlers.DispatchReminders)
		cron.POST("/cleanup", handlers.CleanupOldData)
		cron.GET("/cleanup", handlers.CleanupOldData)
	}

	// Admin panel routes (session required)
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware())
	{
		admin.POST("/auth/logout", handlers.Logout)
		admin.GET("/auth/me", handlers.GetCurrentUser)

		admin.GET("/users", handlers.ListUsers)
		admin.GET("/users/:id", handlers.GetUser)
		admin.PUT("/users/:id", handlers.UpdateUser)
		admin.DELETE("/users/:id", handlers.DeleteUser)

		admin.POST("/medicines", handlers.CreateMedicine)
		admin.GET("/medicines", handlers.ListMedicines)
		admin.GET("/medicines/:slug", handlers.GetMedicine)
		admin.PUT("/medicines/:slug", handlers.UpdateMedicine)
		admin.DELETE("/medicines/:slug", handlers.DeleteMedicine)
		admin.POST("/medicines/:slug/image", handlers.UploadMedicineImage)

		admin.POST("/blogs", handlers.CreateBlog)
		admin.GET("/blogs", handlers.ListBlogs)
		admin.PUT("/blogs/:slug", handlers.UpdateBlog)
		admin.DELETE("/blogs/:slug", handlers.DeleteBlog)
		admin.POST("/blogs/:slug/cover", handlers.UploadBlogCover)

		admin.POST("/faqs", handlers.CreateFAQ)
		admin.GET("/faqs", handlers.ListFAQs)
		admin.PUT("/faqs/:id", handlers.UpdateFAQ)
		admin.DELETE("/faqs/:id", handlers.DeleteFAQ)

		admin.POST("/branches/validate", handlers.ValidateBranchPlace)
		admin.POST("/branches", handlers.CreateBranch)
		admin.GET("/branches", handlers.ListBranches)
		admin.PUT("/branches/:id", handlers.UpdateBranch)
		admin.DELETE("/branches/:id", handlers.DeleteBranch)

		admin.POST("/push", handlers.SendPushNotification)
		admin.GET("/notification-logs", handlers.ListNotificationLogs)

		admin.GET("/backup/export", handlers.ExportBackup)
		admin.POST("/backup/import", handlers.ImportBackup)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func corsOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return []string{origins}
	}
	return []string{"http://localhost:3000"}
}
