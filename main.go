package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/config"
	"github.com/aryawidjaja/grievance-portal/middlewares"
	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/router"
	"github.com/aryawidjaja/grievance-portal/services"
	"github.com/aryawidjaja/grievance-portal/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Notification pipeline: settings gate -> resolver -> fan-out workers.
	settings := services.NewSettingsService(db)
	resolver := services.NewResolverService(services.NewDirectoryService(db))
	dispatcher := services.NewDispatcherService(db, settings, resolver)
	dispatcher.Start()
	defer dispatcher.Stop()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db, dispatcher)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.ComplaintNote{},
		&models.ComplaintDocument{},
		&models.ExtensionRequest{},
		&models.TimelineEvent{},
		&models.Notification{},
		&models.NotificationSetting{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
