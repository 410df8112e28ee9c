package main

import (
	"log"
	"net/http"
	"strings"

	"inspeksi-backend/inspection-service/handlers"
	"inspeksi-backend/inspection-service/services"
	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	sharedmw "inspeksi-backend/shared/middleware"
	"inspeksi-backend/shared/utils/session"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize session store
	if err := session.InitSessionStore(); err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	// Initialize photo storage
	minioService, err := services.NewMinIOService()
	if err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}
	photoHandler := handlers.NewPhotoHandler(minioService)

	router := gin.Default()

	// Inspection endpoints
	router.POST("/api/inspections", sharedmw.RequireLevel(models.LevelInspector), handlers.CreateInspection)
	router.GET("/api/inspections", sharedmw.RequireLevel(models.LevelMember), handlers.GetInspections)
	router.GET("/api/inspections/export", sharedmw.RequireLevel(models.LevelMember), handlers.ExportInspections)
	router.GET("/api/inspections/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetInspection)
	router.PATCH("/api/inspections/:id", sharedmw.RequireLevel(models.LevelInspector), handlers.UpdateInspection)
	router.DELETE("/api/inspections/:id", sharedmw.RequireLevel(models.LevelInspector), handlers.DeleteInspection)

	// Photo endpoints
	router.POST("/api/inspections/:id/photos", sharedmw.RequireLevel(models.LevelInspector), photoHandler.UploadPhoto)
	router.GET("/api/inspections/:id/photos", sharedmw.RequireLevel(models.LevelMember), photoHandler.GetPhotoURL)

	// Template endpoints
	router.GET("/api/templates", sharedmw.RequireLevel(models.LevelMember), handlers.GetTemplates)
	router.GET("/api/templates/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetTemplate)
	router.POST("/api/templates", sharedmw.RequireLevel(models.LevelAdmin), handlers.CreateTemplate)
	router.PUT("/api/templates/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.UpdateTemplate)
	router.DELETE("/api/templates/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.DeleteTemplate)

	// Stats endpoints
	router.GET("/api/stats/dashboard", sharedmw.RequireLevel(models.LevelAdmin), handlers.GetDashboardStats)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "inspection",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(config.GetConfig().InspectionServiceURL, ":")[2]
	log.Printf("Inspection Service starting on port %s...", port)
	router.Run(":" + port)
}
