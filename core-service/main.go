package main

import (
	"log"
	"net/http"
	"strings"

	"inspeksi-backend/core-service/handlers"
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

	router := gin.Default()

	// Organization endpoints
	router.GET("/api/organizations", sharedmw.RequireLevel(models.LevelMember), handlers.GetOrganizations)
	router.GET("/api/organizations/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetOrganization)
	router.POST("/api/organizations", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.CreateOrganization)
	router.PUT("/api/organizations/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.UpdateOrganization)
	router.DELETE("/api/organizations/:id", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.DeleteOrganization)

	// Building endpoints
	router.GET("/api/buildings", sharedmw.RequireLevel(models.LevelMember), handlers.GetBuildings)
	router.GET("/api/buildings/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetBuilding)
	router.POST("/api/buildings", sharedmw.RequireLevel(models.LevelAdmin), handlers.CreateBuilding)
	router.PUT("/api/buildings/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.UpdateBuilding)
	router.DELETE("/api/buildings/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.DeleteBuilding)

	// Location endpoints
	router.GET("/api/locations", sharedmw.RequireLevel(models.LevelMember), handlers.GetLocations)
	router.GET("/api/locations/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetLocation)
	router.GET("/api/locations/:id/qr", sharedmw.RequireLevel(models.LevelMember), handlers.GetLocationQR)
	router.POST("/api/locations", sharedmw.RequireLevel(models.LevelAdmin), handlers.CreateLocation)
	router.PUT("/api/locations/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.UpdateLocation)
	router.DELETE("/api/locations/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.DeleteLocation)

	// User endpoints
	router.GET("/api/users", sharedmw.RequireLevel(models.LevelAdmin), handlers.GetUsers)
	router.GET("/api/users/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetUser)
	router.POST("/api/users", sharedmw.RequireLevel(models.LevelAdmin), handlers.CreateUser)
	router.PUT("/api/users/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.UpdateUser)
	router.DELETE("/api/users/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.DeleteUser)

	// Role endpoints
	router.GET("/api/roles", sharedmw.RequireLevel(models.LevelMember), handlers.GetRoles)
	router.GET("/api/roles/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetRole)
	router.POST("/api/roles", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.CreateRole)
	router.PUT("/api/roles/:id", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.UpdateRole)
	router.DELETE("/api/roles/:id", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.DeleteRole)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "core",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(config.GetConfig().CoreServiceURL, ":")[2]
	log.Printf("Core Service starting on port %s...", port)
	router.Run(":" + port)
}
