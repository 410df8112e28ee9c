package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"inspeksi-backend/auth-service/handlers"
	"inspeksi-backend/auth-service/middleware"
	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database"
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

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database.GetDB(), session.GetStore())

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(30 * time.Minute)

	cfg := config.GetConfig()
	generalConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}

	loginConfig := middleware.RateLimitConfig{
		MaxRequests:   5,
		TimeWindow:    5 * time.Minute,
		BlockDuration: 30 * time.Minute,
	}

	registerConfig := middleware.RateLimitConfig{
		MaxRequests:   3,
		TimeWindow:    24 * time.Hour,
		BlockDuration: 48 * time.Hour,
	}

	router := gin.Default()

	// Auth endpoints
	router.POST("/api/auth/login", rateLimiter.LoginRateLimitMiddleware(loginConfig), authHandler.Login)
	router.POST("/api/auth/logout", sharedmw.RequireSession(), authHandler.Logout)
	router.POST("/api/auth/register", rateLimiter.RegistrationRateLimitMiddleware(registerConfig), authHandler.Register)
	router.POST("/api/auth/refresh", rateLimiter.RateLimitMiddleware(generalConfig), authHandler.Refresh)
	router.POST("/api/auth/validate", rateLimiter.RateLimitMiddleware(generalConfig), authHandler.Validate)

	// Password management endpoints
	router.POST("/api/auth/change-password", sharedmw.RequireSession(), authHandler.ChangePassword)

	// Security features endpoints
	router.GET("/api/auth/login-history", sharedmw.RequireSession(), authHandler.GetLoginHistory)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(config.GetConfig().AuthServiceURL, ":")[2]
	log.Printf("Auth Service starting on port %s...", port)
	router.Run(":" + port)
}
