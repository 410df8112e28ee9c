package main

import (
	"log"
	"net/http"
	"strings"

	"inspeksi-backend/billing-service/handlers"
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

	webhookHandler := handlers.NewWebhookHandler(database.GetDB(), config.GetConfig().MidtransServerKey)

	router := gin.Default()

	// Plan endpoints (reads open to any authenticated user)
	router.GET("/api/plans", sharedmw.RequireLevel(models.LevelMember), handlers.GetPlans)
	router.GET("/api/plans/:id", sharedmw.RequireLevel(models.LevelMember), handlers.GetPlan)
	router.POST("/api/plans", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.CreatePlan)
	router.PUT("/api/plans/:id", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.UpdatePlan)
	router.DELETE("/api/plans/:id", sharedmw.RequireLevel(models.LevelSuperAdmin), handlers.DeletePlan)

	// Subscription endpoints
	router.POST("/api/subscriptions/checkout", sharedmw.RequireLevel(models.LevelOwner), handlers.Checkout)
	router.GET("/api/subscriptions", sharedmw.RequireLevel(models.LevelAdmin), handlers.GetSubscriptions)
	router.GET("/api/subscriptions/:id", sharedmw.RequireLevel(models.LevelAdmin), handlers.GetSubscription)

	// Payment provider callback; authenticated by signature, not session
	router.POST("/api/webhooks/midtrans", webhookHandler.HandleNotification)
	router.GET("/api/webhooks/midtrans", webhookHandler.HandleLiveness)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "billing",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(config.GetConfig().BillingServiceURL, ":")[2]
	log.Printf("Billing Service starting on port %s...", port)
	router.Run(":" + port)
}
