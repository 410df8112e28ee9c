package main

import (
	"log"
	"net/http"
	"strings"

	"inspeksi-backend/notification-service/handlers"
	"inspeksi-backend/notification-service/services"
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

	// Start the WebSocket hub
	services.GetWebSocketManager()

	router := gin.Default()

	// WebSocket connection per user
	router.GET("/ws/:user_id", handlers.HandleWebSocket)
	router.GET("/api/websocket/stats", sharedmw.RequireLevel(models.LevelAdmin), handlers.GetWebSocketStats)

	// Internal endpoints called by other services over the private network
	router.POST("/api/notifications", handlers.SendNotification)
	router.POST("/api/notifications/inspection-alert", handlers.SendInspectionAlert)
	router.POST("/api/notifications/email/payment-receipt", handlers.SendPaymentReceipt)

	// User-facing reads
	router.GET("/api/notifications", sharedmw.RequireLevel(models.LevelMember), handlers.GetNotifications)
	router.POST("/api/notifications/:id/read", sharedmw.RequireLevel(models.LevelMember), handlers.MarkNotificationRead)

	// Audit trail written by the gateway
	router.GET("/api/audit-logs", sharedmw.RequireLevel(models.LevelAdmin), handlers.GetAuditLogs)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "notification",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(config.GetConfig().NotificationServiceURL, ":")[2]
	log.Printf("Notification Service starting on port %s...", port)
	router.Run(":" + port)
}
