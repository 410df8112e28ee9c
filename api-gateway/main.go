package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"inspeksi-backend/api-gateway/middleware"
	"inspeksi-backend/api-gateway/routes"
	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	sharedmw "inspeksi-backend/shared/middleware"
	"inspeksi-backend/shared/utils/session"

	_ "inspeksi-backend/docs/swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Inspeksi API
// @version 1.0
// @description API documentation for the Inspeksi facility-inspection platform

// @contact.name API Support
// @contact.email support@inspeksi.id

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name auth
// @tag.description Authentication operations

// @tag.name organizations
// @tag.description Organization management

// @tag.name buildings
// @tag.description Building management

// @tag.name locations
// @tag.description Location management and QR payloads

// @tag.name users
// @tag.description User management

// @tag.name roles
// @tag.description Role management

// @tag.name inspections
// @tag.description Inspection records, photos, export and statistics

// @tag.name templates
// @tag.description Inspection template management

// @tag.name billing
// @tag.description Plans, subscriptions and payment callbacks

// @tag.name notifications
// @tag.description Notifications and audit logs

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Load configuration
	config.LoadConfig()

	// Database is needed for async audit logging
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Session store backs token validation at the gateway
	if err := session.InitSessionStore(); err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	// Global rate limiter, cleaned up every 5 minutes
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute)
	globalRateConfig := middleware.NewRateLimitConfig()

	router := gin.Default()

	router.Use(cors.Default())
	router.Use(rateLimiter.GlobalRateLimitMiddleware(globalRateConfig))
	router.Use(middleware.UnifiedResponseMiddleware())

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "API Gateway is running"})
	})

	// Auth routes; the auth service applies its own login/register limits
	router.Any("/api/auth/*path",
		routes.ProxyToService("auth"))

	// RPC dispatch used by the browser UI
	router.POST("/api/rpc", routes.HandleRPC)

	// Organization routes
	router.GET("/api/organizations",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.GET("/api/organizations/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.POST("/api/organizations",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("core"))
	router.PUT("/api/organizations/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.DELETE("/api/organizations/:id",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("core"))

	// Building routes
	router.GET("/api/buildings",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.GET("/api/buildings/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.POST("/api/buildings",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.PUT("/api/buildings/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.DELETE("/api/buildings/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))

	// Location routes
	router.GET("/api/locations",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.GET("/api/locations/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.GET("/api/locations/:id/qr",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.POST("/api/locations",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.PUT("/api/locations/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.DELETE("/api/locations/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))

	// User routes
	router.GET("/api/users",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.GET("/api/users/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.POST("/api/users",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.PUT("/api/users/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))
	router.DELETE("/api/users/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("core"))

	// Role routes
	router.GET("/api/roles",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.GET("/api/roles/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("core"))
	router.POST("/api/roles",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("core"))
	router.PUT("/api/roles/:id",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("core"))
	router.DELETE("/api/roles/:id",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("core"))

	// Inspection routes; export before :id so the static segment wins
	router.GET("/api/inspections/export",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("inspection"))
	router.GET("/api/inspections",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("inspection"))
	router.GET("/api/inspections/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("inspection"))
	router.POST("/api/inspections",
		sharedmw.RequireLevel(models.LevelInspector),
		routes.ProxyToService("inspection"))
	router.PATCH("/api/inspections/:id",
		sharedmw.RequireLevel(models.LevelInspector),
		routes.ProxyToService("inspection"))
	router.DELETE("/api/inspections/:id",
		sharedmw.RequireLevel(models.LevelInspector),
		routes.ProxyToService("inspection"))
	router.POST("/api/inspections/:id/photos",
		sharedmw.RequireLevel(models.LevelInspector),
		routes.ProxyToService("inspection"))
	router.GET("/api/inspections/:id/photos",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("inspection"))

	// Template routes
	router.GET("/api/templates",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("inspection"))
	router.GET("/api/templates/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("inspection"))
	router.POST("/api/templates",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("inspection"))
	router.PUT("/api/templates/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("inspection"))
	router.DELETE("/api/templates/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("inspection"))

	// Dashboard statistics
	router.GET("/api/stats/dashboard",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("inspection"))

	// Billing routes
	router.GET("/api/plans",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("billing"))
	router.GET("/api/plans/:id",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("billing"))
	router.POST("/api/plans",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("billing"))
	router.PUT("/api/plans/:id",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("billing"))
	router.DELETE("/api/plans/:id",
		sharedmw.RequireLevel(models.LevelSuperAdmin),
		routes.ProxyToService("billing"))
	router.POST("/api/subscriptions/checkout",
		sharedmw.RequireLevel(models.LevelOwner),
		routes.ProxyToService("billing"))
	router.GET("/api/subscriptions",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("billing"))
	router.GET("/api/subscriptions/:id",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("billing"))

	// Payment provider callback, authenticated by its signature
	router.POST("/api/webhooks/midtrans",
		routes.ProxyToService("billing"))
	router.GET("/api/webhooks/midtrans",
		routes.ProxyToService("billing"))

	// Notification routes
	router.GET("/api/notifications",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("notification"))
	router.POST("/api/notifications/:id/read",
		sharedmw.RequireLevel(models.LevelMember),
		routes.ProxyToService("notification"))
	router.GET("/api/audit-logs",
		sharedmw.RequireLevel(models.LevelAdmin),
		routes.ProxyToService("notification"))

	// WebSocket push
	router.GET("/ws/:user_id",
		routes.ProxyToService("notification"))

	// Swagger documentation UI, development only
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Swagger documentation not available in production",
			})
		}
	})

	// Server Start
	port := strings.Split(config.GetConfig().APIGatewayURL, ":")[2]
	log.Printf("API Gateway is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
