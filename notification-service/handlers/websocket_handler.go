package handlers

import (
	"net/http"

	"inspeksi-backend/notification-service/services"

	"github.com/gin-gonic/gin"
)

// HandleWebSocket upgrades the connection and keeps it registered
// @Summary WebSocket connection endpoint
// @Description Establishes a WebSocket connection for real-time notifications
// @Tags websocket
// @Param user_id path string true "User ID" format(uuid)
// @Router /ws/{user_id} [get]
func HandleWebSocket(ctx *gin.Context) {
	services.GetWebSocketManager().HandleWebSocketConnection(ctx)
}

// GetWebSocketStats reports current connection counts
// @Summary WebSocket connection stats
// @Tags websocket
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ws/stats [get]
func GetWebSocketStats(ctx *gin.Context) {
	wsManager := services.GetWebSocketManager()
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"connected_users":  wsManager.GetConnectedUsers(),
			"connection_count": wsManager.GetConnectionCount(),
		},
	})
}
