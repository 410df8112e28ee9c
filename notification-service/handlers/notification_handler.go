package handlers

import (
	"fmt"
	"net/http"

	"inspeksi-backend/notification-service/services"
	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models/notification"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SendNotificationRequest is the internal service-to-service push payload
type SendNotificationRequest struct {
	UserID   *uuid.UUID                     `json:"user_id"`
	Type     string                         `json:"type" binding:"required"`
	Level    notification.NotificationLevel `json:"level"`
	Title    string                         `json:"title" binding:"required"`
	Message  string                         `json:"message" binding:"required"`
	Entity   string                         `json:"entity"`
	EntityID *uuid.UUID                     `json:"entity_id"`
}

// PaymentReceiptEmailRequest mirrors the billing service's receipt call
type PaymentReceiptEmailRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name"`
	OrderID     string `json:"order_id" binding:"required"`
	PlanName    string `json:"plan_name"`
	GrossAmount string `json:"gross_amount"`
	PaidAt      string `json:"paid_at"`
}

// InspectionAlertRequest mirrors the inspection service's alert call
type InspectionAlertRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	LocationName string `json:"location_name" binding:"required"`
	Inspector    string `json:"inspector"`
	RecordID     string `json:"record_id"`
}

// SendNotification stores a notification and pushes it over WebSocket
// @Summary Send a notification
// @Description Internal endpoint used by other services to notify users
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body SendNotificationRequest true "Notification payload"
// @Success 201 {object} map[string]interface{} "Stored notification"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Router /notifications [post]
func SendNotification(ctx *gin.Context) {
	var req SendNotificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if req.Level == "" {
		req.Level = notification.NotificationLevelInfo
	}

	record := notification.Notification{
		UserID:   req.UserID,
		Type:     req.Type,
		Level:    req.Level,
		Title:    req.Title,
		Message:  req.Message,
		Entity:   req.Entity,
		EntityID: req.EntityID,
	}

	if err := database.DB.Create(&record).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store notification",
			"message": err.Error(),
		})
		return
	}

	message := &notification.WebSocketMessage{
		Type:      record.Type,
		Level:     record.Level,
		Title:     record.Title,
		Message:   record.Message,
		Timestamp: notification.GetCurrentTime(),
		Entity:    record.Entity,
		EntityID:  record.EntityID,
		UserID:    record.UserID,
	}

	wsManager := services.GetWebSocketManager()
	if record.UserID != nil {
		wsManager.SendToUser(record.UserID.String(), message)
	} else {
		wsManager.BroadcastToAll(message)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

// GetNotifications lists notifications for a user
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param user_id query string false "Filter by user ID"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /notifications [get]
func GetNotifications(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	dbQuery := db.Model(&notification.Notification{}).Order("created_at desc")
	if userID := ctx.Query("user_id"); userID != "" {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count notifications",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var notifications []notification.Notification
	if err := dbQuery.Find(&notifications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve notifications",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      notifications,
			"pagination": pagination,
		},
	})
}

// MarkNotificationRead marks a notification as read
// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Notification not found"
// @Router /notifications/{id}/read [post]
func MarkNotificationRead(ctx *gin.Context) {
	notificationUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid notification ID format",
			"message": err.Error(),
		})
		return
	}

	result := database.DB.Model(&notification.Notification{}).
		Where("id = ?", notificationUUID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": notification.GetCurrentTime(),
		})
	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update notification",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Notification not found",
			"message": "Notification with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
	})
}

// SendPaymentReceipt emails a payment confirmation
// @Summary Send payment receipt email
// @Description Internal endpoint used by the billing service after settlement
// @Tags notifications
// @Accept json
// @Produce json
// @Param receipt body PaymentReceiptEmailRequest true "Receipt details"
// @Success 200 {object} map[string]interface{} "Email queued"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Router /notifications/email/payment-receipt [post]
func SendPaymentReceipt(ctx *gin.Context) {
	var req PaymentReceiptEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	emailService := services.NewEmailService(config.GetConfig())
	response, err := emailService.SendPaymentReceiptEmail(req.Email, req.Name, req.OrderID, req.PlanName, req.GrossAmount, req.PaidAt)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send receipt email",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// SendInspectionAlert notifies a user about a new inspection
// @Summary Send inspection alert
// @Description Internal endpoint used by the inspection service on submission
// @Tags notifications
// @Accept json
// @Produce json
// @Param alert body InspectionAlertRequest true "Alert details"
// @Success 201 {object} map[string]interface{} "Stored notification"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Router /notifications/inspection-alert [post]
func SendInspectionAlert(ctx *gin.Context) {
	var req InspectionAlertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	var entityID *uuid.UUID
	if recordID, err := uuid.Parse(req.RecordID); err == nil {
		entityID = &recordID
	}

	record := notification.Notification{
		UserID:   &userID,
		Type:     "inspection_submitted",
		Level:    notification.NotificationLevelInfo,
		Title:    "Inspeksi Baru",
		Message:  fmt.Sprintf("%s menyelesaikan inspeksi di %s", req.Inspector, req.LocationName),
		Entity:   "inspection",
		EntityID: entityID,
	}

	if err := database.DB.Create(&record).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store notification",
			"message": err.Error(),
		})
		return
	}

	services.GetWebSocketManager().SendToUser(userID.String(), &notification.WebSocketMessage{
		Type:      record.Type,
		Level:     record.Level,
		Title:     record.Title,
		Message:   record.Message,
		Timestamp: notification.GetCurrentTime(),
		Entity:    record.Entity,
		EntityID:  record.EntityID,
		UserID:    record.UserID,
	})

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}
