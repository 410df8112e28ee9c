package handlers

import (
	"net/http"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models/notification"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
)

// GetAuditLogs lists gateway audit entries
// @Summary List audit logs
// @Description Returns request audit entries recorded by the gateway, newest first
// @Tags audit
// @Produce json
// @Param user_id query string false "Filter by user ID"
// @Param status_code query int false "Filter by response status code"
// @Param path query string false "Filter by request path prefix"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /audit-logs [get]
func GetAuditLogs(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	dbQuery := db.Model(&notification.AuditLog{}).Order("created_at desc")
	if userID := ctx.Query("user_id"); userID != "" {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}
	if statusCode := ctx.Query("status_code"); statusCode != "" {
		dbQuery = dbQuery.Where("status_code = ?", statusCode)
	}
	if path := ctx.Query("path"); path != "" {
		dbQuery = dbQuery.Where("path LIKE ?", path+"%")
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count audit logs",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var logs []notification.AuditLog
	if err := dbQuery.Find(&logs).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve audit logs",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      logs,
			"pagination": pagination,
		},
	})
}
