package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"inspeksi-backend/shared/clients"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/inspection"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateInspectionRequest represents request body for submitting an inspection
type CreateInspectionRequest struct {
	LocationID     uuid.UUID       `json:"location_id" binding:"required"`
	TemplateID     *uuid.UUID      `json:"template_id"`
	InspectionDate string          `json:"inspection_date" binding:"required" example:"2025-03-14"`
	InspectionTime string          `json:"inspection_time" binding:"required" example:"09:30"`
	Responses      json.RawMessage `json:"responses" binding:"required"`
	Notes          string          `json:"notes"`
}

// UpdateInspectionRequest represents request body for patching an inspection
type UpdateInspectionRequest struct {
	InspectionDate string          `json:"inspection_date"`
	InspectionTime string          `json:"inspection_time"`
	Responses      json.RawMessage `json:"responses"`
	Notes          *string         `json:"notes"`
}

// CreateInspection submits a new inspection record
// @Summary Submit an inspection
// @Description Record an inspection against a location; responses are stored verbatim
// @Tags inspections
// @Accept json
// @Produce json
// @Param inspection body CreateInspectionRequest true "Inspection data"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created inspection"
// @Failure 400 {object} map[string]string "Invalid request data or location not found"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /inspections [post]
func CreateInspection(ctx *gin.Context) {
	var req CreateInspectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	inspectionDate, err := time.Parse("2006-01-02", req.InspectionDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection date",
			"message": "inspection_date must be formatted as YYYY-MM-DD",
		})
		return
	}
	if _, err := time.Parse("15:04", req.InspectionTime); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection time",
			"message": "inspection_time must be formatted as HH:MM",
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	var location models.Location
	if err := db.Preload("Building").First(&location, req.LocationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Location not found",
				"message": "The specified location does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate location",
			"message": err.Error(),
		})
		return
	}

	if req.TemplateID != nil {
		var template inspection.Template
		if err := db.First(&template, *req.TemplateID).Error; err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Template not found",
				"message": "The specified template does not exist",
			})
			return
		}
	}

	record := inspection.Record{
		LocationID:     req.LocationID,
		UserID:         userID,
		TemplateID:     req.TemplateID,
		InspectionDate: inspectionDate,
		InspectionTime: req.InspectionTime,
		Responses:      []byte(req.Responses),
		Notes:          req.Notes,
	}

	if err := db.Create(&record).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create inspection",
			"message": err.Error(),
		})
		return
	}

	// Best-effort alert to the org admins; submission never fails on this
	go func() {
		client := clients.NewNotificationClient()
		err := client.SendInspectionAlert(clients.InspectionAlertRequest{
			UserID:       userID.String(),
			LocationName: location.Name,
			Inspector:    ctx.GetString("userEmail"),
			RecordID:     record.ID.String(),
		})
		if err != nil {
			log.Printf("⚠️ Inspection alert not delivered: %v", err)
		}
	}()

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Inspection recorded successfully",
		"data":    record,
	})
}

// GetInspections lists inspection records
// @Summary List inspections
// @Description Inspectors see their own records; admins see every record
// @Tags inspections
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[location_id] query string false "Filter by location ID"
// @Param filters[template_id] query string false "Filter by template ID"
// @Param sort[field] query string false "Sort field (inspection_date, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /inspections [get]
func GetInspections(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"location_id": "location_id",
		"template_id": "template_id",
	}
	allowedSortFields := map[string]string{
		"inspection_date": "inspection_date",
		"created_at":      "created_at",
	}

	dbQuery := db.Model(&inspection.Record{})

	// Ownership scoping happens in the query itself
	if ctx.GetInt("roleLevel") < models.LevelAdmin {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}

	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count inspections",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var records []inspection.Record
	if err := dbQuery.Preload("Location").Preload("Location.Building").Find(&records).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve inspections",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      records,
			"pagination": pagination,
		},
	})
}

// GetInspection retrieves one record, scoped to its owner
// @Summary Get inspection by ID
// @Description Owners and admins only; a non-owner gets 404, not 403
// @Tags inspections
// @Produce json
// @Param id path string true "Inspection ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Inspection not found"
// @Router /inspections/{id} [get]
func GetInspection(ctx *gin.Context) {
	recordUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection ID format",
			"message": err.Error(),
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	record, found := findOwnedRecord(db, ctx.GetInt("roleLevel"), userID, recordUUID)
	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Inspection not found",
			"message": "Inspection with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// UpdateInspection patches an owned inspection record
// @Summary Update an inspection
// @Tags inspections
// @Accept json
// @Produce json
// @Param id path string true "Inspection ID" format(uuid)
// @Param inspection body UpdateInspectionRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated inspection"
// @Failure 404 {object} map[string]string "Inspection not found"
// @Router /inspections/{id} [patch]
func UpdateInspection(ctx *gin.Context) {
	recordUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateInspectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	record, found := findOwnedRecord(db, ctx.GetInt("roleLevel"), userID, recordUUID)
	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Inspection not found",
			"message": "Inspection with the given ID does not exist",
		})
		return
	}

	if req.InspectionDate != "" {
		inspectionDate, err := time.Parse("2006-01-02", req.InspectionDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid inspection date",
				"message": "inspection_date must be formatted as YYYY-MM-DD",
			})
			return
		}
		record.InspectionDate = inspectionDate
	}
	if req.InspectionTime != "" {
		if _, err := time.Parse("15:04", req.InspectionTime); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid inspection time",
				"message": "inspection_time must be formatted as HH:MM",
			})
			return
		}
		record.InspectionTime = req.InspectionTime
	}
	if len(req.Responses) > 0 {
		record.Responses = []byte(req.Responses)
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := db.Save(&record).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update inspection",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inspection updated successfully",
		"data":    record,
	})
}

// DeleteInspection removes an owned inspection record permanently
// @Summary Delete an inspection
// @Description Hard delete; only the record's owner (or an admin) can remove it
// @Tags inspections
// @Produce json
// @Param id path string true "Inspection ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Inspection not found"
// @Router /inspections/{id} [delete]
func DeleteInspection(ctx *gin.Context) {
	recordUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection ID format",
			"message": err.Error(),
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	record, found := findOwnedRecord(db, ctx.GetInt("roleLevel"), userID, recordUUID)
	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Inspection not found",
			"message": "Inspection with the given ID does not exist",
		})
		return
	}

	if err := db.Delete(&record).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete inspection",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inspection deleted successfully",
	})
}

// findOwnedRecord loads a record with ownership applied inside the query, so a
// non-owner cannot distinguish "exists but not yours" from "does not exist".
func findOwnedRecord(db *gorm.DB, roleLevel int, userID, recordID uuid.UUID) (inspection.Record, bool) {
	var record inspection.Record

	dbQuery := db.Preload("Location").Preload("Location.Building").Where("id = ?", recordID)
	if roleLevel < models.LevelAdmin {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}

	if err := dbQuery.First(&record).Error; err != nil {
		return inspection.Record{}, false
	}
	return record, true
}

// currentUserID reads the authenticated user id set by the session middleware
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	value, exists := ctx.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
