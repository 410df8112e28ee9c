package handlers

import (
	"net/http"

	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
	"inspeksi-backend/shared/utils/qrcode"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateLocationRequest represents request body for creating a location
type CreateLocationRequest struct {
	BuildingID  uuid.UUID `json:"building_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Code        string    `json:"code"`
	Floor       string    `json:"floor"`
	Description string    `json:"description"`
}

// UpdateLocationRequest represents request body for updating a location
type UpdateLocationRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Floor       string `json:"floor"`
	Description string `json:"description"`
}

// GetLocations retrieves locations with pagination and filtering
// @Summary Get all locations
// @Description Get locations with pagination, filtering, sorting and search
// @Tags locations
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name, code and floor"
// @Param filters[building_id] query string false "Filter by building ID"
// @Param filters[is_active] query string false "Filter by active flag"
// @Param sort[field] query string false "Sort field (name, code, floor, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /locations [get]
func GetLocations(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"building_id": "building_id",
		"is_active":   "is_active",
	}
	allowedSortFields := map[string]string{
		"name":       "name",
		"code":       "code",
		"floor":      "floor",
		"created_at": "created_at",
	}
	searchFields := []string{"name", "code", "floor"}

	dbQuery := db.Model(&models.Location{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count locations",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var locations []models.Location
	if err := dbQuery.Preload("Building").Find(&locations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve locations",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      locations,
			"pagination": pagination,
		},
	})
}

// GetLocation retrieves a single location by ID
// @Summary Get location by ID
// @Tags locations
// @Produce json
// @Param id path string true "Location ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Location not found"
// @Router /locations/{id} [get]
func GetLocation(ctx *gin.Context) {
	locationUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid location ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var location models.Location
	if err := db.Preload("Building").First(&location, locationUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Location not found",
				"message": "Location with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve location",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    location,
	})
}

// GetLocationQR returns the QR payload string for a location
// @Summary Get location QR payload
// @Description Returns the URL string to encode into the location's printed QR code
// @Tags locations
// @Produce json
// @Param id path string true "Location ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "QR payload"
// @Failure 404 {object} map[string]string "Location not found"
// @Router /locations/{id}/qr [get]
func GetLocationQR(ctx *gin.Context) {
	locationUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid location ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var location models.Location
	if err := db.First(&location, locationUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Location not found",
				"message": "Location with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve location",
			"message": err.Error(),
		})
		return
	}

	payload := qrcode.LocationPayload(config.GetConfig().FrontendURL, location.ID, location.Code)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"location_id": location.ID,
			"payload":     payload,
		},
	})
}

// CreateLocation creates a new location under a building
// @Summary Create a new location
// @Description Create a location; enforces the organization plan's location limit
// @Tags locations
// @Accept json
// @Produce json
// @Param location body CreateLocationRequest true "Location information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created location"
// @Failure 400 {object} map[string]string "Invalid request data or building not found"
// @Failure 409 {object} map[string]string "Plan location limit reached"
// @Router /locations [post]
func CreateLocation(ctx *gin.Context) {
	var req CreateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var building models.Building
	if err := db.Preload("Organization").First(&building, req.BuildingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Building not found",
				"message": "The specified building does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate building",
			"message": err.Error(),
		})
		return
	}

	if !locationQuotaAvailable(db, building.Organization) {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Location limit reached",
			"message": "The organization's plan does not allow more locations",
		})
		return
	}

	location := models.Location{
		BuildingID:  req.BuildingID,
		Name:        req.Name,
		Code:        req.Code,
		Floor:       req.Floor,
		Description: req.Description,
		IsActive:    true,
	}
	if creatorID, ok := currentUserID(ctx); ok {
		location.CreatedBy = &creatorID
	}

	if err := db.Create(&location).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create location",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Location created successfully",
		"data":    location,
	})
}

// UpdateLocation updates an existing location
// @Summary Update a location
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID" format(uuid)
// @Param location body UpdateLocationRequest true "Updated location information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated location"
// @Failure 404 {object} map[string]string "Location not found"
// @Router /locations/{id} [put]
func UpdateLocation(ctx *gin.Context) {
	locationUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid location ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var location models.Location
	if err := db.First(&location, locationUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Location not found",
				"message": "Location with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve location",
			"message": err.Error(),
		})
		return
	}

	if req.Name != "" {
		location.Name = req.Name
	}
	if req.Code != "" {
		location.Code = req.Code
	}
	if req.Floor != "" {
		location.Floor = req.Floor
	}
	if req.Description != "" {
		location.Description = req.Description
	}

	if err := db.Save(&location).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update location",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Location updated successfully",
		"data":    location,
	})
}

// DeleteLocation deactivates a location (soft delete)
// @Summary Delete a location
// @Description Soft delete a location by clearing its active flag
// @Tags locations
// @Produce json
// @Param id path string true "Location ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Location not found"
// @Router /locations/{id} [delete]
func DeleteLocation(ctx *gin.Context) {
	locationUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid location ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var location models.Location
	if err := db.First(&location, locationUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Location not found",
				"message": "Location with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve location",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&location).Update("is_active", false).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete location",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Location deleted successfully",
	})
}

// locationQuotaAvailable checks the active plan's location limit across the
// whole organization. No plan or a zero limit means unlimited.
func locationQuotaAvailable(db *gorm.DB, org models.Organization) bool {
	if org.CurrentPlanID == nil {
		return true
	}

	var plan billing.Plan
	if err := db.First(&plan, *org.CurrentPlanID).Error; err != nil {
		return true
	}
	if plan.MaxLocations <= 0 {
		return true
	}

	var count int64
	db.Model(&models.Location{}).
		Joins("JOIN buildings ON buildings.id = locations.building_id").
		Where("buildings.organization_id = ? AND locations.is_active = ?", org.ID, true).
		Count(&count)
	return count < int64(plan.MaxLocations)
}
