package handlers

import (
	"net/http"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBuildingRequest represents request body for creating a building
type CreateBuildingRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
	Name           string    `json:"name" binding:"required"`
	Code           string    `json:"code"`
	Address        string    `json:"address"`
}

// UpdateBuildingRequest represents request body for updating a building
type UpdateBuildingRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

// GetBuildings retrieves buildings with pagination and filtering
// @Summary Get all buildings
// @Description Get buildings with pagination, filtering, sorting and search
// @Tags buildings
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name, code and address"
// @Param filters[organization_id] query string false "Filter by organization ID"
// @Param filters[is_active] query string false "Filter by active flag"
// @Param sort[field] query string false "Sort field (name, code, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /buildings [get]
func GetBuildings(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"organization_id": "organization_id",
		"is_active":       "is_active",
	}
	allowedSortFields := map[string]string{
		"name":       "name",
		"code":       "code",
		"created_at": "created_at",
	}
	searchFields := []string{"name", "code", "address"}

	dbQuery := db.Model(&models.Building{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count buildings",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var buildings []models.Building
	if err := dbQuery.Preload("Organization").Find(&buildings).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve buildings",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      buildings,
			"pagination": pagination,
		},
	})
}

// GetBuilding retrieves a single building by ID
// @Summary Get building by ID
// @Tags buildings
// @Produce json
// @Param id path string true "Building ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Building not found"
// @Router /buildings/{id} [get]
func GetBuilding(ctx *gin.Context) {
	buildingUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid building ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var building models.Building
	if err := db.Preload("Organization").First(&building, buildingUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Building not found",
				"message": "Building with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve building",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    building,
	})
}

// CreateBuilding creates a new building under an organization
// @Summary Create a new building
// @Description Create a building; enforces the organization plan's building limit
// @Tags buildings
// @Accept json
// @Produce json
// @Param building body CreateBuildingRequest true "Building information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created building"
// @Failure 400 {object} map[string]string "Invalid request data or organization not found"
// @Failure 409 {object} map[string]string "Plan building limit reached"
// @Router /buildings [post]
func CreateBuilding(ctx *gin.Context) {
	var req CreateBuildingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var org models.Organization
	if err := db.First(&org, req.OrganizationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Organization not found",
				"message": "The specified organization does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate organization",
			"message": err.Error(),
		})
		return
	}

	if !buildingQuotaAvailable(db, org) {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Building limit reached",
			"message": "The organization's plan does not allow more buildings",
		})
		return
	}

	building := models.Building{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Code:           req.Code,
		Address:        req.Address,
		IsActive:       true,
	}
	if creatorID, ok := currentUserID(ctx); ok {
		building.CreatedBy = &creatorID
	}

	if err := db.Create(&building).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create building",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Building created successfully",
		"data":    building,
	})
}

// UpdateBuilding updates an existing building
// @Summary Update a building
// @Tags buildings
// @Accept json
// @Produce json
// @Param id path string true "Building ID" format(uuid)
// @Param building body UpdateBuildingRequest true "Updated building information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated building"
// @Failure 404 {object} map[string]string "Building not found"
// @Router /buildings/{id} [put]
func UpdateBuilding(ctx *gin.Context) {
	buildingUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid building ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateBuildingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var building models.Building
	if err := db.First(&building, buildingUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Building not found",
				"message": "Building with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve building",
			"message": err.Error(),
		})
		return
	}

	if req.Name != "" {
		building.Name = req.Name
	}
	if req.Code != "" {
		building.Code = req.Code
	}
	if req.Address != "" {
		building.Address = req.Address
	}

	if err := db.Save(&building).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update building",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Building updated successfully",
		"data":    building,
	})
}

// DeleteBuilding deactivates a building (soft delete)
// @Summary Delete a building
// @Description Soft delete a building by clearing its active flag
// @Tags buildings
// @Produce json
// @Param id path string true "Building ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Building not found"
// @Router /buildings/{id} [delete]
func DeleteBuilding(ctx *gin.Context) {
	buildingUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid building ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var building models.Building
	if err := db.First(&building, buildingUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Building not found",
				"message": "Building with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve building",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&building).Update("is_active", false).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete building",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Building deleted successfully",
	})
}

// buildingQuotaAvailable checks the active plan's building limit. No plan or a
// zero limit means unlimited.
func buildingQuotaAvailable(db *gorm.DB, org models.Organization) bool {
	if org.CurrentPlanID == nil {
		return true
	}

	var plan billing.Plan
	if err := db.First(&plan, *org.CurrentPlanID).Error; err != nil {
		return true
	}
	if plan.MaxBuildings <= 0 {
		return true
	}

	var count int64
	db.Model(&models.Building{}).
		Where("organization_id = ? AND is_active = ?", org.ID, true).
		Count(&count)
	return count < int64(plan.MaxBuildings)
}
