package handlers

import (
	"net/http"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models/billing"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePlanRequest represents request body for creating a plan
type CreatePlanRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Description  string `json:"description"`
	Price        int64  `json:"price" binding:"required,min=0"`
	DurationDays int    `json:"duration_days"`
	MaxBuildings int    `json:"max_buildings"`
	MaxLocations int    `json:"max_locations"`
}

// UpdatePlanRequest represents request body for updating a plan
type UpdatePlanRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        *int64 `json:"price"`
	DurationDays *int   `json:"duration_days"`
	MaxBuildings *int   `json:"max_buildings"`
	MaxLocations *int   `json:"max_locations"`
	IsActive     *bool  `json:"is_active"`
}

// GetPlans lists subscription plans
// @Summary List plans
// @Description Active subscription plans, openly readable by authenticated users
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /plans [get]
func GetPlans(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	dbQuery := db.Model(&billing.Plan{}).Where("is_active = ?", true).Order("price asc")

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count plans",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var plans []billing.Plan
	if err := dbQuery.Find(&plans).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve plans",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      plans,
			"pagination": pagination,
		},
	})
}

// GetPlan retrieves a single plan by ID
// @Summary Get plan by ID
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Plan not found"
// @Router /plans/{id} [get]
func GetPlan(ctx *gin.Context) {
	planUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid plan ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var plan billing.Plan
	if err := db.First(&plan, planUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Plan not found",
				"message": "Plan with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve plan",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    plan,
	})
}

// CreatePlan creates a new subscription plan
// @Summary Create a plan
// @Tags plans
// @Accept json
// @Produce json
// @Param plan body CreatePlanRequest true "Plan definition"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created plan"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 409 {object} map[string]string "Slug already exists"
// @Router /plans [post]
func CreatePlan(ctx *gin.Context) {
	var req CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var existingPlan billing.Plan
	if err := db.Where("slug = ?", req.Slug).First(&existingPlan).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Slug already exists",
			"message": "A plan with this slug already exists",
		})
		return
	}

	if req.DurationDays <= 0 {
		req.DurationDays = 30
	}

	plan := billing.Plan{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		MaxBuildings: req.MaxBuildings,
		MaxLocations: req.MaxLocations,
		IsActive:     true,
	}

	if err := db.Create(&plan).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create plan",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Plan created successfully",
		"data":    plan,
	})
}

// UpdatePlan updates an existing plan
// @Summary Update a plan
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID" format(uuid)
// @Param plan body UpdatePlanRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated plan"
// @Failure 404 {object} map[string]string "Plan not found"
// @Router /plans/{id} [put]
func UpdatePlan(ctx *gin.Context) {
	planUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid plan ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var plan billing.Plan
	if err := db.First(&plan, planUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Plan not found",
				"message": "Plan with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve plan",
			"message": err.Error(),
		})
		return
	}

	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.DurationDays != nil {
		plan.DurationDays = *req.DurationDays
	}
	if req.MaxBuildings != nil {
		plan.MaxBuildings = *req.MaxBuildings
	}
	if req.MaxLocations != nil {
		plan.MaxLocations = *req.MaxLocations
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := db.Save(&plan).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update plan",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Plan updated successfully",
		"data":    plan,
	})
}

// DeletePlan deactivates a plan
// @Summary Delete a plan
// @Description Soft delete; organizations already on the plan keep it until expiry
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Plan not found"
// @Router /plans/{id} [delete]
func DeletePlan(ctx *gin.Context) {
	planUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid plan ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var plan billing.Plan
	if err := db.First(&plan, planUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Plan not found",
				"message": "Plan with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve plan",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&plan).Update("is_active", false).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete plan",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Plan deleted successfully",
	})
}
