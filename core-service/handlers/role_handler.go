package handlers

import (
	"net/http"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRoleRequest represents request body for creating a role
type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Level       int    `json:"level" binding:"min=0,max=100"`
}

// UpdateRoleRequest represents request body for updating a role
type UpdateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       *int   `json:"level"`
}

// GetRoles retrieves roles with pagination and filtering
// @Summary Get all roles
// @Tags roles
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and slug"
// @Param sort[field] query string false "Sort field (name, level, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /roles [get]
func GetRoles(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedSortFields := map[string]string{
		"name":       "name",
		"level":      "level",
		"created_at": "created_at",
	}
	searchFields := []string{"name", "slug"}

	dbQuery := db.Model(&models.Role{})
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count roles",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var roles []models.Role
	if err := dbQuery.Find(&roles).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve roles",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      roles,
			"pagination": pagination,
		},
	})
}

// GetRole retrieves a single role by ID
// @Summary Get role by ID
// @Tags roles
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Role not found"
// @Router /roles/{id} [get]
func GetRole(ctx *gin.Context) {
	roleUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var role models.Role
	if err := db.First(&role, roleUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Role not found",
				"message": "Role with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve role",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    role,
	})
}

// CreateRole creates a new role
// @Summary Create a new role
// @Tags roles
// @Accept json
// @Produce json
// @Param role body CreateRoleRequest true "Role information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created role"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 409 {object} map[string]string "Slug already exists"
// @Router /roles [post]
func CreateRole(ctx *gin.Context) {
	var req CreateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var existingRole models.Role
	if err := db.Where("slug = ?", req.Slug).First(&existingRole).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Slug already exists",
			"message": "A role with this slug already exists",
		})
		return
	}

	role := models.Role{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Level:       req.Level,
	}

	if err := db.Create(&role).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create role",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Role created successfully",
		"data":    role,
	})
}

// UpdateRole updates an existing role
// @Summary Update a role
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param role body UpdateRoleRequest true "Updated role information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated role"
// @Failure 404 {object} map[string]string "Role not found"
// @Router /roles/{id} [put]
func UpdateRole(ctx *gin.Context) {
	roleUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var role models.Role
	if err := db.First(&role, roleUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Role not found",
				"message": "Role with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve role",
			"message": err.Error(),
		})
		return
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if req.Level != nil {
		if *req.Level < 0 || *req.Level > 100 {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid role level",
				"message": "Role level must be between 0 and 100",
			})
			return
		}
		role.Level = *req.Level
	}

	if err := db.Save(&role).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update role",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role updated successfully",
		"data":    role,
	})
}

// DeleteRole deletes a role if no users reference it
// @Summary Delete a role
// @Tags roles
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 409 {object} map[string]string "Role is assigned to users"
// @Router /roles/{id} [delete]
func DeleteRole(ctx *gin.Context) {
	roleUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var role models.Role
	if err := db.First(&role, roleUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Role not found",
				"message": "Role with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve role",
			"message": err.Error(),
		})
		return
	}

	var userCount int64
	db.Model(&models.User{}).Where("role_id = ?", roleUUID).Count(&userCount)
	if userCount > 0 {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Role is assigned to users",
			"message": "Cannot delete a role that is assigned to users",
		})
		return
	}

	if err := db.Delete(&role).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete role",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role deleted successfully",
	})
}
