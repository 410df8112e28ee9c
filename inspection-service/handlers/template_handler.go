package handlers

import (
	"encoding/json"
	"net/http"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models/inspection"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTemplateRequest represents request body for creating a template
type CreateTemplateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Config      json.RawMessage `json:"config" binding:"required"`
	IsDefault   bool            `json:"is_default"`
}

// UpdateTemplateRequest represents request body for updating a template
type UpdateTemplateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Config      json.RawMessage `json:"config"`
	IsDefault   *bool           `json:"is_default"`
	IsActive    *bool           `json:"is_active"`
}

// GetTemplates lists inspection templates
// @Summary List templates
// @Tags templates
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /templates [get]
func GetTemplates(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedSortFields := map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}
	searchFields := []string{"name"}

	dbQuery := db.Model(&inspection.Template{})
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count templates",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var templates []inspection.Template
	if err := dbQuery.Find(&templates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve templates",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      templates,
			"pagination": pagination,
		},
	})
}

// GetTemplate retrieves a single template by ID
// @Summary Get template by ID
// @Tags templates
// @Produce json
// @Param id path string true "Template ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Template not found"
// @Router /templates/{id} [get]
func GetTemplate(ctx *gin.Context) {
	templateUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid template ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var template inspection.Template
	if err := db.First(&template, templateUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Template not found",
				"message": "Template with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve template",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    template,
	})
}

// CreateTemplate creates a new inspection template
// @Summary Create a template
// @Description Create a checklist template; setting is_default clears any other default
// @Tags templates
// @Accept json
// @Produce json
// @Param template body CreateTemplateRequest true "Template definition"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created template"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Router /templates [post]
func CreateTemplate(ctx *gin.Context) {
	var req CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	template := inspection.Template{
		Name:        req.Name,
		Description: req.Description,
		Config:      []byte(req.Config),
		IsDefault:   req.IsDefault,
		IsActive:    true,
	}
	if creatorID, ok := currentUserID(ctx); ok {
		template.CreatedBy = &creatorID
	}

	// The default flag is exclusive; clear competitors in the same transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&inspection.Template{}).
				Where("is_default = ?", true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&template).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create template",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Template created successfully",
		"data":    template,
	})
}

// UpdateTemplate updates an existing template
// @Summary Update a template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID" format(uuid)
// @Param template body UpdateTemplateRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated template"
// @Failure 404 {object} map[string]string "Template not found"
// @Router /templates/{id} [put]
func UpdateTemplate(ctx *gin.Context) {
	templateUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid template ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var template inspection.Template
	if err := db.First(&template, templateUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Template not found",
				"message": "Template with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve template",
			"message": err.Error(),
		})
		return
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Description != "" {
		template.Description = req.Description
	}
	if len(req.Config) > 0 {
		template.Config = []byte(req.Config)
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}
	if req.IsDefault != nil {
		template.IsDefault = *req.IsDefault
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := tx.Model(&inspection.Template{}).
				Where("is_default = ? AND id != ?", true, templateUUID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&template).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update template",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Template updated successfully",
		"data":    template,
	})
}

// DeleteTemplate deactivates a template (soft delete)
// @Summary Delete a template
// @Description Soft delete; records referencing the template keep their reference
// @Tags templates
// @Produce json
// @Param id path string true "Template ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 404 {object} map[string]string "Template not found"
// @Router /templates/{id} [delete]
func DeleteTemplate(ctx *gin.Context) {
	templateUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid template ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var template inspection.Template
	if err := db.First(&template, templateUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Template not found",
				"message": "Template with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve template",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&template).Updates(map[string]interface{}{
		"is_active":  false,
		"is_default": false,
	}).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete template",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Template deleted successfully",
	})
}
