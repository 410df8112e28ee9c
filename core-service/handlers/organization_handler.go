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

// OrganizationResponse represents organization data for API responses
type OrganizationResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Code          string     `json:"code"`
	IsActive      bool       `json:"is_active"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	CurrentPlanID *uuid.UUID `json:"current_plan_id"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

// CreateOrganizationRequest represents request body for creating organization
type CreateOrganizationRequest struct {
	Name    string    `json:"name" binding:"required"`
	Slug    string    `json:"slug" binding:"required"`
	Code    string    `json:"code"`
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
}

// UpdateOrganizationRequest represents request body for updating organization
type UpdateOrganizationRequest struct {
	Name    string     `json:"name"`
	Slug    string     `json:"slug"`
	Code    string     `json:"code"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

func toOrganizationResponse(org models.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:            org.ID,
		Name:          org.Name,
		Slug:          org.Slug,
		Code:          org.Code,
		IsActive:      org.IsActive,
		OwnerID:       org.OwnerID,
		CurrentPlanID: org.CurrentPlanID,
		CreatedAt:     org.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     org.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetOrganizations retrieves all organizations with pagination and filtering
// @Summary Get all organizations
// @Description Get all organizations with pagination, filtering, sorting and search
// @Tags organizations
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name, slug and code"
// @Param filters[is_active] query string false "Filter by active flag"
// @Param filters[owner_id] query string false "Filter by owner ID"
// @Param sort[field] query string false "Sort field (name, slug, created_at, updated_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations [get]
func GetOrganizations(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"is_active": "is_active",
		"owner_id":  "owner_id",
	}
	allowedSortFields := map[string]string{
		"name":       "name",
		"slug":       "slug",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	searchFields := []string{"name", "slug", "code"}

	dbQuery := db.Model(&models.Organization{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count organizations",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var organizations []models.Organization
	if err := dbQuery.Find(&organizations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organizations",
			"message": err.Error(),
		})
		return
	}

	orgResponses := make([]OrganizationResponse, 0, len(organizations))
	for _, org := range organizations {
		orgResponses = append(orgResponses, toOrganizationResponse(org))
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      orgResponses,
			"pagination": pagination,
		},
	})
}

// GetOrganization retrieves a single organization by ID
// @Summary Get organization by ID
// @Description Get detailed information about a specific organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid organization ID format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [get]
func GetOrganization(ctx *gin.Context) {
	orgUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var org models.Organization
	if err := db.First(&org, orgUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organization with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toOrganizationResponse(org),
	})
}

// CreateOrganization creates a new organization
// @Summary Create a new organization
// @Description Create a new organization with the provided information
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created organization"
// @Failure 400 {object} map[string]string "Invalid request data or owner not found"
// @Failure 409 {object} map[string]string "Slug already exists"
// @Router /organizations [post]
func CreateOrganization(ctx *gin.Context) {
	var req CreateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	// Check if owner exists
	var owner models.User
	if err := db.First(&owner, req.OwnerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Owner not found",
				"message": "The specified owner does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate owner",
			"message": err.Error(),
		})
		return
	}

	// Check if slug already exists
	var existingOrg models.Organization
	if err := db.Where("slug = ?", req.Slug).First(&existingOrg).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Slug already exists",
			"message": "An organization with this slug already exists",
		})
		return
	}

	org := models.Organization{
		Name:     req.Name,
		Slug:     req.Slug,
		Code:     req.Code,
		IsActive: true,
		OwnerID:  req.OwnerID,
	}
	if creatorID, ok := currentUserID(ctx); ok {
		org.CreatedBy = &creatorID
	}

	if err := db.Create(&org).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create organization",
			"message": err.Error(),
		})
		return
	}

	// Bind the owner to the new organization
	db.Model(&models.User{}).Where("id = ?", req.OwnerID).Update("organization_id", org.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Organization created successfully",
		"data":    toOrganizationResponse(org),
	})
}

// UpdateOrganization updates an existing organization
// @Summary Update an organization
// @Description Update an existing organization's information
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param organization body UpdateOrganizationRequest true "Updated organization information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated organization"
// @Failure 400 {object} map[string]string "Invalid request data or ID format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 409 {object} map[string]string "Slug already exists"
// @Router /organizations/{id} [put]
func UpdateOrganization(ctx *gin.Context) {
	orgUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var org models.Organization
	if err := db.First(&org, orgUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organization with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	// Check if slug already exists (if slug is being changed)
	if req.Slug != "" && req.Slug != org.Slug {
		var existingOrg models.Organization
		if err := db.Where("slug = ? AND id != ?", req.Slug, orgUUID).First(&existingOrg).Error; err == nil {
			ctx.JSON(http.StatusConflict, gin.H{
				"error":   "Slug already exists",
				"message": "An organization with this slug already exists",
			})
			return
		}
	}

	if req.Name != "" {
		org.Name = req.Name
	}
	if req.Slug != "" {
		org.Slug = req.Slug
	}
	if req.Code != "" {
		org.Code = req.Code
	}
	if req.OwnerID != nil {
		var owner models.User
		if err := db.First(&owner, *req.OwnerID).Error; err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Owner not found",
				"message": "The specified owner does not exist",
			})
			return
		}
		org.OwnerID = *req.OwnerID
	}

	if err := db.Save(&org).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization updated successfully",
		"data":    toOrganizationResponse(org),
	})
}

// DeleteOrganization deactivates an organization (soft delete)
// @Summary Delete an organization
// @Description Soft delete an organization by clearing its active flag
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]string "Invalid organization ID format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [delete]
func DeleteOrganization(ctx *gin.Context) {
	orgUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var org models.Organization
	if err := db.First(&org, orgUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organization with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	// Soft delete: history stays queryable, the row just stops being visible
	if err := db.Model(&org).Update("is_active", false).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization deleted successfully",
	})
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
