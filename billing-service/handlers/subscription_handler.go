package handlers

import (
	"net/http"

	"inspeksi-backend/billing-service/services"
	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
	utils "inspeksi-backend/shared/utils/auth"
	"inspeksi-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutRequest represents request body for starting a subscription purchase
type CheckoutRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
	PlanID         uuid.UUID `json:"plan_id" binding:"required"`
}

// CheckoutResponse carries the provider redirect for the client
type CheckoutResponse struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	OrderID        string    `json:"order_id"`
	GrossAmount    string    `json:"gross_amount"`
	RedirectURL    string    `json:"redirect_url"`
}

// Checkout creates a pending subscription and its payment row
// @Summary Start a subscription checkout
// @Description Creates a pending subscription and payment, returns the payment page URL
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param checkout body CheckoutRequest true "Organization and plan"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Checkout details"
// @Failure 400 {object} map[string]string "Invalid request or unknown organization/plan"
// @Failure 409 {object} map[string]string "Organization already has a pending subscription"
// @Router /subscriptions/checkout [post]
func Checkout(ctx *gin.Context) {
	var req CheckoutRequest
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
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Organization not found",
			"message": "The specified organization does not exist",
		})
		return
	}

	var plan billing.Plan
	if err := db.Where("id = ? AND is_active = ?", req.PlanID, true).First(&plan).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Plan not found",
			"message": "The specified plan does not exist or is inactive",
		})
		return
	}

	// One in-flight checkout per organization
	var pendingCount int64
	db.Model(&billing.Subscription{}).
		Where("organization_id = ? AND status = ?", org.ID, billing.SubscriptionPending).
		Count(&pendingCount)
	if pendingCount > 0 {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Pending subscription exists",
			"message": "Finish or wait out the current checkout before starting another",
		})
		return
	}

	orderID, err := utils.GenerateOrderID()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to generate order ID",
			"message": err.Error(),
		})
		return
	}
	grossAmount := services.FormatGrossAmount(plan.Price)

	subscription := billing.Subscription{
		OrganizationID: org.ID,
		PlanID:         plan.ID,
		Status:         billing.SubscriptionPending,
	}
	if creatorID, ok := currentUserID(ctx); ok {
		subscription.CreatedBy = &creatorID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}
		payment := billing.Payment{
			SubscriptionID: subscription.ID,
			OrderID:        orderID,
			GrossAmount:    grossAmount,
			Status:         billing.PaymentPending,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create subscription",
			"message": err.Error(),
		})
		return
	}

	redirectURL := services.PaymentRedirectURL(config.GetConfig().MidtransRedirectURL, orderID)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Checkout created successfully",
		"data": CheckoutResponse{
			SubscriptionID: subscription.ID,
			OrderID:        orderID,
			GrossAmount:    grossAmount,
			RedirectURL:    redirectURL,
		},
	})
}

// GetSubscriptions lists subscriptions
// @Summary List subscriptions
// @Tags subscriptions
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[organization_id] query string false "Filter by organization ID"
// @Param filters[status] query string false "Filter by status (pending, active, expired)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /subscriptions [get]
func GetSubscriptions(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"organization_id": "organization_id",
		"status":          "status",
	}
	allowedSortFields := map[string]string{
		"created_at": "created_at",
		"ends_at":    "ends_at",
	}

	dbQuery := db.Model(&billing.Subscription{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count subscriptions",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var subscriptions []billing.Subscription
	if err := dbQuery.Preload("Plan").Find(&subscriptions).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve subscriptions",
			"message": err.Error(),
		})
		return
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      subscriptions,
			"pagination": pagination,
		},
	})
}

// GetSubscription retrieves a single subscription by ID
// @Summary Get subscription by ID
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Subscription not found"
// @Router /subscriptions/{id} [get]
func GetSubscription(ctx *gin.Context) {
	subscriptionUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid subscription ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var subscription billing.Subscription
	if err := db.Preload("Plan").Preload("Organization").First(&subscription, subscriptionUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Subscription not found",
				"message": "Subscription with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve subscription",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    subscription,
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
