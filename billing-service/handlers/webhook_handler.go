package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"time"

	"inspeksi-backend/billing-service/services"
	"inspeksi-backend/shared/clients"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WebhookHandler processes Midtrans payment notifications. The provider
// retries on any non-2xx response, so terminal states must be acknowledged
// even when delivered twice.
type WebhookHandler struct {
	db        *gorm.DB
	serverKey string
}

func NewWebhookHandler(db *gorm.DB, serverKey string) *WebhookHandler {
	return &WebhookHandler{db: db, serverKey: serverKey}
}

// HandleNotification processes a payment status callback
// @Summary Midtrans payment callback
// @Description Verifies the notification signature and applies the payment transition
// @Tags webhooks
// @Accept json
// @Produce json
// @Param notification body services.WebhookNotification true "Midtrans notification"
// @Success 200 {object} map[string]string "Acknowledged"
// @Failure 400 {object} map[string]string "Malformed notification"
// @Failure 401 {object} map[string]string "Invalid signature"
// @Failure 404 {object} map[string]string "Unknown order"
// @Router /webhooks/midtrans [post]
func (h *WebhookHandler) HandleNotification(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read notification body"})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))

	var notification services.WebhookNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Malformed notification",
			"message": err.Error(),
		})
		return
	}

	// Signature first; nothing is written for a tampered notification
	if !services.VerifySignature(notification, h.serverKey) {
		log.Printf("❌ Webhook signature mismatch for order %s", notification.OrderID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var payment billing.Payment
	if err := h.db.Preload("Subscription").Where("order_id = ?", notification.OrderID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}

	// Duplicate delivery of a terminal status: acknowledge without re-applying
	if payment.Status == billing.PaymentPaid || payment.Status == billing.PaymentFailed {
		log.Printf("ℹ️ Duplicate webhook for settled order %s (status %s)", payment.OrderID, payment.Status)
		c.JSON(http.StatusOK, gin.H{"message": "Already processed"})
		return
	}

	bucket := services.ClassifyStatus(notification.TransactionStatus)

	err = h.db.Transaction(func(tx *gorm.DB) error {
		switch bucket {
		case services.StatusSuccess:
			return h.applySuccess(tx, &payment, notification, rawBody)
		case services.StatusFailure:
			return h.applyFailure(tx, &payment, notification, rawBody)
		default:
			// Non-terminal: record what the provider said, change nothing else
			return tx.Model(&payment).Updates(map[string]interface{}{
				"transaction_id": notification.TransactionID,
				"payment_type":   notification.PaymentType,
				"raw_payload":    rawBody,
			}).Error
		}
	})
	if err != nil {
		log.Printf("❌ Webhook processing failed for order %s: %v", notification.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification"})
		return
	}

	if bucket == services.StatusSuccess {
		go h.sendReceipt(payment)
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func (h *WebhookHandler) applySuccess(tx *gorm.DB, payment *billing.Payment, n services.WebhookNotification, rawBody []byte) error {
	now := time.Now()

	if err := tx.Model(payment).Updates(map[string]interface{}{
		"status":         billing.PaymentPaid,
		"transaction_id": n.TransactionID,
		"payment_type":   n.PaymentType,
		"raw_payload":    rawBody,
		"paid_at":        now,
	}).Error; err != nil {
		return err
	}

	var subscription billing.Subscription
	if err := tx.Preload("Plan").First(&subscription, payment.SubscriptionID).Error; err != nil {
		return err
	}

	endsAt := now.AddDate(0, 0, subscription.Plan.DurationDays)
	if err := tx.Model(&subscription).Updates(map[string]interface{}{
		"status":    billing.SubscriptionActive,
		"starts_at": now,
		"ends_at":   endsAt,
	}).Error; err != nil {
		return err
	}

	// The paid plan becomes the organization's current plan
	return tx.Model(&models.Organization{}).
		Where("id = ?", subscription.OrganizationID).
		Update("current_plan_id", subscription.PlanID).Error
}

func (h *WebhookHandler) applyFailure(tx *gorm.DB, payment *billing.Payment, n services.WebhookNotification, rawBody []byte) error {
	if err := tx.Model(payment).Updates(map[string]interface{}{
		"status":         billing.PaymentFailed,
		"transaction_id": n.TransactionID,
		"payment_type":   n.PaymentType,
		"raw_payload":    rawBody,
	}).Error; err != nil {
		return err
	}

	// The organization keeps whatever plan it had; only the subscription expires
	return tx.Model(&billing.Subscription{}).
		Where("id = ?", payment.SubscriptionID).
		Update("status", billing.SubscriptionExpired).Error
}

func (h *WebhookHandler) sendReceipt(payment billing.Payment) {
	var subscription billing.Subscription
	if err := h.db.Preload("Plan").Preload("Organization").First(&subscription, payment.SubscriptionID).Error; err != nil {
		log.Printf("⚠️ Receipt skipped, subscription lookup failed: %v", err)
		return
	}

	var owner models.User
	if err := h.db.First(&owner, subscription.Organization.OwnerID).Error; err != nil {
		log.Printf("⚠️ Receipt skipped, owner lookup failed: %v", err)
		return
	}

	client := clients.NewNotificationClient()
	err := client.SendPaymentReceipt(clients.PaymentReceiptRequest{
		Email:       owner.Email,
		Name:        owner.FirstName + " " + owner.LastName,
		OrderID:     payment.OrderID,
		PlanName:    subscription.Plan.Name,
		GrossAmount: payment.GrossAmount,
		PaidAt:      time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("⚠️ Payment receipt not delivered: %v", err)
	}
}

// HandleLiveness answers provider reachability probes
// @Summary Webhook liveness probe
// @Tags webhooks
// @Produce json
// @Success 200 {object} map[string]string "Endpoint reachable"
// @Router /webhooks/midtrans [get]
func (h *WebhookHandler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "billing",
	})
}
