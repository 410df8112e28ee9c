package handlers

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"inspeksi-backend/billing-service/services"
	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
)

const testServerKey = "SB-Mid-server-testkey"

func setupBillingDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&billing.Plan{},
		&billing.Subscription{},
		&billing.Payment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	database.DB = db
	return db
}

type billingFixture struct {
	org          models.Organization
	plan         billing.Plan
	subscription billing.Subscription
	payment      billing.Payment
}

func seedCheckout(t *testing.T, db *gorm.DB) billingFixture {
	t.Helper()

	owner := models.User{Email: "owner@example.com", Password: "x", Status: "ACTIVE"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	org := models.Organization{Name: "PT Bersih", Slug: "pt-bersih", IsActive: true, OwnerID: owner.ID}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	plan := billing.Plan{Name: "Standard", Slug: "standard", Price: 450000, DurationDays: 30, IsActive: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("failed to create plan: %v", err)
	}
	subscription := billing.Subscription{OrganizationID: org.ID, PlanID: plan.ID, Status: billing.SubscriptionPending}
	if err := db.Create(&subscription).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	payment := billing.Payment{
		SubscriptionID: subscription.ID,
		OrderID:        "INV-1742000000-a1b2c3d4",
		GrossAmount:    "450000.00",
		Status:         billing.PaymentPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
	return billingFixture{org: org, plan: plan, subscription: subscription, payment: payment}
}

func setupWebhookRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(db, testServerKey)
	router := gin.New()
	router.POST("/api/webhooks/midtrans", handler.HandleNotification)
	router.GET("/api/webhooks/midtrans", handler.HandleLiveness)
	return router
}

func signNotification(n *services.WebhookNotification, serverKey string) {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	n.SignatureKey = hex.EncodeToString(sum[:])
}

func postNotification(t *testing.T, router *gin.Engine, n services.WebhookNotification) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("failed to marshal notification: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/midtrans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookSettlementActivatesSubscription(t *testing.T) {
	db := setupBillingDB(t)
	fx := seedCheckout(t, db)
	router := setupWebhookRouter(db)

	n := services.WebhookNotification{
		OrderID:           fx.payment.OrderID,
		StatusCode:        "200",
		GrossAmount:       fx.payment.GrossAmount,
		TransactionStatus: "settlement",
		TransactionID:     "mt-txn-001",
		PaymentType:       "qris",
	}
	signNotification(&n, testServerKey)

	w := postNotification(t, router, n)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var payment billing.Payment
	db.First(&payment, fx.payment.ID)
	if payment.Status != billing.PaymentPaid {
		t.Errorf("payment status = %q, want paid", payment.Status)
	}
	if payment.PaidAt == nil {
		t.Error("paid_at not set")
	}
	if payment.TransactionID != "mt-txn-001" {
		t.Errorf("transaction_id = %q, want mt-txn-001", payment.TransactionID)
	}

	var subscription billing.Subscription
	db.First(&subscription, fx.subscription.ID)
	if subscription.Status != billing.SubscriptionActive {
		t.Errorf("subscription status = %q, want active", subscription.Status)
	}
	if subscription.StartsAt == nil || subscription.EndsAt == nil {
		t.Fatal("subscription period not set")
	}
	gotDays := int(subscription.EndsAt.Sub(*subscription.StartsAt).Hours() / 24)
	if gotDays != fx.plan.DurationDays {
		t.Errorf("subscription period = %d days, want %d", gotDays, fx.plan.DurationDays)
	}

	var org models.Organization
	db.First(&org, fx.org.ID)
	if org.CurrentPlanID == nil || *org.CurrentPlanID != fx.plan.ID {
		t.Error("organization current_plan_id not set to the paid plan")
	}
}

func TestWebhookExpireFailsSubscriptionOnly(t *testing.T) {
	db := setupBillingDB(t)
	fx := seedCheckout(t, db)
	router := setupWebhookRouter(db)

	n := services.WebhookNotification{
		OrderID:           fx.payment.OrderID,
		StatusCode:        "407",
		GrossAmount:       fx.payment.GrossAmount,
		TransactionStatus: "expire",
	}
	signNotification(&n, testServerKey)

	w := postNotification(t, router, n)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var payment billing.Payment
	db.First(&payment, fx.payment.ID)
	if payment.Status != billing.PaymentFailed {
		t.Errorf("payment status = %q, want failed", payment.Status)
	}

	var subscription billing.Subscription
	db.First(&subscription, fx.subscription.ID)
	if subscription.Status != billing.SubscriptionExpired {
		t.Errorf("subscription status = %q, want expired", subscription.Status)
	}

	// The organization is untouched by a failed payment
	var org models.Organization
	db.First(&org, fx.org.ID)
	if org.CurrentPlanID != nil {
		t.Error("organization current_plan_id set by a failed payment")
	}
}

func TestWebhookTamperedSignatureWritesNothing(t *testing.T) {
	db := setupBillingDB(t)
	fx := seedCheckout(t, db)
	router := setupWebhookRouter(db)

	n := services.WebhookNotification{
		OrderID:           fx.payment.OrderID,
		StatusCode:        "200",
		GrossAmount:       fx.payment.GrossAmount,
		TransactionStatus: "settlement",
	}
	signNotification(&n, testServerKey)
	n.GrossAmount = "1.00" // invalidates the signature

	w := postNotification(t, router, n)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}

	var payment billing.Payment
	db.First(&payment, fx.payment.ID)
	if payment.Status != billing.PaymentPending {
		t.Errorf("payment status = %q, want pending (no writes)", payment.Status)
	}
	var subscription billing.Subscription
	db.First(&subscription, fx.subscription.ID)
	if subscription.Status != billing.SubscriptionPending {
		t.Errorf("subscription status = %q, want pending (no writes)", subscription.Status)
	}
}

func TestWebhookUnknownOrder(t *testing.T) {
	db := setupBillingDB(t)
	seedCheckout(t, db)
	router := setupWebhookRouter(db)

	n := services.WebhookNotification{
		OrderID:           "INV-0000000000-deadbeef",
		StatusCode:        "200",
		GrossAmount:       "450000.00",
		TransactionStatus: "settlement",
	}
	signNotification(&n, testServerKey)

	w := postNotification(t, router, n)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestWebhookDuplicateTerminalDelivery(t *testing.T) {
	db := setupBillingDB(t)
	fx := seedCheckout(t, db)
	router := setupWebhookRouter(db)

	n := services.WebhookNotification{
		OrderID:           fx.payment.OrderID,
		StatusCode:        "200",
		GrossAmount:       fx.payment.GrossAmount,
		TransactionStatus: "settlement",
	}
	signNotification(&n, testServerKey)

	if w := postNotification(t, router, n); w.Code != http.StatusOK {
		t.Fatalf("first delivery status = %d, want 200", w.Code)
	}

	var subscription billing.Subscription
	db.First(&subscription, fx.subscription.ID)
	firstEndsAt := *subscription.EndsAt

	// Second delivery is acknowledged but applies nothing
	if w := postNotification(t, router, n); w.Code != http.StatusOK {
		t.Fatalf("duplicate delivery status = %d, want 200", w.Code)
	}

	db.First(&subscription, fx.subscription.ID)
	if !subscription.EndsAt.Equal(firstEndsAt) {
		t.Error("duplicate delivery re-extended the subscription period")
	}
}

func TestWebhookPendingStatusLeavesSubscription(t *testing.T) {
	db := setupBillingDB(t)
	fx := seedCheckout(t, db)
	router := setupWebhookRouter(db)

	n := services.WebhookNotification{
		OrderID:           fx.payment.OrderID,
		StatusCode:        "201",
		GrossAmount:       fx.payment.GrossAmount,
		TransactionStatus: "pending",
		PaymentType:       "bank_transfer",
	}
	signNotification(&n, testServerKey)

	w := postNotification(t, router, n)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var payment billing.Payment
	db.First(&payment, fx.payment.ID)
	if payment.Status != billing.PaymentPending {
		t.Errorf("payment status = %q, want pending", payment.Status)
	}
	if payment.PaymentType != "bank_transfer" {
		t.Errorf("payment_type = %q, want bank_transfer", payment.PaymentType)
	}

	var subscription billing.Subscription
	db.First(&subscription, fx.subscription.ID)
	if subscription.Status != billing.SubscriptionPending {
		t.Errorf("subscription status = %q, want pending", subscription.Status)
	}
}

func TestWebhookLivenessProbe(t *testing.T) {
	db := setupBillingDB(t)
	router := setupWebhookRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/api/webhooks/midtrans", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
