package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models/notification"
)

func setupNotificationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&notification.Notification{}, &notification.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	database.DB = db
	return db
}

func setupNotificationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/notifications", SendNotification)
	router.POST("/api/notifications/inspection-alert", SendInspectionAlert)
	router.GET("/api/notifications", GetNotifications)
	router.POST("/api/notifications/:id/read", MarkNotificationRead)
	router.GET("/api/audit-logs", GetAuditLogs)
	return router
}

func postBody(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendNotificationStoresRecord(t *testing.T) {
	db := setupNotificationDB(t)
	router := setupNotificationRouter()

	userID := uuid.New()
	w := postBody(t, router, "/api/notifications", SendNotificationRequest{
		UserID:  &userID,
		Type:    "subscription_expiring",
		Level:   notification.NotificationLevelWarning,
		Title:   "Langganan Berakhir",
		Message: "Langganan Anda berakhir dalam 3 hari",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var stored notification.Notification
	if err := db.First(&stored, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("notification not stored: %v", err)
	}
	if stored.Level != notification.NotificationLevelWarning {
		t.Errorf("level = %q, want warning", stored.Level)
	}
	if stored.IsRead {
		t.Error("new notification already marked read")
	}
}

func TestSendNotificationDefaultsLevel(t *testing.T) {
	db := setupNotificationDB(t)
	router := setupNotificationRouter()

	w := postBody(t, router, "/api/notifications", SendNotificationRequest{
		Type:    "announcement",
		Title:   "Pemeliharaan",
		Message: "Sistem akan dipelihara malam ini",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var stored notification.Notification
	if err := db.First(&stored, "type = ?", "announcement").Error; err != nil {
		t.Fatalf("notification not stored: %v", err)
	}
	if stored.Level != notification.NotificationLevelInfo {
		t.Errorf("level = %q, want info", stored.Level)
	}
}

func TestSendInspectionAlertStoresRecord(t *testing.T) {
	db := setupNotificationDB(t)
	router := setupNotificationRouter()

	userID := uuid.New()
	recordID := uuid.New()
	w := postBody(t, router, "/api/notifications/inspection-alert", InspectionAlertRequest{
		UserID:       userID.String(),
		LocationName: "Toilet Lantai 2",
		Inspector:    "Budi",
		RecordID:     recordID.String(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var stored notification.Notification
	if err := db.First(&stored, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("notification not stored: %v", err)
	}
	if stored.Type != "inspection_submitted" {
		t.Errorf("type = %q, want inspection_submitted", stored.Type)
	}
	if stored.EntityID == nil || *stored.EntityID != recordID {
		t.Error("entity_id does not reference the inspection record")
	}
}

func TestSendInspectionAlertBadUserID(t *testing.T) {
	setupNotificationDB(t)
	router := setupNotificationRouter()

	w := postBody(t, router, "/api/notifications/inspection-alert", InspectionAlertRequest{
		UserID:       "not-a-uuid",
		LocationName: "Toilet Lantai 2",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetNotificationsFiltersByUser(t *testing.T) {
	db := setupNotificationDB(t)
	router := setupNotificationRouter()

	alice := uuid.New()
	bob := uuid.New()
	for i, userID := range []uuid.UUID{alice, alice, bob} {
		uid := userID
		n := notification.Notification{
			UserID:  &uid,
			Type:    "test",
			Level:   notification.NotificationLevelInfo,
			Title:   fmt.Sprintf("Notification %d", i),
			Message: "m",
		}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("failed to seed notification: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?user_id="+alice.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Items []notification.Notification `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Data.Items))
	}
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupNotificationDB(t)
	router := setupNotificationRouter()

	userID := uuid.New()
	n := notification.Notification{
		UserID:  &userID,
		Type:    "test",
		Level:   notification.NotificationLevelInfo,
		Title:   "T",
		Message: "m",
	}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("failed to seed notification: %v", err)
	}

	w := postBody(t, router, "/api/notifications/"+n.ID.String()+"/read", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var updated notification.Notification
	db.First(&updated, n.ID)
	if !updated.IsRead {
		t.Error("notification not marked read")
	}
	if updated.ReadAt == nil {
		t.Error("read_at not set")
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	setupNotificationDB(t)
	router := setupNotificationRouter()

	w := postBody(t, router, "/api/notifications/"+uuid.NewString()+"/read", gin.H{})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetAuditLogsFiltersByStatus(t *testing.T) {
	db := setupNotificationDB(t)
	router := setupNotificationRouter()

	for _, code := range []int{200, 200, 500} {
		entry := notification.AuditLog{
			Method:     "GET",
			Path:       "/api/inspections",
			StatusCode: code,
			IPAddress:  "10.0.0.1",
			Duration:   12,
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("failed to seed audit log: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?status_code=500", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Items []notification.AuditLog `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Items) != 1 {
		t.Errorf("items = %d, want 1", len(resp.Data.Items))
	}
}
