package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/inspection"
)

func setupInspectionDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Organization{},
		&models.Building{},
		&models.Location{},
		&inspection.Template{},
		&inspection.Record{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	database.DB = db
	return db
}

// asUser fakes the session middleware's context values
func asUser(userID uuid.UUID, level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userEmail", "tester@example.com")
		c.Set("roleLevel", level)
		c.Next()
	}
}

func setupInspectionRouter(userID uuid.UUID, level int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	authed := router.Group("/", asUser(userID, level))
	authed.POST("/api/inspections", CreateInspection)
	authed.GET("/api/inspections", GetInspections)
	authed.GET("/api/inspections/:id", GetInspection)
	authed.PATCH("/api/inspections/:id", UpdateInspection)
	authed.DELETE("/api/inspections/:id", DeleteInspection)
	return router
}

func seedLocation(t *testing.T, db *gorm.DB) models.Location {
	t.Helper()

	owner := models.User{Email: uuid.NewString() + "@example.com", Password: "x", Status: "ACTIVE"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	org := models.Organization{Name: "Org", Slug: "org-" + uuid.NewString(), IsActive: true, OwnerID: owner.ID}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	building := models.Building{OrganizationID: org.ID, Name: "Tower A", IsActive: true}
	if err := db.Create(&building).Error; err != nil {
		t.Fatalf("failed to create building: %v", err)
	}
	location := models.Location{BuildingID: building.ID, Name: "Restroom 3F", Code: "TLT-3F", IsActive: true}
	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("failed to create location: %v", err)
	}
	return location
}

func seedInspector(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: uuid.NewString() + "@example.com", Password: "x", Status: "ACTIVE"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create inspector: %v", err)
	}
	return user
}

func TestCreateInspectionRoundTripsResponses(t *testing.T) {
	db := setupInspectionDB(t)
	location := seedLocation(t, db)
	inspector := seedInspector(t, db)
	router := setupInspectionRouter(inspector.ID, models.LevelInspector)

	responses := `{"floor_clean":5,"mirror":{"streaks":false},"items":["soap","tissue"]}`
	body, _ := json.Marshal(CreateInspectionRequest{
		LocationID:     location.ID,
		InspectionDate: "2025-03-14",
		InspectionTime: "09:30",
		Responses:      json.RawMessage(responses),
		Notes:          "all good",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/inspections", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var record inspection.Record
	if err := db.Where("user_id = ?", inspector.ID).First(&record).Error; err != nil {
		t.Fatalf("created record not found: %v", err)
	}

	// Responses must round-trip byte-for-byte
	if string(record.Responses) != responses {
		t.Errorf("responses = %s, want %s", record.Responses, responses)
	}
	if record.InspectionTime != "09:30" {
		t.Errorf("inspection_time = %q, want 09:30", record.InspectionTime)
	}
}

func TestCreateInspectionBadDate(t *testing.T) {
	db := setupInspectionDB(t)
	location := seedLocation(t, db)
	inspector := seedInspector(t, db)
	router := setupInspectionRouter(inspector.ID, models.LevelInspector)

	body, _ := json.Marshal(CreateInspectionRequest{
		LocationID:     location.ID,
		InspectionDate: "14-03-2025",
		InspectionTime: "09:30",
		Responses:      json.RawMessage(`{}`),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/inspections", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func createRecord(t *testing.T, db *gorm.DB, userID, locationID uuid.UUID) inspection.Record {
	t.Helper()
	record := inspection.Record{
		LocationID:     locationID,
		UserID:         userID,
		InspectionDate: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		InspectionTime: "09:30",
		Responses:      []byte(`{"ok":true}`),
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("failed to create record: %v", err)
	}
	return record
}

func TestGetInspectionOwnerScoping(t *testing.T) {
	db := setupInspectionDB(t)
	location := seedLocation(t, db)
	owner := seedInspector(t, db)
	other := seedInspector(t, db)
	record := createRecord(t, db, owner.ID, location.ID)

	// Owner gets the record
	ownerRouter := setupInspectionRouter(owner.ID, models.LevelInspector)
	req := httptest.NewRequest(http.MethodGet, "/api/inspections/"+record.ID.String(), nil)
	w := httptest.NewRecorder()
	ownerRouter.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// A different inspector gets 404, not 403
	otherRouter := setupInspectionRouter(other.ID, models.LevelInspector)
	req = httptest.NewRequest(http.MethodGet, "/api/inspections/"+record.ID.String(), nil)
	w = httptest.NewRecorder()
	otherRouter.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-owner status = %d, want 404", w.Code)
	}

	// An admin sees it regardless of ownership
	adminRouter := setupInspectionRouter(other.ID, models.LevelAdmin)
	req = httptest.NewRequest(http.MethodGet, "/api/inspections/"+record.ID.String(), nil)
	w = httptest.NewRecorder()
	adminRouter.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestListInspectionsScoping(t *testing.T) {
	db := setupInspectionDB(t)
	location := seedLocation(t, db)
	first := seedInspector(t, db)
	second := seedInspector(t, db)
	createRecord(t, db, first.ID, location.ID)
	createRecord(t, db, second.ID, location.ID)

	type listResponse struct {
		Data struct {
			Items      []inspection.Record `json:"items"`
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}

	// Inspector sees only their own record
	router := setupInspectionRouter(first.ID, models.LevelInspector)
	req := httptest.NewRequest(http.MethodGet, "/api/inspections", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Items) != 1 || resp.Data.Items[0].UserID != first.ID {
		t.Errorf("inspector list = %d items, want exactly their own", len(resp.Data.Items))
	}

	// Admin sees both
	adminRouter := setupInspectionRouter(first.ID, models.LevelAdmin)
	req = httptest.NewRequest(http.MethodGet, "/api/inspections", nil)
	w = httptest.NewRecorder()
	adminRouter.ServeHTTP(w, req)

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Items) != 2 {
		t.Errorf("admin list = %d items, want 2", len(resp.Data.Items))
	}
}

func TestDeleteInspectionIsHard(t *testing.T) {
	db := setupInspectionDB(t)
	location := seedLocation(t, db)
	owner := seedInspector(t, db)
	other := seedInspector(t, db)
	record := createRecord(t, db, owner.ID, location.ID)

	// Non-owner delete is a 404 and leaves the row alone
	otherRouter := setupInspectionRouter(other.ID, models.LevelInspector)
	req := httptest.NewRequest(http.MethodDelete, "/api/inspections/"+record.ID.String(), nil)
	w := httptest.NewRecorder()
	otherRouter.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-owner delete status = %d, want 404", w.Code)
	}

	var count int64
	db.Model(&inspection.Record{}).Where("id = ?", record.ID).Count(&count)
	if count != 1 {
		t.Fatalf("record deleted by non-owner")
	}

	// Owner delete removes the row entirely
	ownerRouter := setupInspectionRouter(owner.ID, models.LevelInspector)
	req = httptest.NewRequest(http.MethodDelete, "/api/inspections/"+record.ID.String(), nil)
	w = httptest.NewRecorder()
	ownerRouter.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete status = %d, want 200: %s", w.Code, w.Body.String())
	}

	db.Model(&inspection.Record{}).Where("id = ?", record.ID).Count(&count)
	if count != 0 {
		t.Error("record still present after owner delete")
	}
}

func TestUpdateInspectionPatchesFields(t *testing.T) {
	db := setupInspectionDB(t)
	location := seedLocation(t, db)
	owner := seedInspector(t, db)
	record := createRecord(t, db, owner.ID, location.ID)
	router := setupInspectionRouter(owner.ID, models.LevelInspector)

	newNotes := "sink leaking"
	body, _ := json.Marshal(UpdateInspectionRequest{
		Responses: json.RawMessage(`{"ok":false}`),
		Notes:     &newNotes,
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/inspections/"+record.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var after inspection.Record
	db.First(&after, record.ID)
	if string(after.Responses) != `{"ok":false}` {
		t.Errorf("responses = %s, want {\"ok\":false}", after.Responses)
	}
	if after.Notes != "sink leaking" {
		t.Errorf("notes = %q, want %q", after.Notes, "sink leaking")
	}
	if after.InspectionTime != "09:30" {
		t.Errorf("inspection_time changed unexpectedly: %q", after.InspectionTime)
	}
}
