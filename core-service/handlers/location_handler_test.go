package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
)

func setupCoreTestDB(t *testing.T) *gorm.DB {
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
		&billing.Plan{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	database.DB = db
	return db
}

func setupLocationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/locations/:id", GetLocation)
	router.GET("/api/locations/:id/qr", GetLocationQR)
	router.POST("/api/locations", CreateLocation)
	router.DELETE("/api/locations/:id", DeleteLocation)
	return router
}

func seedHierarchy(t *testing.T, db *gorm.DB, planID *uuid.UUID) (models.Organization, models.Building) {
	t.Helper()

	owner := models.User{Email: "owner@example.com", Password: "x", Status: "ACTIVE"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}

	org := models.Organization{
		Name:          "PT Bersih Selalu",
		Slug:          "bersih-selalu",
		IsActive:      true,
		OwnerID:       owner.ID,
		CurrentPlanID: planID,
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("failed to create organization: %v", err)
	}

	building := models.Building{
		OrganizationID: org.ID,
		Name:           "Tower A",
		Code:           "TWR-A",
		IsActive:       true,
	}
	if err := db.Create(&building).Error; err != nil {
		t.Fatalf("failed to create building: %v", err)
	}
	return org, building
}

func TestCreateAndGetLocation(t *testing.T) {
	db := setupCoreTestDB(t)
	router := setupLocationRouter()
	_, building := seedHierarchy(t, db, nil)

	body, _ := json.Marshal(CreateLocationRequest{
		BuildingID: building.ID,
		Name:       "Restroom 3F West",
		Code:       "TLT-3F-01",
		Floor:      "3",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/locations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var location models.Location
	if err := db.Where("code = ?", "TLT-3F-01").First(&location).Error; err != nil {
		t.Fatalf("created location not found: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/locations/"+location.ID.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Restroom 3F West") {
		t.Error("response does not contain the location name")
	}
}

func TestGetLocationQRPayload(t *testing.T) {
	db := setupCoreTestDB(t)
	router := setupLocationRouter()
	_, building := seedHierarchy(t, db, nil)

	location := models.Location{
		BuildingID: building.ID,
		Name:       "Restroom 1F",
		Code:       "TLT-1F-01",
		IsActive:   true,
	}
	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/locations/"+location.ID.String()+"/qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Payload string `json:"payload"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Data.Payload, "/inspect/"+location.ID.String()) {
		t.Errorf("payload %q does not embed the location id", resp.Data.Payload)
	}
	if !strings.Contains(resp.Data.Payload, "code=TLT-1F-01") {
		t.Errorf("payload %q does not carry the location code", resp.Data.Payload)
	}
}

func TestGetLocationQRNotFound(t *testing.T) {
	setupCoreTestDB(t)
	router := setupLocationRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/locations/"+uuid.NewString()+"/qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteLocationIsSoft(t *testing.T) {
	db := setupCoreTestDB(t)
	router := setupLocationRouter()
	_, building := seedHierarchy(t, db, nil)

	location := models.Location{
		BuildingID: building.ID,
		Name:       "Restroom 2F",
		IsActive:   true,
	}
	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/locations/"+location.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// Row survives with is_active=false
	var after models.Location
	if err := db.First(&after, location.ID).Error; err != nil {
		t.Fatalf("soft-deleted row is gone: %v", err)
	}
	if after.IsActive {
		t.Error("is_active still true after delete")
	}
}

func TestCreateLocationPlanLimit(t *testing.T) {
	db := setupCoreTestDB(t)
	router := setupLocationRouter()

	plan := billing.Plan{Name: "Basic", Slug: "basic", Price: 150000, MaxLocations: 1, IsActive: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("failed to create plan: %v", err)
	}
	_, building := seedHierarchy(t, db, &plan.ID)

	first := models.Location{BuildingID: building.ID, Name: "Restroom 1", IsActive: true}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	body, _ := json.Marshal(CreateLocationRequest{
		BuildingID: building.ID,
		Name:       "Restroom 2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/locations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
}
