package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/inspection"
)

func setupTemplateRouter(userID uuid.UUID, level int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	authed := router.Group("/", asUser(userID, level))
	authed.POST("/api/templates", CreateTemplate)
	authed.PUT("/api/templates/:id", UpdateTemplate)
	return router
}

func TestCreateTemplateClearsCompetingDefault(t *testing.T) {
	db := setupInspectionDB(t)
	admin := seedInspector(t, db)
	router := setupTemplateRouter(admin.ID, models.LevelAdmin)

	existing := inspection.Template{
		Name:      "Old Default",
		Config:    []byte(`{"sections":[]}`),
		IsDefault: true,
		IsActive:  true,
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	body, _ := json.Marshal(CreateTemplateRequest{
		Name:      "New Default",
		Config:    json.RawMessage(`{"sections":[{"key":"floor"}]}`),
		IsDefault: true,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	// Exactly one default remains, and it is the new one
	var defaults []inspection.Template
	db.Where("is_default = ?", true).Find(&defaults)
	if len(defaults) != 1 {
		t.Fatalf("default templates = %d, want 1", len(defaults))
	}
	if defaults[0].Name != "New Default" {
		t.Errorf("default template = %q, want New Default", defaults[0].Name)
	}
}

func TestUpdateTemplatePromoteDefault(t *testing.T) {
	db := setupInspectionDB(t)
	admin := seedInspector(t, db)
	router := setupTemplateRouter(admin.ID, models.LevelAdmin)

	first := inspection.Template{Name: "First", Config: []byte(`{}`), IsDefault: true, IsActive: true}
	second := inspection.Template{Name: "Second", Config: []byte(`{}`), IsActive: true}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	makeDefault := true
	body, _ := json.Marshal(UpdateTemplateRequest{IsDefault: &makeDefault})
	req := httptest.NewRequest(http.MethodPut, "/api/templates/"+second.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var firstAfter, secondAfter inspection.Template
	db.First(&firstAfter, first.ID)
	db.First(&secondAfter, second.ID)
	if firstAfter.IsDefault {
		t.Error("old default flag not cleared")
	}
	if !secondAfter.IsDefault {
		t.Error("promoted template is not default")
	}
}
