package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/auth"
	sharedmw "inspeksi-backend/shared/middleware"
	utils "inspeksi-backend/shared/utils/auth"
	"inspeksi-backend/shared/utils/session"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &auth.LoginAttempt{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	store := session.NewMemoryStore()
	session.SetStore(store)

	handler := NewAuthHandler(db, store)

	router := gin.New()
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/logout", sharedmw.RequireSession(), handler.Logout)
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/refresh", handler.Refresh)
	router.POST("/api/auth/validate", handler.Validate)
	router.POST("/api/auth/change-password", sharedmw.RequireSession(), handler.ChangePassword)

	return router, db, store
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, level int) models.User {
	t.Helper()

	role := models.Role{Name: "Test Role", Slug: "test-role-" + email, Level: level}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("failed to create role: %v", err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Email:     email,
		Password:  hashed,
		FirstName: "Test",
		LastName:  "User",
		Status:    "ACTIVE",
		RoleID:    &role.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesValidToken(t *testing.T) {
	router, db, store := setupAuthRouter(t)
	createTestUser(t, db, "inspector@example.com", "password123", models.LevelInspector)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "inspector@example.com",
		Password: "password123",
	}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in login response")
	}
	if resp.User.RoleLevel != models.LevelInspector {
		t.Errorf("role level = %d, want %d", resp.User.RoleLevel, models.LevelInspector)
	}

	// Token must validate against the session store
	claims, _, err := utils.ValidateSession(context.Background(), store, resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Email != "inspector@example.com" {
		t.Errorf("claims email = %q, want inspector@example.com", claims.Email)
	}

	// Login must record a successful attempt
	var attempts int64
	db.Model(&auth.LoginAttempt{}).Where("email = ? AND successful = ?", "inspector@example.com", true).Count(&attempts)
	if attempts != 1 {
		t.Errorf("successful login attempts = %d, want 1", attempts)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, db, _ := setupAuthRouter(t)
	createTestUser(t, db, "user@example.com", "password123", models.LevelMember)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "wrongpassword",
	}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	var attempts []auth.LoginAttempt
	db.Where("email = ?", "user@example.com").Find(&attempts)
	if len(attempts) != 1 || attempts[0].FailureType != "wrong_password" {
		t.Errorf("expected one wrong_password attempt, got %+v", attempts)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	router, db, _ := setupAuthRouter(t)
	user := createTestUser(t, db, "inactive@example.com", "password123", models.LevelMember)
	db.Model(&user).Update("status", "INACTIVE")

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "inactive@example.com",
		Password: "password123",
	}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLoginThrottleAfterFailures(t *testing.T) {
	router, db, _ := setupAuthRouter(t)
	createTestUser(t, db, "target@example.com", "password123", models.LevelMember)

	for i := 0; i < 5; i++ {
		postJSON(t, router, "/api/auth/login", LoginRequest{
			Email:    "target@example.com",
			Password: "wrongpassword",
		}, "")
	}

	// Even the correct password is throttled now
	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "target@example.com",
		Password: "password123",
	}, "")

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	router, db, store := setupAuthRouter(t)
	createTestUser(t, db, "user@example.com", "password123", models.LevelMember)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	}, "")
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	w = postJSON(t, router, "/api/auth/logout", gin.H{}, resp.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// Token signature is still valid, but the session record is gone
	if _, _, err := utils.ValidateSession(context.Background(), store, resp.Token); err == nil {
		t.Error("token still validates after logout")
	}
}

func TestRegisterAndDuplicate(t *testing.T) {
	router, db, _ := setupAuthRouter(t)

	defaultRole := models.Role{Name: "Member", Slug: "member", Level: models.LevelMember, IsDefault: true}
	if err := db.Create(&defaultRole).Error; err != nil {
		t.Fatalf("failed to create default role: %v", err)
	}

	req := RegisterRequest{
		Email:     "new@example.com",
		Password:  "securepass1",
		FirstName: "Siti",
		LastName:  "Rahma",
	}

	w := postJSON(t, router, "/api/auth/register", req, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.Where("email = ?", "new@example.com").First(&user).Error; err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.RoleID == nil || *user.RoleID != defaultRole.ID {
		t.Error("registered user did not get the default role")
	}
	if user.Password == "securepass1" {
		t.Error("password stored in plain text")
	}

	w = postJSON(t, router, "/api/auth/register", req, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	w := postJSON(t, router, "/api/auth/register", RegisterRequest{
		Email:     "weak@example.com",
		Password:  "lettersonly",
		FirstName: "A",
		LastName:  "B",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	router, db, store := setupAuthRouter(t)
	createTestUser(t, db, "user@example.com", "password123", models.LevelMember)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	}, "")
	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	w = postJSON(t, router, "/api/auth/refresh", RefreshRequest{Token: login.Token}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var refreshed RefreshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("failed to decode refresh response: %v", err)
	}
	if refreshed.Token == login.Token {
		t.Error("refresh returned the same token")
	}

	// New token validates, old session is revoked
	if _, _, err := utils.ValidateSession(context.Background(), store, refreshed.Token); err != nil {
		t.Errorf("refreshed token does not validate: %v", err)
	}
	if _, _, err := utils.ValidateSession(context.Background(), store, login.Token); err == nil {
		t.Error("old token still validates after refresh")
	}
}

func TestValidateEndpoint(t *testing.T) {
	router, db, _ := setupAuthRouter(t)
	createTestUser(t, db, "user@example.com", "password123", models.LevelAdmin)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	}, "")
	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	w = postJSON(t, router, "/api/auth/validate", ValidateRequest{Token: login.Token}, "")
	var result ValidateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode validate response: %v", err)
	}
	if !result.Valid {
		t.Error("expected token to be valid")
	}
	if result.RoleLevel != models.LevelAdmin {
		t.Errorf("role level = %d, want %d", result.RoleLevel, models.LevelAdmin)
	}

	w = postJSON(t, router, "/api/auth/validate", ValidateRequest{Token: "garbage.token.here"}, "")
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode validate response: %v", err)
	}
	if result.Valid {
		t.Error("expected garbage token to be invalid")
	}
}

func TestChangePassword(t *testing.T) {
	router, db, _ := setupAuthRouter(t)
	createTestUser(t, db, "user@example.com", "password123", models.LevelMember)

	w := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	}, "")
	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	// Wrong current password
	w = postJSON(t, router, "/api/auth/change-password", ChangePasswordRequest{
		CurrentPassword: "nope",
		NewPassword:     "newsecure1",
	}, login.Token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	// Correct current password
	w = postJSON(t, router, "/api/auth/change-password", ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newsecure1",
	}, login.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var user models.User
	db.Where("email = ?", "user@example.com").First(&user)
	if !utils.CheckPasswordHash("newsecure1", user.Password) {
		t.Error("new password does not verify after change")
	}
}
