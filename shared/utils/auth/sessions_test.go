package utils

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"inspeksi-backend/shared/utils/session"
)

func TestCreateAndValidateSession(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	userID := uuid.New()
	orgID := uuid.New()
	roleID := uuid.New()

	token, sess, err := CreateSession(ctx, store, userID, "inspector@example.com", &orgID, &roleID, 50)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if token == "" {
		t.Fatal("CreateSession() returned empty token")
	}
	if sess.SessionID == "" {
		t.Fatal("CreateSession() returned empty session id")
	}

	claims, got, err := ValidateSession(ctx, store, token)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if claims.UserID != userID.String() {
		t.Errorf("claims.UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.RoleLevel != 50 {
		t.Errorf("claims.RoleLevel = %d, want 50", claims.RoleLevel)
	}
	if got.SessionID != sess.SessionID {
		t.Errorf("session id = %s, want %s", got.SessionID, sess.SessionID)
	}
}

func TestValidateSessionRevoked(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	token, sess, err := CreateSession(ctx, store, uuid.New(), "user@example.com", nil, nil, 0)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	// Revocation is just cache-entry deletion
	if err := store.Delete(ctx, sess.SessionID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, _, err := ValidateSession(ctx, store, token); err != session.ErrNotFound {
		t.Errorf("ValidateSession() after revoke error = %v, want ErrNotFound", err)
	}
}

func TestValidateSessionBadToken(t *testing.T) {
	store := session.NewMemoryStore()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"tampered", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJ1c2VyX2lkIjoieCJ9.invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ValidateSession(context.Background(), store, tt.token); err == nil {
				t.Error("ValidateSession() expected error, got nil")
			}
		})
	}
}

func TestRefreshSessionRotatesID(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	userID := uuid.New()
	token, oldSess, err := CreateSession(ctx, store, userID, "user@example.com", nil, nil, 80)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	newToken, newSess, err := RefreshSession(ctx, store, token)
	if err != nil {
		t.Fatalf("RefreshSession() error = %v", err)
	}
	if newSess.SessionID == oldSess.SessionID {
		t.Error("RefreshSession() did not rotate session id")
	}
	if newSess.UserID != userID.String() || newSess.RoleLevel != 80 {
		t.Errorf("RefreshSession() lost claims: %+v", newSess)
	}

	// Old session must be gone, new token must validate
	if _, err := store.Get(ctx, oldSess.SessionID); err != session.ErrNotFound {
		t.Errorf("old session still present, err = %v", err)
	}
	if _, _, err := ValidateSession(ctx, store, newToken); err != nil {
		t.Errorf("ValidateSession() on refreshed token error = %v", err)
	}
}
