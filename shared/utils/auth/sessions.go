package utils

import (
	"context"
	"time"

	"github.com/google/uuid"

	"inspeksi-backend/shared/utils/session"
)

// CreateSession issues a signed token with a fresh random session id and
// mirrors the session record into the store under the configured TTL.
func CreateSession(ctx context.Context, store session.Store, userID uuid.UUID, email string, organizationID, roleID *uuid.UUID, roleLevel int) (string, *session.Session, error) {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return "", nil, err
	}

	token, err := GenerateJWT(userID, email, organizationID, roleID, roleLevel, sessionID)
	if err != nil {
		return "", nil, err
	}

	ttl := GetSessionTTL()
	now := time.Now().UTC()
	sess := &session.Session{
		SessionID: sessionID,
		UserID:    userID.String(),
		Email:     email,
		RoleLevel: roleLevel,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if organizationID != nil {
		sess.OrganizationID = organizationID.String()
	}
	if roleID != nil {
		sess.RoleID = roleID.String()
	}

	if err := store.Set(ctx, sess, ttl); err != nil {
		return "", nil, err
	}

	return token, sess, nil
}

// ValidateSession verifies the token signature and then requires a live,
// non-expired session record. Signature validity alone is not enough; a
// deleted session entry means the token has been revoked.
func ValidateSession(ctx context.Context, store session.Store, tokenString string) (*Claims, *session.Session, error) {
	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return nil, nil, err
	}

	sess, err := store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return nil, nil, session.ErrNotFound
	}

	return claims, sess, nil
}

// RefreshSession re-validates the token, issues a replacement bound to a
// fresh session id with a full TTL, and drops the old session entry. On
// concurrent refreshes the last writer wins; the old entry is only deleted
// after the new one is written.
func RefreshSession(ctx context.Context, store session.Store, tokenString string) (string, *session.Session, error) {
	claims, oldSess, err := ValidateSession(ctx, store, tokenString)
	if err != nil {
		return "", nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", nil, err
	}

	var orgID, roleID *uuid.UUID
	if claims.OrganizationID != "" {
		if id, err := uuid.Parse(claims.OrganizationID); err == nil {
			orgID = &id
		}
	}
	if claims.RoleID != "" {
		if id, err := uuid.Parse(claims.RoleID); err == nil {
			roleID = &id
		}
	}

	newToken, newSess, err := CreateSession(ctx, store, userID, claims.Email, orgID, roleID, claims.RoleLevel)
	if err != nil {
		return "", nil, err
	}

	if err := store.Delete(ctx, oldSess.SessionID); err != nil {
		return "", nil, err
	}

	return newToken, newSess, nil
}
