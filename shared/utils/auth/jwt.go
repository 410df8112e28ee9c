package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inspeksi-backend/shared/config"
)

type Claims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id,omitempty"`
	RoleID         string `json:"role_id,omitempty"`
	RoleLevel      int    `json:"role_level"`
	SessionID      string `json:"session_id"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte(getJWTSecret())

func getJWTSecret() string {
	cfg := config.GetConfig()
	if cfg.JWTSecret == "" {
		return "fallback-secret-key-for-development"
	}
	return cfg.JWTSecret
}

// GetSessionTTL gets the session lifetime from config
func GetSessionTTL() time.Duration {
	return time.Duration(config.GetConfig().GetSessionTTLHours()) * time.Hour
}

// GenerateJWT signs a token carrying the user's identity, role level and the
// session id that anchors the token to its Redis session record.
func GenerateJWT(userID uuid.UUID, email string, organizationID, roleID *uuid.UUID, roleLevel int, sessionID string) (string, error) {
	claims := Claims{
		UserID:    userID.String(),
		Email:     email,
		RoleLevel: roleLevel,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(GetSessionTTL())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	if organizationID != nil {
		claims.OrganizationID = organizationID.String()
	}
	if roleID != nil {
		claims.RoleID = roleID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWT verifies the token signature and returns its claims. This is
// only the cryptographic half of validation; callers that guard endpoints
// must also require a live session record (see ValidateSession).
func ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
