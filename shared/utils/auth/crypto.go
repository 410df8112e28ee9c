package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain text password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain text password with a bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRandomToken returns a hex string of the given byte length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateSessionID returns a fresh random session identifier
func GenerateSessionID() (string, error) {
	return GenerateRandomToken(32)
}

// GenerateOrderID builds a provider-facing payment order id
func GenerateOrderID() (string, error) {
	randomPart, err := GenerateRandomToken(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%s", time.Now().Unix(), randomPart), nil
}
