package services

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func signedNotification(serverKey string) WebhookNotification {
	n := WebhookNotification{
		OrderID:           "INV-1742000000-a1b2c3d4",
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		TransactionStatus: "settlement",
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	n.SignatureKey = hex.EncodeToString(sum[:])
	return n
}

func TestVerifySignature(t *testing.T) {
	const serverKey = "SB-Mid-server-testkey"

	valid := signedNotification(serverKey)
	if !VerifySignature(valid, serverKey) {
		t.Error("valid signature rejected")
	}

	tampered := valid
	tampered.GrossAmount = "999999.00"
	if VerifySignature(tampered, serverKey) {
		t.Error("tampered gross amount accepted")
	}

	wrongKey := signedNotification("other-key")
	if VerifySignature(wrongKey, serverKey) {
		t.Error("signature built with wrong server key accepted")
	}

	empty := valid
	empty.SignatureKey = ""
	if VerifySignature(empty, serverKey) {
		t.Error("empty signature accepted")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"settlement", StatusSuccess},
		{"capture", StatusSuccess},
		{"deny", StatusFailure},
		{"cancel", StatusFailure},
		{"expire", StatusFailure},
		{"pending", StatusPending},
		{"authorize", StatusPending},
		{"", StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := ClassifyStatus(tt.status); got != tt.want {
				t.Errorf("ClassifyStatus(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestFormatGrossAmount(t *testing.T) {
	if got := FormatGrossAmount(150000); got != "150000.00" {
		t.Errorf("FormatGrossAmount(150000) = %q, want 150000.00", got)
	}
}
