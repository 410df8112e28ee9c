package services

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Transaction status buckets. Every provider status falls into exactly one.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusPending = "pending"
)

// WebhookNotification is the payload Midtrans posts to the callback endpoint.
// Fields not needed for processing are kept in the raw body.
type WebhookNotification struct {
	OrderID           string `json:"order_id" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// VerifySignature checks the notification's signature key:
// hex(SHA-512(order_id + status_code + gross_amount + server_key)).
// Comparison is constant time.
func VerifySignature(n WebhookNotification, serverKey string) bool {
	payload := n.OrderID + n.StatusCode + n.GrossAmount + serverKey
	sum := sha512.Sum512([]byte(payload))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}

// ClassifyStatus maps a provider transaction status onto one of the three
// buckets. capture counts as success (card flow); anything unrecognized is
// treated as pending so a later callback can settle it.
func ClassifyStatus(transactionStatus string) string {
	switch transactionStatus {
	case "settlement", "capture":
		return StatusSuccess
	case "deny", "cancel", "expire":
		return StatusFailure
	default:
		return StatusPending
	}
}

// FormatGrossAmount renders a whole-rupiah price in the provider's decimal
// format ("150000.00").
func FormatGrossAmount(price int64) string {
	return strconv.FormatInt(price, 10) + ".00"
}

// PaymentRedirectURL builds the hosted payment page URL for an order
func PaymentRedirectURL(baseURL, orderID string) string {
	return fmt.Sprintf("%s?order_id=%s", baseURL, orderID)
}
