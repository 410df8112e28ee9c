package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"inspeksi-backend/shared/config"
)

// NotificationClient handles communication with notification service
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL: cfg.NotificationServiceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PaymentReceiptRequest carries a payment confirmation email
type PaymentReceiptRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	OrderID     string `json:"order_id"`
	PlanName    string `json:"plan_name"`
	GrossAmount string `json:"gross_amount"`
	PaidAt      string `json:"paid_at"`
}

// InspectionAlertRequest carries a new-inspection push to org admins
type InspectionAlertRequest struct {
	UserID       string `json:"user_id"`
	LocationName string `json:"location_name"`
	Inspector    string `json:"inspector"`
	RecordID     string `json:"record_id"`
}

// SendPaymentReceipt asks the notification service to email a receipt
func (nc *NotificationClient) SendPaymentReceipt(req PaymentReceiptRequest) error {
	return nc.post("/api/notifications/email/payment-receipt", req)
}

// SendInspectionAlert pushes a real-time new-inspection notification
func (nc *NotificationClient) SendInspectionAlert(req InspectionAlertRequest) error {
	return nc.post("/api/notifications/inspection-alert", req)
}

func (nc *NotificationClient) post(path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := nc.httpClient.Post(nc.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("notification service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}
	return nil
}
