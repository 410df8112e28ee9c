package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment statuses mirror the three webhook buckets.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Payment struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID      `json:"subscription_id" gorm:"type:uuid;not null;index"`
	OrderID        string         `json:"order_id" gorm:"size:100;uniqueIndex;not null"`
	GrossAmount    string         `json:"gross_amount" gorm:"size:30;not null"` // provider decimal format, e.g. "150000.00"
	Status         string         `json:"status" gorm:"size:20;default:'pending'"`
	TransactionID  string         `json:"transaction_id" gorm:"size:100"`
	PaymentType    string         `json:"payment_type" gorm:"size:50"`
	RawPayload     datatypes.JSON `json:"raw_payload"`
	PaidAt         *time.Time     `json:"paid_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relations
	Subscription Subscription `json:"subscription" gorm:"foreignKey:SubscriptionID"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
