package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inspeksi-backend/shared/database/models"
)

// Subscription statuses. The webhook is the only writer of Active/Expired.
const (
	SubscriptionPending = "pending"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

type Subscription struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	PlanID         uuid.UUID  `json:"plan_id" gorm:"type:uuid;not null"`
	Status         string     `json:"status" gorm:"size:20;default:'pending'"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	CreatedBy      *uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization models.Organization `json:"organization" gorm:"foreignKey:OrganizationID"`
	Plan         Plan                `json:"plan" gorm:"foreignKey:PlanID"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
