package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string     `json:"name" gorm:"size:200;not null"`
	Slug          string     `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Code          string     `json:"code" gorm:"size:50"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	OwnerID       uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null"`
	CurrentPlanID *uuid.UUID `json:"current_plan_id" gorm:"type:uuid"`
	CreatedBy     *uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
