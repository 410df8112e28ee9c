package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Location struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	BuildingID  uuid.UUID  `json:"building_id" gorm:"type:uuid;not null;index"`
	Name        string     `json:"name" gorm:"size:200;not null"`
	Code        string     `json:"code" gorm:"size:50"`
	Floor       string     `json:"floor" gorm:"size:50"`
	Description string     `json:"description" gorm:"type:text"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	CreatedBy   *uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Building Building `json:"building" gorm:"foreignKey:BuildingID"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
