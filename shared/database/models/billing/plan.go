package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Slug         string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Price        int64     `json:"price" gorm:"not null"` // IDR, whole rupiah
	DurationDays int       `json:"duration_days" gorm:"not null;default:30"`
	MaxBuildings int       `json:"max_buildings" gorm:"default:0"` // 0 = unlimited
	MaxLocations int       `json:"max_locations" gorm:"default:0"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
