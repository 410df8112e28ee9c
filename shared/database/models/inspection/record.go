package inspection

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"inspeksi-backend/shared/database/models"
)

// Record is a single submitted inspection. Responses is an opaque JSON blob;
// no schema is enforced beyond what the client sends, and it must round-trip
// byte-for-byte.
type Record struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	LocationID     uuid.UUID      `json:"location_id" gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	TemplateID     *uuid.UUID     `json:"template_id" gorm:"type:uuid"`
	InspectionDate time.Time      `json:"inspection_date" gorm:"not null"`
	InspectionTime string         `json:"inspection_time" gorm:"size:5"`
	Responses      datatypes.JSON `json:"responses" gorm:"not null"`
	PhotoURLs      datatypes.JSON `json:"photo_urls"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relations
	Location models.Location `json:"location" gorm:"foreignKey:LocationID"`
	User     models.User     `json:"user" gorm:"foreignKey:UserID"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Record) TableName() string {
	return "inspection_records"
}
