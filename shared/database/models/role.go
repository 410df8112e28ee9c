package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role levels are the only authorization primitive. Access to an endpoint
// requiring level M is granted iff the user's role level L satisfies L >= M.
const (
	LevelMember     = 0
	LevelInspector  = 50
	LevelAdmin      = 80
	LevelSuperAdmin = 90
	LevelOwner      = 100
)

type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Slug        string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Level       int       `json:"level" gorm:"not null;default:0"`
	IsDefault   bool      `json:"is_default" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
