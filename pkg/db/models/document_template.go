package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentTemplate is stored text with named placeholders, rendered against
// a client's current data (contracts, medical waivers, status letters).
type DocumentTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Body      string    `gorm:"column:body;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
