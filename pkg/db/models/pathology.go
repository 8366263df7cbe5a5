package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// Pathology is a catalog entry for a medical condition the staff tracks.
type Pathology struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ClientPathology records that a client has a pathology, with optional
// diagnosis date and trainer notes.
type ClientPathology struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID    uuid.UUID   `gorm:"column:client_id;type:uuid;not null;uniqueIndex:idx_client_pathology"`
	PathologyID uuid.UUID   `gorm:"column:pathology_id;type:uuid;not null;uniqueIndex:idx_client_pathology"`
	DiagnosedOn *types.Date `gorm:"column:diagnosed_on;type:date"`
	Notes       *string     `gorm:"column:notes"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`

	Pathology *Pathology `gorm:"foreignKey:PathologyID"`
}
