package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is the metadata row for a file stored against a client (ID
// scans, medical certificates, signed contracts). The binary lives in object
// storage under ObjectKey.
type Attachment struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID         uuid.UUID `gorm:"column:client_id;type:uuid;not null;index"`
	ObjectKey        string    `gorm:"column:object_key;not null;uniqueIndex"`
	FileName         string    `gorm:"column:file_name;not null"`
	ContentType      string    `gorm:"column:content_type;not null"`
	SizeBytes        int64     `gorm:"column:size_bytes;not null;default:0"`
	UploadedByUserID uuid.UUID `gorm:"column:uploaded_by_user_id;type:uuid;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
