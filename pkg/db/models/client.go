package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// Client is a gym member record kept by the front desk.
type Client struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName      string             `gorm:"column:first_name;not null"`
	LastName       string             `gorm:"column:last_name;not null"`
	Identification string             `gorm:"column:identification;not null;uniqueIndex"`
	Email          *string            `gorm:"column:email"`
	Phone          *string            `gorm:"column:phone"`
	BirthDate      *types.Date        `gorm:"column:birth_date;type:date"`
	Notes          *string            `gorm:"column:notes"`
	Status         enums.ClientStatus `gorm:"column:status;type:client_status;not null;default:'active'"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`

	Memberships []Membership `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// FullName joins the name parts for display and document rendering.
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// AgeOn returns the client's age in whole years on the given date, or -1 when
// no birth date is recorded.
func (c *Client) AgeOn(asOf types.Date) int {
	if c.BirthDate == nil || c.BirthDate.IsZero() {
		return -1
	}
	birth := c.BirthDate.Time()
	ref := asOf.Time()
	years := ref.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	return years
}
