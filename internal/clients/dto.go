package clients

import (
	"strings"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// CreateClientInput holds the fields the front desk submits for a new client.
type CreateClientInput struct {
	FirstName      string      `json:"first_name" validate:"required,max=120"`
	LastName       string      `json:"last_name" validate:"required,max=120"`
	Identification string      `json:"identification" validate:"required,max=64"`
	Email          *string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string     `json:"phone,omitempty" validate:"omitempty,max=32"`
	BirthDate      *types.Date `json:"birth_date,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
}

// UpdateClientInput carries optional fields; nil means "leave unchanged".
type UpdateClientInput struct {
	FirstName      *string             `json:"first_name,omitempty" validate:"omitempty,max=120"`
	LastName       *string             `json:"last_name,omitempty" validate:"omitempty,max=120"`
	Identification *string             `json:"identification,omitempty" validate:"omitempty,max=64"`
	Email          *string             `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string             `json:"phone,omitempty" validate:"omitempty,max=32"`
	BirthDate      *types.Date         `json:"birth_date,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
	Status         *enums.ClientStatus `json:"status,omitempty"`
}

func (c CreateClientInput) toModel() *models.Client {
	client := &models.Client{
		FirstName:      strings.TrimSpace(c.FirstName),
		LastName:       strings.TrimSpace(c.LastName),
		Identification: strings.TrimSpace(c.Identification),
		Email:          normalizeEmail(c.Email),
		Phone:          c.Phone,
		BirthDate:      c.BirthDate,
		Notes:          c.Notes,
		Status:         enums.ClientStatusActive,
	}
	return client
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
