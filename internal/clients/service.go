package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/pagination"
)

// Service exposes the client operations the controllers rely on.
type Service interface {
	Create(ctx context.Context, input CreateClientInput) (*models.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params) (*ClientList, error)
	Search(ctx context.Context, query string, limit int) ([]models.Client, error)
}

type service struct {
	repo Repository
}

// NewService wires a clients service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateClientInput) (*models.Client, error) {
	client := input.toModel()
	if client.Identification == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identification is required")
	}

	if err := s.repo.Create(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this identification already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create client")
	}
	return client, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}
	return client, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(client, input)
	if client.Identification == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identification is required")
	}
	if client.Status != "" && !client.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid client status %q", client.Status))
	}

	if err := s.repo.Update(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this identification already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update client")
	}
	return client, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete client")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ClientList, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients")
	}
	return list, nil
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]models.Client, error) {
	rows, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search clients")
	}
	return rows, nil
}

func applyUpdate(client *models.Client, input UpdateClientInput) {
	if input.FirstName != nil {
		client.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		client.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Identification != nil {
		client.Identification = strings.TrimSpace(*input.Identification)
	}
	if input.Email != nil {
		client.Email = normalizeEmail(input.Email)
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.BirthDate != nil {
		client.BirthDate = input.BirthDate
	}
	if input.Notes != nil {
		client.Notes = input.Notes
	}
	if input.Status != nil {
		client.Status = *input.Status
	}
}
