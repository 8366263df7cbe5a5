package pathologies

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
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// CreatePathologyInput adds an entry to the catalog.
type CreatePathologyInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// AttachInput links a catalog pathology to a client.
type AttachInput struct {
	PathologyID uuid.UUID   `json:"pathology_id" validate:"required"`
	DiagnosedOn *types.Date `json:"diagnosed_on"`
	Notes       *string     `json:"notes"`
}

// Service exposes the pathology catalog and per-client tracking.
type Service interface {
	Create(ctx context.Context, input CreatePathologyInput) (*models.Pathology, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Pathology, error)
	Update(ctx context.Context, id uuid.UUID, input CreatePathologyInput) (*models.Pathology, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Pathology, error)

	Attach(ctx context.Context, clientID uuid.UUID, input AttachInput) (*models.ClientPathology, error)
	Detach(ctx context.Context, clientID, pathologyID uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientPathology, error)
}

type clientStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type service struct {
	repo    Repository
	clients clientStore
}

// ServiceParams bundles the pathologies service dependencies.
type ServiceParams struct {
	Repo    Repository
	Clients clientStore
}

// NewService wires a pathologies service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("pathologies repository is required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client store is required")
	}
	return &service{repo: params.Repo, clients: params.Clients}, nil
}

func (s *service) Create(ctx context.Context, input CreatePathologyInput) (*models.Pathology, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pathology name is required")
	}

	pathology := &models.Pathology{Name: name, Description: input.Description}
	if err := s.repo.Create(ctx, pathology); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pathology with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pathology")
	}
	return pathology, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Pathology, error) {
	pathology, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pathology not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pathology")
	}
	return pathology, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CreatePathologyInput) (*models.Pathology, error) {
	pathology, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pathology name is required")
	}
	pathology.Name = name
	pathology.Description = input.Description

	if err := s.repo.Update(ctx, pathology); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pathology with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update pathology")
	}
	return pathology, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pathology")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Pathology, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pathologies")
	}
	return rows, nil
}

func (s *service) Attach(ctx context.Context, clientID uuid.UUID, input AttachInput) (*models.ClientPathology, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}
	if _, err := s.Get(ctx, input.PathologyID); err != nil {
		return nil, err
	}

	link := &models.ClientPathology{
		ClientID:    clientID,
		PathologyID: input.PathologyID,
		DiagnosedOn: input.DiagnosedOn,
		Notes:       input.Notes,
	}
	if err := s.repo.Attach(ctx, link); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this pathology is already recorded for the client")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach pathology")
	}
	return link, nil
}

func (s *service) Detach(ctx context.Context, clientID, pathologyID uuid.UUID) error {
	affected, err := s.repo.Detach(ctx, clientID, pathologyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detach pathology")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pathology is not recorded for the client")
	}
	return nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientPathology, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list client pathologies")
	}
	return rows, nil
}
