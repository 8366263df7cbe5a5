package documents

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

// TemplateInput creates or replaces a template.
type TemplateInput struct {
	Name string `json:"name" validate:"required"`
	Body string `json:"body" validate:"required"`
}

// RenderedDocument is the output of rendering a template for a client.
type RenderedDocument struct {
	TemplateID   uuid.UUID `json:"template_id"`
	TemplateName string    `json:"template_name"`
	ClientID     uuid.UUID `json:"client_id"`
	Content      string    `json:"content"`
}

// Service manages document templates and renders them against client data.
type Service interface {
	Create(ctx context.Context, input TemplateInput) (*models.DocumentTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DocumentTemplate, error)
	Update(ctx context.Context, id uuid.UUID, input TemplateInput) (*models.DocumentTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.DocumentTemplate, error)
	Render(ctx context.Context, templateID, clientID uuid.UUID) (*RenderedDocument, error)
}

type clientStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type membershipLister interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Membership, error)
}

type service struct {
	repo        Repository
	clients     clientStore
	memberships membershipLister
	now         func() types.Date
}

// ServiceParams bundles the documents service dependencies. Now is optional
// and defaults to the current UTC calendar day.
type ServiceParams struct {
	Repo        Repository
	Clients     clientStore
	Memberships membershipLister
	Now         func() types.Date
}

// NewService wires a documents service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("documents repository is required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client store is required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("membership lister is required")
	}
	now := params.Now
	if now == nil {
		now = types.Today
	}
	return &service{
		repo:        params.Repo,
		clients:     params.Clients,
		memberships: params.Memberships,
		now:         now,
	}, nil
}

func (s *service) Create(ctx context.Context, input TemplateInput) (*models.DocumentTemplate, error) {
	template, err := buildTemplate(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, template); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a template with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create template")
	}
	return template, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DocumentTemplate, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load template")
	}
	return template, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input TemplateInput) (*models.DocumentTemplate, error) {
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := buildTemplate(input)
	if err != nil {
		return nil, err
	}
	template.Name = updated.Name
	template.Body = updated.Body

	if err := s.repo.Update(ctx, template); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a template with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update template")
	}
	return template, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete template")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.DocumentTemplate, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list templates")
	}
	return rows, nil
}

// Render fills the template with the client's data. The most recently
// created membership supplies the membership and plan placeholders.
func (s *service) Render(ctx context.Context, templateID, clientID uuid.UUID) (*RenderedDocument, error) {
	template, err := s.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}

	rc := RenderContext{Client: client, Today: s.now()}
	rows, err := s.memberships.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load memberships")
	}
	if len(rows) > 0 {
		rc.Membership = &rows[0]
		rc.Plan = rows[0].Plan
	}

	return &RenderedDocument{
		TemplateID:   template.ID,
		TemplateName: template.Name,
		ClientID:     client.ID,
		Content:      Render(template.Body, rc),
	}, nil
}

func buildTemplate(input TemplateInput) (*models.DocumentTemplate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template name is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template body is required")
	}
	return &models.DocumentTemplate{Name: name, Body: input.Body}, nil
}
