package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
)

// Service exposes the plan catalog operations.
type Service interface {
	Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePlanInput) (*models.Plan, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	List(ctx context.Context, includeInactive bool) ([]models.Plan, error)
}

type service struct {
	repo Repository
}

// NewService wires a plans service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plans repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	plan := input.toModel()
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plan")
	}
	return plan, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	return plan, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdatePlanInput) (*models.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		plan.Name = strings.TrimSpace(*input.Name)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid plan status %q", *input.Status))
		}
		plan.Status = *input.Status
	}
	if input.RenewalPeriodDays != nil {
		plan.RenewalPeriodDays = *input.RenewalPeriodDays
	}
	if input.Price != nil {
		plan.Price = *input.Price
	}
	if input.PriceUSD != nil {
		plan.PriceUSD = *input.PriceUSD
	}
	if input.SubscriptionPrice != nil {
		plan.SubscriptionPrice = *input.SubscriptionPrice
	}
	if input.SubscriptionPriceUSD != nil {
		plan.SubscriptionPriceUSD = *input.SubscriptionPriceUSD
	}

	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan")
	}
	return plan, nil
}

// Deactivate retires a plan from sale. Existing memberships keep their
// snapshotted terms.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	status := enums.PlanStatusInactive
	return s.Update(ctx, id, UpdatePlanInput{Status: &status})
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Plan, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	return rows, nil
}

func validatePlan(plan *models.Plan) error {
	if plan.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	if plan.RenewalPeriodDays < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "renewal period must be at least one day")
	}
	if plan.Price.IsNegative() || plan.PriceUSD.IsNegative() ||
		plan.SubscriptionPrice.IsNegative() || plan.SubscriptionPriceUSD.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan prices cannot be negative")
	}
	return nil
}
