package plans

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
)

type stubPlanRepo struct {
	plans   map[uuid.UUID]*models.Plan
	created int
	updated int
}

func newStubPlanRepo() *stubPlanRepo {
	return &stubPlanRepo{plans: map[uuid.UUID]*models.Plan{}}
}

func (s *stubPlanRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	s.created++
	s.plans[plan.ID] = plan
	return nil
}

func (s *stubPlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *plan
	return &copied, nil
}

func (s *stubPlanRepo) Update(ctx context.Context, plan *models.Plan) error {
	s.updated++
	s.plans[plan.ID] = plan
	return nil
}

func (s *stubPlanRepo) List(ctx context.Context, includeInactive bool) ([]models.Plan, error) {
	var rows []models.Plan
	for _, plan := range s.plans {
		if !includeInactive && plan.Status != enums.PlanStatusActive {
			continue
		}
		rows = append(rows, *plan)
	}
	return rows, nil
}

func requireValidationErr(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePlan(t *testing.T) {
	repo := newStubPlanRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatal(err)
	}

	plan, err := svc.Create(context.Background(), CreatePlanInput{
		Name:              "Monthly",
		RenewalPeriodDays: 30,
		Price:             decimal.NewFromInt(1200),
		PriceUSD:          decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.Status != enums.PlanStatusActive {
		t.Fatalf("expected new plans to start active, got %s", plan.Status)
	}
	if got := plan.RegistrationTotalIn(enums.CurrencyUSD); !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected registration total 30 usd, got %s", got)
	}
}

func TestCreatePlanRejectsBadRenewalPeriod(t *testing.T) {
	repo := newStubPlanRepo()
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreatePlanInput{Name: "Broken", RenewalPeriodDays: 0})
	requireValidationErr(t, err)

	_, err = svc.Create(context.Background(), CreatePlanInput{Name: "Broken", RenewalPeriodDays: -7})
	requireValidationErr(t, err)

	if repo.created != 0 {
		t.Fatalf("expected no plans persisted, got %d", repo.created)
	}
}

func TestCreatePlanRejectsNegativePrice(t *testing.T) {
	repo := newStubPlanRepo()
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreatePlanInput{
		Name:              "Negative",
		RenewalPeriodDays: 30,
		Price:             decimal.NewFromInt(-1),
	})
	requireValidationErr(t, err)
}

func TestUpdateAndDeactivatePlan(t *testing.T) {
	repo := newStubPlanRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()

	plan, err := svc.Create(ctx, CreatePlanInput{Name: "Quarterly", RenewalPeriodDays: 90})
	if err != nil {
		t.Fatal(err)
	}

	days := 0
	if _, err := svc.Update(ctx, plan.ID, UpdatePlanInput{RenewalPeriodDays: &days}); err == nil {
		t.Fatal("expected renewal period update to be rejected")
	}

	newPrice := decimal.NewFromInt(45)
	updated, err := svc.Update(ctx, plan.ID, UpdatePlanInput{PriceUSD: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.PriceUSD.Equal(newPrice) {
		t.Fatalf("expected price 45, got %s", updated.PriceUSD)
	}

	retired, err := svc.Deactivate(ctx, plan.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if retired.Status != enums.PlanStatusInactive {
		t.Fatalf("expected inactive status, got %s", retired.Status)
	}

	active, err := svc.List(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected retired plan hidden from active list, got %d rows", len(active))
	}
}

func TestGetPlanNotFound(t *testing.T) {
	repo := newStubPlanRepo()
	svc, _ := NewService(repo)

	_, err := svc.Get(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
