package payments

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

type stubPaymentRepo struct {
	created []*models.Payment
	byID    map[uuid.UUID]*models.Payment
	targets map[uuid.UUID]bool
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{
		byID:    map[uuid.UUID]*models.Payment{},
		targets: map[uuid.UUID]bool{},
	}
}

func (s *stubPaymentRepo) addTarget(id uuid.UUID) {
	s.targets[id] = true
}

func (s *stubPaymentRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.created = append(s.created, payment)
	s.byID[payment.ID] = payment
	return nil
}

func (s *stubPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return payment, nil
}

func (s *stubPaymentRepo) ListByTarget(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	for _, payment := range s.created {
		if payment.TargetType == targetType && payment.TargetID == targetID {
			rows = append(rows, *payment)
		}
	}
	return rows, nil
}

func (s *stubPaymentRepo) ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Payment, error) {
	return s.ListByTarget(ctx, enums.PaymentTargetMembership, membershipID)
}

func (s *stubPaymentRepo) TargetExists(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) (bool, error) {
	return s.targets[targetID], nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(repo Repository) *service {
	return &service{repo: repo, tx: passthroughTx{}, tolerance: dec("0.01")}
}

func validInput(target uuid.UUID) RecordPaymentInput {
	return RecordPaymentInput{
		TargetType:         enums.PaymentTargetMembership,
		TargetID:           target,
		Amount:             dec("150.00"),
		Currency:           enums.CurrencyUSD,
		ExchangeRate:       decimal.NewFromInt(1),
		RegisteredByUserID: uuid.New(),
		Methods: []MethodEntry{
			{Kind: enums.PaymentMethodCashUSD, Amount: dec("100.00")},
			{Kind: enums.PaymentMethodCardUSD, Amount: dec("50.00")},
		},
	}
}

func TestRecordPersistsPaymentWithMethods(t *testing.T) {
	repo := newStubPaymentRepo()
	svc := newTestService(repo)

	target := uuid.New()
	repo.addTarget(target)
	payment, err := svc.Record(context.Background(), validInput(target))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted payment, got %d", len(repo.created))
	}
	if len(payment.Methods) != 2 {
		t.Fatalf("expected 2 method rows, got %d", len(payment.Methods))
	}
	if payment.PaymentDate.IsZero() {
		t.Fatal("expected payment date to default to today")
	}
	if payment.SelectedCurrency != enums.CurrencyUSD || !payment.SelectedPrice.Equal(dec("150.00")) {
		t.Fatalf("expected selected quote to default to the target, got %s %s", payment.SelectedPrice, payment.SelectedCurrency)
	}
}

func TestRecordMismatchLeavesNoRows(t *testing.T) {
	repo := newStubPaymentRepo()
	svc := newTestService(repo)

	target := uuid.New()
	repo.addTarget(target)
	input := validInput(target)
	input.Methods = input.Methods[:1]

	_, err := svc.Record(context.Background(), input)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no persisted rows after mismatch, got %d", len(repo.created))
	}
}

func TestRecordRejectsNonexistentTarget(t *testing.T) {
	repo := newStubPaymentRepo()
	svc := newTestService(repo)

	_, err := svc.Record(context.Background(), validInput(uuid.New()))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for dangling target, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no persisted rows, got %d", len(repo.created))
	}
}

func TestRecordInTxMissingOwnerIsIntegrityFault(t *testing.T) {
	repo := newStubPaymentRepo()
	svc := newTestService(repo)

	input := validInput(uuid.Nil)
	_, err := svc.RecordInTx(context.Background(), nil, input)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected integrity fault for missing target, got %v", err)
	}
}

func TestRecordRequiresActingUser(t *testing.T) {
	repo := newStubPaymentRepo()
	svc := newTestService(repo)

	target := uuid.New()
	repo.addTarget(target)
	input := validInput(target)
	input.RegisteredByUserID = uuid.Nil
	_, err := svc.Record(context.Background(), input)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	svc := newTestService(newStubPaymentRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
