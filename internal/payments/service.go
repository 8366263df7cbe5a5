package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/config"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/money"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// RecordPaymentInput describes one payment to record against a membership or
// renewal. SelectedPrice/SelectedCurrency default to the target amount and
// currency when left zero.
type RecordPaymentInput struct {
	TargetType         enums.PaymentTargetType `json:"target_type" validate:"required"`
	TargetID           uuid.UUID               `json:"target_id" validate:"required"`
	Amount             decimal.Decimal         `json:"amount" validate:"required"`
	Currency           enums.Currency          `json:"currency" validate:"required"`
	ExchangeRate       decimal.Decimal         `json:"exchange_rate"`
	SelectedPrice      decimal.Decimal         `json:"selected_price"`
	SelectedCurrency   enums.Currency          `json:"selected_currency"`
	PaymentDate        types.Date              `json:"payment_date"`
	Reference          *string                 `json:"reference"`
	Notes              *string                 `json:"notes"`
	RegisteredByUserID uuid.UUID               `json:"-"`
	Methods            []MethodEntry           `json:"methods" validate:"required"`
}

// Service records and reads payments.
type Service interface {
	Record(ctx context.Context, input RecordPaymentInput) (*models.Payment, error)
	RecordInTx(ctx context.Context, tx *gorm.DB, input RecordPaymentInput) (*models.Payment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListForTarget(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) ([]models.Payment, error)
	ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Payment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo      Repository
	tx        txRunner
	tolerance decimal.Decimal
}

// ServiceParams bundles the payments service dependencies.
type ServiceParams struct {
	Repo   Repository
	DB     *db.Client
	Config config.PaymentsConfig
}

// NewService wires a payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.DB,
		tolerance: params.Config.Tolerance(),
	}, nil
}

// Record allocates and persists a payment in its own transaction. Unlike
// RecordInTx, the target is caller-supplied rather than created alongside
// the payment, so its row must already exist.
func (s *service) Record(ctx context.Context, input RecordPaymentInput) (*models.Payment, error) {
	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.verifyTarget(ctx, tx, input); err != nil {
			return err
		}
		var err error
		payment, err = s.RecordInTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) verifyTarget(ctx context.Context, tx *gorm.DB, input RecordPaymentInput) error {
	if !input.TargetType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment target type %q", input.TargetType))
	}
	exists, err := s.repo.WithTx(tx).TargetExists(ctx, input.TargetType, input.TargetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify payment target")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment target %s not found", input.TargetType))
	}
	return nil
}

// RecordInTx allocates and persists a payment inside the caller's
// transaction. Renewal and registration flows use this so that the payment
// commits or rolls back together with the membership rows.
func (s *service) RecordInTx(ctx context.Context, tx *gorm.DB, input RecordPaymentInput) (*models.Payment, error) {
	payment, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment")
	}
	return payment, nil
}

func (s *service) build(input RecordPaymentInput) (*models.Payment, error) {
	if input.RegisteredByUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registered_by user is required")
	}

	allocation, err := Allocate(AllocationInput{
		TargetAmount:   input.Amount,
		TargetCurrency: input.Currency,
		ExchangeRate:   input.ExchangeRate,
		Methods:        input.Methods,
		Tolerance:      s.tolerance,
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TargetType:         input.TargetType,
		TargetID:           input.TargetID,
		Amount:             allocation.Amount,
		Currency:           allocation.Currency,
		ExchangeRate:       input.ExchangeRate,
		SelectedPrice:      input.SelectedPrice,
		SelectedCurrency:   input.SelectedCurrency,
		PaymentDate:        input.PaymentDate,
		Reference:          input.Reference,
		Notes:              input.Notes,
		RegisteredByUserID: input.RegisteredByUserID,
		Methods:            allocation.Methods,
	}
	if !payment.ExchangeRate.IsPositive() {
		payment.ExchangeRate = money.IdentityRate
	}
	if payment.SelectedPrice.IsZero() {
		payment.SelectedPrice = allocation.Amount
	}
	if payment.SelectedCurrency == "" {
		payment.SelectedCurrency = allocation.Currency
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = types.Today()
	}

	// A payment without a valid owner is an integrity fault, not a user
	// error: orchestration always supplies the target.
	if err := payment.ValidateTarget(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "payment target integrity violation")
	}
	return payment, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}
	return payment, nil
}

func (s *service) ListForTarget(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) ([]models.Payment, error) {
	if !targetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment target type %q", targetType))
	}
	rows, err := s.repo.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return rows, nil
}

// ListForMembership folds the membership's registration payment and all of
// its renewal payments into one history.
func (s *service) ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.repo.ListForMembership(ctx, membershipID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list membership payments")
	}
	return rows, nil
}
