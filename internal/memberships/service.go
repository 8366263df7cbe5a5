package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/internal/payments"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// Service exposes the membership lifecycle: registration, renewal and the
// read-side expiration queries.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Membership, error)
	Renew(ctx context.Context, membershipID uuid.UUID, input RenewInput) (*models.MembershipRenewal, error)
	PreviewRenewal(ctx context.Context, membershipID uuid.UUID) (RenewalQuote, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Membership, error)
}

type planStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type clientStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type paymentRecorder interface {
	RecordInTx(ctx context.Context, tx *gorm.DB, input payments.RecordPaymentInput) (*models.Payment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	plans    planStore
	clients  clientStore
	payments paymentRecorder
	tx       txRunner
	now      func() types.Date
}

// ServiceParams bundles the memberships service dependencies. Now is
// optional and defaults to the current UTC calendar day.
type ServiceParams struct {
	Repo     Repository
	Plans    planStore
	Clients  clientStore
	Payments paymentRecorder
	DB       *db.Client
	Now      func() types.Date
}

// NewService wires a memberships service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plan store is required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client store is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment recorder is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	now := params.Now
	if now == nil {
		now = types.Today
	}
	return &service{
		repo:     params.Repo,
		plans:    params.Plans,
		clients:  params.Clients,
		payments: params.Payments,
		tx:       params.DB,
		now:      now,
	}, nil
}

// Register creates the membership, snapshots the plan's terms, and records
// the registration payment. Everything commits or rolls back as one unit.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Membership, error) {
	if input.ProcessedByUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "processing user is required")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}

	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}

	plan, err := s.plans.FindByID(ctx, input.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	if plan.Status != enums.PlanStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "plan is no longer offered")
	}
	if plan.RenewalPeriodDays < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renewal period must be at least one day")
	}

	start := input.StartDate
	if start.IsZero() {
		start = s.now()
	}

	total := plan.RegistrationTotalIn(input.Currency)
	membership := &models.Membership{
		ClientID:              input.ClientID,
		PlanID:                plan.ID,
		StartDate:             start,
		EndDate:               start.AddDays(plan.RenewalPeriodDays),
		Status:                enums.MembershipStatusActive,
		AmountPaid:            total,
		Currency:              input.Currency,
		PlanPricePaid:         plan.PriceIn(input.Currency),
		SubscriptionPricePaid: plan.SubscriptionPriceIn(input.Currency),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}
		_, err := s.payments.RecordInTx(ctx, tx, payments.RecordPaymentInput{
			TargetType:         enums.PaymentTargetMembership,
			TargetID:           membership.ID,
			Amount:             total,
			Currency:           input.Currency,
			ExchangeRate:       input.ExchangeRate,
			PaymentDate:        s.now(),
			Reference:          input.Reference,
			Notes:              input.Notes,
			RegisteredByUserID: input.ProcessedByUserID,
			Methods:            input.Methods,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Renew locks the membership row, quotes the new end date from the latest
// renewal, and inserts the renewal plus its payment atomically.
func (s *service) Renew(ctx context.Context, membershipID uuid.UUID, input RenewInput) (*models.MembershipRenewal, error) {
	if input.ProcessedByUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "processing user is required")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}

	today := s.now()
	var renewal *models.MembershipRenewal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		membership, err := repo.FindByIDForUpdate(ctx, membershipID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock membership")
		}

		plan, err := s.plans.FindByID(ctx, membership.PlanID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}

		quote, err := RenewalInfo(plan, membership, today)
		if err != nil {
			return err
		}

		renewal = &models.MembershipRenewal{
			MembershipID:      membership.ID,
			PreviousEndDate:   EffectiveEndDate(membership),
			NewEndDate:        quote.NewEndDate,
			AmountPaid:        plan.PriceIn(input.Currency),
			Currency:          input.Currency,
			ProcessedByUserID: input.ProcessedByUserID,
		}
		if err := repo.CreateRenewal(ctx, renewal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create renewal")
		}

		_, err = s.payments.RecordInTx(ctx, tx, payments.RecordPaymentInput{
			TargetType:         enums.PaymentTargetRenewal,
			TargetID:           renewal.ID,
			Amount:             renewal.AmountPaid,
			Currency:           input.Currency,
			ExchangeRate:       input.ExchangeRate,
			PaymentDate:        today,
			Reference:          input.Reference,
			Notes:              input.Notes,
			RegisteredByUserID: input.ProcessedByUserID,
			Methods:            input.Methods,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return renewal, nil
}

// PreviewRenewal quotes a renewal without writing anything.
func (s *service) PreviewRenewal(ctx context.Context, membershipID uuid.UUID) (RenewalQuote, error) {
	membership, err := s.Get(ctx, membershipID)
	if err != nil {
		return RenewalQuote{}, err
	}

	plan := membership.Plan
	if plan == nil {
		loaded, err := s.plans.FindByID(ctx, membership.PlanID)
		if err != nil {
			return RenewalQuote{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}
		plan = loaded
	}
	return RenewalInfo(plan, membership, s.now())
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	membership, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
	}
	return membership, nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Membership, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list memberships")
	}
	return rows, nil
}
