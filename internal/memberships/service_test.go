package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/internal/payments"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

type memState struct {
	memberships map[uuid.UUID]*models.Membership
	renewals    []*models.MembershipRenewal
	payments    []*models.Payment
}

func (s *memState) clone() *memState {
	copied := &memState{memberships: map[uuid.UUID]*models.Membership{}}
	for id, m := range s.memberships {
		c := *m
		copied.memberships[id] = &c
	}
	copied.renewals = append(copied.renewals, s.renewals...)
	copied.payments = append(copied.payments, s.payments...)
	return copied
}

// memStore backs the repository, payment recorder and tx runner stubs with
// one shared state so a failed transaction can restore the snapshot the way
// a real rollback would.
type memStore struct {
	state      *memState
	paymentErr error
}

func newMemStore() *memStore {
	return &memStore{state: &memState{memberships: map[uuid.UUID]*models.Membership{}}}
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := s.state.clone()
	if err := fn(nil); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type memRepo struct{ store *memStore }

func (r memRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r memRepo) Create(ctx context.Context, membership *models.Membership) error {
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	r.store.state.memberships[membership.ID] = membership
	return nil
}

func (r memRepo) findWithRenewals(id uuid.UUID) (*models.Membership, error) {
	membership, ok := r.store.state.memberships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *membership
	copied.Renewals = nil
	for _, renewal := range r.store.state.renewals {
		if renewal.MembershipID == id {
			copied.Renewals = append(copied.Renewals, *renewal)
		}
	}
	return &copied, nil
}

func (r memRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	return r.findWithRenewals(id)
}

func (r memRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	return r.findWithRenewals(id)
}

func (r memRepo) Update(ctx context.Context, membership *models.Membership) error {
	r.store.state.memberships[membership.ID] = membership
	return nil
}

func (r memRepo) CreateRenewal(ctx context.Context, renewal *models.MembershipRenewal) error {
	if renewal.ID == uuid.Nil {
		renewal.ID = uuid.New()
	}
	r.store.state.renewals = append(r.store.state.renewals, renewal)
	return nil
}

func (r memRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Membership, error) {
	var rows []models.Membership
	for id, m := range r.store.state.memberships {
		if m.ClientID == clientID {
			loaded, _ := r.findWithRenewals(id)
			rows = append(rows, *loaded)
		}
	}
	return rows, nil
}

type memPayments struct{ store *memStore }

func (p memPayments) RecordInTx(ctx context.Context, tx *gorm.DB, input payments.RecordPaymentInput) (*models.Payment, error) {
	if p.store.paymentErr != nil {
		return nil, p.store.paymentErr
	}
	payment := &models.Payment{
		ID:         uuid.New(),
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Amount:     input.Amount,
		Currency:   input.Currency,
	}
	p.store.state.payments = append(p.store.state.payments, payment)
	return payment, nil
}

type stubPlanStore struct{ plan *models.Plan }

func (s stubPlanStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	if s.plan == nil || s.plan.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.plan, nil
}

type stubClientStore struct{ client *models.Client }

func (s stubClientStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

type fixture struct {
	store  *memStore
	svc    Service
	plan   *models.Plan
	client *models.Client
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	plan := &models.Plan{
		ID:                   uuid.New(),
		Name:                 "Monthly",
		Status:               enums.PlanStatusActive,
		RenewalPeriodDays:    30,
		Price:                decimal.NewFromInt(1200),
		PriceUSD:             decimal.NewFromInt(30),
		SubscriptionPrice:    decimal.NewFromInt(400),
		SubscriptionPriceUSD: decimal.NewFromInt(10),
	}
	client := &models.Client{ID: uuid.New(), FirstName: "Maria", LastName: "Gonzalez"}

	svc := &service{
		repo:     memRepo{store: store},
		plans:    stubPlanStore{plan: plan},
		clients:  stubClientStore{client: client},
		payments: memPayments{store: store},
		tx:       store,
		now:      func() types.Date { return testToday },
	}
	return &fixture{store: store, svc: svc, plan: plan, client: client, userID: uuid.New()}
}

func usdMethods(amount string) []payments.MethodEntry {
	return []payments.MethodEntry{{Kind: enums.PaymentMethodCashUSD, Amount: mustDec(amount)}}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRegisterCreatesMembershipAndPayment(t *testing.T) {
	f := newFixture(t)

	membership, err := f.svc.Register(context.Background(), RegisterInput{
		ClientID:          f.client.ID,
		PlanID:            f.plan.ID,
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("40"),
		ProcessedByUserID: f.userID,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if !membership.StartDate.Equal(testToday) {
		t.Fatalf("expected start today, got %s", membership.StartDate)
	}
	if want := testToday.AddDays(30); !membership.EndDate.Equal(want) {
		t.Fatalf("expected end %s, got %s", want, membership.EndDate)
	}
	if !membership.AmountPaid.Equal(mustDec("40")) {
		t.Fatalf("expected registration total 40 (30 plan + 10 subscription), got %s", membership.AmountPaid)
	}
	if !membership.PlanPricePaid.Equal(mustDec("30")) || !membership.SubscriptionPricePaid.Equal(mustDec("10")) {
		t.Fatal("expected plan terms snapshotted on the membership")
	}

	if len(f.store.state.payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(f.store.state.payments))
	}
	payment := f.store.state.payments[0]
	if payment.TargetType != enums.PaymentTargetMembership || payment.TargetID != membership.ID {
		t.Fatalf("expected payment to target the membership, got %s/%s", payment.TargetType, payment.TargetID)
	}
}

func TestRegisterRejectsRetiredPlan(t *testing.T) {
	f := newFixture(t)
	f.plan.Status = enums.PlanStatusInactive

	_, err := f.svc.Register(context.Background(), RegisterInput{
		ClientID:          f.client.ID,
		PlanID:            f.plan.ID,
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("40"),
		ProcessedByUserID: f.userID,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRegisterUnknownClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		ClientID:          uuid.New(),
		PlanID:            f.plan.ID,
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("40"),
		ProcessedByUserID: f.userID,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func registerActive(t *testing.T, f *fixture) *models.Membership {
	t.Helper()
	membership, err := f.svc.Register(context.Background(), RegisterInput{
		ClientID:          f.client.ID,
		PlanID:            f.plan.ID,
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("40"),
		ProcessedByUserID: f.userID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return membership
}

func TestRenewExtendsFromEffectiveEnd(t *testing.T) {
	f := newFixture(t)
	membership := registerActive(t, f)

	renewal, err := f.svc.Renew(context.Background(), membership.ID, RenewInput{
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("30"),
		ProcessedByUserID: f.userID,
	})
	if err != nil {
		t.Fatalf("renew: %v", err)
	}

	if !renewal.PreviousEndDate.Equal(membership.EndDate) {
		t.Fatalf("expected previous end %s, got %s", membership.EndDate, renewal.PreviousEndDate)
	}
	if want := membership.EndDate.AddDays(30); !renewal.NewEndDate.Equal(want) {
		t.Fatalf("expected new end %s, got %s", want, renewal.NewEndDate)
	}
	if !renewal.AmountPaid.Equal(mustDec("30")) {
		t.Fatalf("expected renewal charged at plan price 30, got %s", renewal.AmountPaid)
	}

	last := f.store.state.payments[len(f.store.state.payments)-1]
	if last.TargetType != enums.PaymentTargetRenewal || last.TargetID != renewal.ID {
		t.Fatalf("expected payment to target the renewal, got %s/%s", last.TargetType, last.TargetID)
	}
}

func TestRenewChainsOffLatestRenewal(t *testing.T) {
	f := newFixture(t)
	membership := registerActive(t, f)
	ctx := context.Background()

	input := RenewInput{
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("30"),
		ProcessedByUserID: f.userID,
	}

	first, err := f.svc.Renew(ctx, membership.ID, input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Renew(ctx, membership.ID, input)
	if err != nil {
		t.Fatal(err)
	}

	if !second.PreviousEndDate.Equal(first.NewEndDate) {
		t.Fatalf("second renewal must chain off the first: %s vs %s", second.PreviousEndDate, first.NewEndDate)
	}
	if want := first.NewEndDate.AddDays(30); !second.NewEndDate.Equal(want) {
		t.Fatalf("expected %s, got %s", want, second.NewEndDate)
	}
}

func TestRenewPaymentFailureLeavesNoLedgerEntry(t *testing.T) {
	f := newFixture(t)
	membership := registerActive(t, f)
	renewalsBefore := len(f.store.state.renewals)

	f.store.paymentErr = pkgerrors.New(pkgerrors.CodeValidation, "payment methods do not sum to the target amount")
	_, err := f.svc.Renew(context.Background(), membership.ID, RenewInput{
		Currency:          enums.CurrencyUSD,
		Methods:           usdMethods("5"),
		ProcessedByUserID: f.userID,
	})
	if err == nil {
		t.Fatal("expected renew to fail")
	}
	if len(f.store.state.renewals) != renewalsBefore {
		t.Fatalf("expected rollback to discard the renewal row, found %d", len(f.store.state.renewals))
	}
}

func TestPreviewRenewal(t *testing.T) {
	f := newFixture(t)
	membership := registerActive(t, f)

	quote, err := f.svc.PreviewRenewal(context.Background(), membership.ID)
	if err != nil {
		t.Fatal(err)
	}
	if quote.IsExpired {
		t.Fatal("freshly registered membership must not be expired")
	}
	if quote.CalculationBasis != BasisFromEffectiveEnd {
		t.Fatalf("unexpected basis %q", quote.CalculationBasis)
	}
	if want := membership.EndDate.AddDays(30); !quote.NewEndDate.Equal(want) {
		t.Fatalf("expected %s, got %s", want, quote.NewEndDate)
	}
	if quote.DaysUntilExpiration != 30 {
		t.Fatalf("expected 30 days until expiration, got %d", quote.DaysUntilExpiration)
	}
}
