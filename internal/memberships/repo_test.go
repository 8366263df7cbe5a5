package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

func setupMembershipsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  identification TEXT NOT NULL UNIQUE,
  email TEXT,
  phone TEXT,
  birth_date DATE,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS plans (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  renewal_period_days INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  price_usd NUMERIC NOT NULL,
  subscription_price NUMERIC NOT NULL DEFAULT 0,
  subscription_price_usd NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS memberships (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  plan_id TEXT NOT NULL,
  start_date DATE NOT NULL,
  end_date DATE NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  amount_paid NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  plan_price_paid NUMERIC NOT NULL,
  subscription_price_paid NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS membership_renewals (
  id TEXT PRIMARY KEY,
  membership_id TEXT NOT NULL,
  previous_end_date DATE NOT NULL,
  new_end_date DATE NOT NULL,
  amount_paid NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  processed_by_user_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedMembership(t *testing.T, db *gorm.DB, end types.Date) *models.Membership {
	t.Helper()

	client := &models.Client{
		ID:             uuid.New(),
		FirstName:      "Maria",
		LastName:       "Gonzalez",
		Identification: uuid.NewString(),
		Status:         enums.ClientStatusActive,
	}
	require.NoError(t, db.Create(client).Error)

	plan := &models.Plan{
		ID:                uuid.New(),
		Name:              uuid.NewString(),
		Status:            enums.PlanStatusActive,
		RenewalPeriodDays: 30,
	}
	require.NoError(t, db.Create(plan).Error)

	membership := &models.Membership{
		ID:        uuid.New(),
		ClientID:  client.ID,
		PlanID:    plan.ID,
		StartDate: end.AddDays(-30),
		EndDate:   end,
		Status:    enums.MembershipStatusActive,
		Currency:  enums.CurrencyUSD,
	}
	require.NoError(t, db.Create(membership).Error)
	return membership
}

func TestMembershipRepoFindByIDLoadsRenewalsInOrder(t *testing.T) {
	db := setupMembershipsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	membership := seedMembership(t, db, testToday)

	// Insert out of chronological order to prove the query sorts.
	base := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	for _, r := range []struct {
		createdAt time.Time
		newEnd    types.Date
	}{
		{base.Add(2 * time.Hour), testToday.AddDays(90)},
		{base, testToday.AddDays(30)},
		{base.Add(time.Hour), testToday.AddDays(60)},
	} {
		renewal := &models.MembershipRenewal{
			ID:                uuid.New(),
			MembershipID:      membership.ID,
			PreviousEndDate:   testToday,
			NewEndDate:        r.newEnd,
			Currency:          enums.CurrencyUSD,
			ProcessedByUserID: uuid.New(),
			CreatedAt:         r.createdAt,
		}
		require.NoError(t, db.Create(renewal).Error)
	}

	found, err := repo.FindByID(ctx, membership.ID)
	require.NoError(t, err)
	require.Len(t, found.Renewals, 3)
	assert.Equal(t, testToday.AddDays(30).String(), found.Renewals[0].NewEndDate.String())
	assert.Equal(t, testToday.AddDays(90).String(), found.Renewals[2].NewEndDate.String())
	assert.Equal(t, testToday.AddDays(90).String(), EffectiveEndDate(found).String())

	require.NotNil(t, found.Plan)
	assert.Equal(t, 30, found.Plan.RenewalPeriodDays)
	require.NotNil(t, found.Client)
	assert.Equal(t, "Maria", found.Client.FirstName)
}

func TestMembershipRepoCreateRenewal(t *testing.T) {
	db := setupMembershipsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	membership := seedMembership(t, db, testToday)

	renewal := &models.MembershipRenewal{
		ID:                uuid.New(),
		MembershipID:      membership.ID,
		PreviousEndDate:   testToday,
		NewEndDate:        testToday.AddDays(30),
		Currency:          enums.CurrencyUSD,
		ProcessedByUserID: uuid.New(),
	}
	require.NoError(t, repo.CreateRenewal(ctx, renewal))

	found, err := repo.FindByID(ctx, membership.ID)
	require.NoError(t, err)
	require.Len(t, found.Renewals, 1)
	assert.Equal(t, renewal.NewEndDate.String(), found.Renewals[0].NewEndDate.String())
}

func TestMembershipRepoListByClient(t *testing.T) {
	db := setupMembershipsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedMembership(t, db, testToday)
	second := seedMembership(t, db, testToday.AddDays(10))

	rows, err := repo.ListByClient(ctx, first.ClientID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)

	rows, err = repo.ListByClient(ctx, second.ClientID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = repo.ListByClient(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
