package clients

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/pagination"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

func setupClientsTestDB(t *testing.T) *gorm.DB {
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
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newClient(t *testing.T, db *gorm.DB, first, last, identification string, email *string) *models.Client {
	t.Helper()

	client := &models.Client{
		ID:             uuid.New(),
		FirstName:      first,
		LastName:       last,
		Identification: identification,
		Email:          email,
		Status:         enums.ClientStatusActive,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	birth := types.NewDate(1990, 5, 20)
	client := &models.Client{
		ID:             uuid.New(),
		FirstName:      "Maria",
		LastName:       "Gonzalez",
		Identification: "V-1234567",
		BirthDate:      &birth,
		Status:         enums.ClientStatusActive,
	}
	require.NoError(t, repo.Create(ctx, client))

	found, err := repo.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", found.FirstName)
	require.NotNil(t, found.BirthDate)
	assert.Equal(t, "1990-05-20", found.BirthDate.String())

	byIdent, err := repo.FindByIdentification(ctx, "V-1234567")
	require.NoError(t, err)
	assert.Equal(t, client.ID, byIdent.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUniqueIdentification(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newClient(t, db, "Ana", "Perez", "V-111", nil)

	dup := &models.Client{
		ID:             uuid.New(),
		FirstName:      "Other",
		LastName:       "Person",
		Identification: "V-111",
		Status:         enums.ClientStatusActive,
	}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestRepositorySearch(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	email := "jose@example.com"
	newClient(t, db, "Jose", "Martinez", "V-100", &email)
	newClient(t, db, "Josefa", "Lopez", "V-200", nil)
	newClient(t, db, "Carlos", "Rivas", "V-300", nil)

	byName, err := repo.Search(ctx, "jose", 10)
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byEmail, err := repo.Search(ctx, "jose@example", 10)
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Martinez", byEmail[0].LastName)

	byIdent, err := repo.Search(ctx, "V-300", 10)
	require.NoError(t, err)
	require.Len(t, byIdent, 1)
	assert.Equal(t, "Carlos", byIdent[0].FirstName)

	blank, err := repo.Search(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		newClient(t, db, "Client", fmt.Sprintf("Number%d", i), fmt.Sprintf("V-%d", i), nil)
	}

	first, err := repo.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)

	seen := map[uuid.UUID]bool{}
	for _, c := range append(first.Items, second.Items...) {
		assert.False(t, seen[c.ID], "expected distinct rows across pages")
		seen[c.ID] = true
	}

	third, err := repo.List(ctx, pagination.Params{Limit: 10, Cursor: second.NextCursor})
	require.NoError(t, err)
	assert.Len(t, third.Items, 1)
	assert.Empty(t, third.NextCursor)
}
