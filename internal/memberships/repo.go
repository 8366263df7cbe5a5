package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
)

// Repository persists memberships and their renewal ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, membership *models.Membership) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	// FindByIDForUpdate takes a row lock on the membership so the
	// read-compute-insert renewal sequence is serialized per membership.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	Update(ctx context.Context, membership *models.Membership) error
	CreateRenewal(ctx context.Context, renewal *models.MembershipRenewal) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Membership, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed memberships repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func renewalsInCreationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Preload("Renewals", renewalsInCreationOrder).
		Preload("Plan").
		Preload("Client").
		First(&membership, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&membership, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	// Renewals are loaded after the lock is held so the fold over the
	// ledger cannot race a concurrent renewal.
	err = r.db.WithContext(ctx).
		Where("membership_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&membership.Renewals).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) Update(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Omit("Renewals", "Plan", "Client").Save(membership).Error
}

func (r *repository) CreateRenewal(ctx context.Context, renewal *models.MembershipRenewal) error {
	return r.db.WithContext(ctx).Create(renewal).Error
}

func (r *repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Membership, error) {
	var rows []models.Membership
	err := r.db.WithContext(ctx).
		Preload("Renewals", renewalsInCreationOrder).
		Preload("Plan").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
