package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
)

// Repository persists payments together with their method breakdown.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByTarget(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) ([]models.Payment, error)
	ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Payment, error)
	TargetExists(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed payments repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts the payment and its method rows as one unit. gorm writes
// the association rows in the same statement batch, so when the surrounding
// transaction rolls back, nothing survives.
func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Methods", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForMembership returns the full payment history of one membership: the
// registration payment targeting the membership row plus every payment
// targeting one of its renewals, in creation order.
func (r *repository) ListForMembership(ctx context.Context, membershipID uuid.UUID) ([]models.Payment, error) {
	renewalIDs := r.db.Model(&models.MembershipRenewal{}).
		Select("id").
		Where("membership_id = ?", membershipID)

	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Methods", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("(target_type = ? AND target_id = ?) OR (target_type = ? AND target_id IN (?))",
			enums.PaymentTargetMembership, membershipID,
			enums.PaymentTargetRenewal, renewalIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TargetExists reports whether the membership or renewal row a payment
// points at is actually there.
func (r *repository) TargetExists(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx)
	switch targetType {
	case enums.PaymentTargetMembership:
		query = query.Model(&models.Membership{})
	case enums.PaymentTargetRenewal:
		query = query.Model(&models.MembershipRenewal{})
	default:
		return false, fmt.Errorf("unknown payment target type %q", targetType)
	}

	var count int64
	if err := query.Where("id = ?", targetID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByTarget(ctx context.Context, targetType enums.PaymentTargetType, targetID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Methods", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
