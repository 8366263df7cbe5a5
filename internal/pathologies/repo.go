package pathologies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
)

// Repository persists the pathology catalog and per-client assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pathology *models.Pathology) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pathology, error)
	Update(ctx context.Context, pathology *models.Pathology) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Pathology, error)

	Attach(ctx context.Context, link *models.ClientPathology) error
	Detach(ctx context.Context, clientID, pathologyID uuid.UUID) (int64, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientPathology, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed pathologies repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, pathology *models.Pathology) error {
	return r.db.WithContext(ctx).Create(pathology).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pathology, error) {
	var pathology models.Pathology
	if err := r.db.WithContext(ctx).First(&pathology, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pathology, nil
}

func (r *repository) Update(ctx context.Context, pathology *models.Pathology) error {
	return r.db.WithContext(ctx).Save(pathology).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Pathology{}, "id = ?", id).Error
}

func (r *repository) List(ctx context.Context) ([]models.Pathology, error) {
	var rows []models.Pathology
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Attach(ctx context.Context, link *models.ClientPathology) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) Detach(ctx context.Context, clientID, pathologyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("client_id = ? AND pathology_id = ?", clientID, pathologyID).
		Delete(&models.ClientPathology{})
	return result.RowsAffected, result.Error
}

func (r *repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientPathology, error) {
	var rows []models.ClientPathology
	err := r.db.WithContext(ctx).
		Preload("Pathology").
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
