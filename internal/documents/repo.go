package documents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
)

// Repository persists document templates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, template *models.DocumentTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DocumentTemplate, error)
	Update(ctx context.Context, template *models.DocumentTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.DocumentTemplate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed document template repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, template *models.DocumentTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DocumentTemplate, error) {
	var template models.DocumentTemplate
	if err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repository) Update(ctx context.Context, template *models.DocumentTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DocumentTemplate{}, "id = ?", id).Error
}

func (r *repository) List(ctx context.Context) ([]models.DocumentTemplate, error) {
	var rows []models.DocumentTemplate
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
