package licenses

import (
	"context"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a licenses repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, license *models.License) (*models.License, error) {
	if err := r.db.WithContext(ctx).Create(license).Error; err != nil {
		return nil, err
	}
	return license, nil
}

func (r *repository) FindByKey(ctx context.Context, key string) (*models.License, error) {
	var license models.License
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&license).Error
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *repository) ListByDealership(ctx context.Context, dealershipID uuid.UUID) ([]models.License, error) {
	var rows []models.License
	err := r.db.WithContext(ctx).
		Where("dealership_id = ?", dealershipID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.License{}).
		Where("id = ?", id).
		Updates(updates).Error
}
