package documents

import (
	"context"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the documents table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindDealByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
}
