package clients

import (
	"context"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the clients table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*ClientList, error)
	CountDeals(ctx context.Context, clientID uuid.UUID) (int64, error)
}
