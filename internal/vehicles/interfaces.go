package vehicles

import (
	"context"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the vehicles table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	FindByVIN(ctx context.Context, dealershipID uuid.UUID, vin string) (*models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*VehicleList, error)
	CountDeals(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}
