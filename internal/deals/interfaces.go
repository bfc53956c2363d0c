package deals

import (
	"context"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the deals table and the
// lookups deal writes depend on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*DealList, error)
	ListByClient(ctx context.Context, dealershipID, clientID uuid.UUID, params pagination.Params) (*DealList, error)
	ListByVehicle(ctx context.Context, dealershipID, vehicleID uuid.UUID, params pagination.Params) (*DealList, error)
	Stats(ctx context.Context, dealershipID uuid.UUID) (*Stats, error)
	FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, vehicleID uuid.UUID, status enums.VehicleStatus) error
}
