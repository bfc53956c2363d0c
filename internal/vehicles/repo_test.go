package vehicles

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
)

func setupVehiclesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	vehicles := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  dealership_id TEXT NOT NULL,
  vin TEXT NOT NULL UNIQUE,
  stock_number TEXT,
  year INTEGER NOT NULL,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  trim TEXT,
  body TEXT,
  transmission TEXT,
  engine TEXT,
  mileage INTEGER NOT NULL DEFAULT 0,
  color TEXT,
  price NUMERIC NOT NULL,
  cost NUMERIC,
  status TEXT NOT NULL DEFAULT 'available',
  description TEXT,
  images TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	deals := `
CREATE TABLE IF NOT EXISTS deals (
  id TEXT PRIMARY KEY,
  dealership_id TEXT NOT NULL,
  client_id TEXT NOT NULL,
  vehicle_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  sale_amount NUMERIC NOT NULL,
  sales_tax NUMERIC NOT NULL DEFAULT 0,
  doc_fee NUMERIC NOT NULL DEFAULT 0,
  trade_in_value NUMERIC NOT NULL DEFAULT 0,
  down_payment NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  financed_amount NUMERIC NOT NULL,
  sale_date DATETIME,
  cobuyer_data TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vehicles).Error)
	require.NoError(t, db.Exec(deals).Error)
	return db
}

// VINs collide across tests because the shared in-memory database lives for
// the whole package run, so each fixture gets a generated one.
func testVIN() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:17]
}

func seedVehicle(t *testing.T, db *gorm.DB, dealershipID uuid.UUID, makeName, modelName string, status enums.VehicleStatus, createdAt time.Time) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		VIN:          testVIN(),
		Year:         2022,
		Make:         makeName,
		Model:        modelName,
		Mileage:      15000,
		Price:        21995,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func TestVehicleRepoCreateAndFindByVIN(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	vin := testVIN()
	created, err := repo.Create(ctx, &models.Vehicle{
		DealershipID: dealershipID,
		VIN:          vin,
		Year:         2021,
		Make:         "Honda",
		Model:        "Accord",
		Mileage:      32000,
		Price:        24500,
		Status:       enums.VehicleStatusAvailable,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByVIN(ctx, dealershipID, vin)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Same VIN under a different dealership is a miss.
	_, err = repo.FindByVIN(ctx, uuid.New(), vin)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVehicleRepoDuplicateVINRejected(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	vin := testVIN()
	_, err := repo.Create(ctx, &models.Vehicle{
		DealershipID: dealershipID,
		VIN:          vin,
		Year:         2021,
		Make:         "Honda",
		Model:        "Accord",
		Price:        24500,
		Status:       enums.VehicleStatusAvailable,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Vehicle{
		DealershipID: dealershipID,
		VIN:          vin,
		Year:         2022,
		Make:         "Honda",
		Model:        "Civic",
		Price:        19500,
		Status:       enums.VehicleStatusAvailable,
	})
	require.Error(t, err)
}

func TestVehicleRepoUpdateStatus(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, uuid.New(), "Toyota", "Corolla", enums.VehicleStatusAvailable, time.Now().UTC())

	require.NoError(t, repo.UpdateStatus(ctx, vehicle.ID, enums.VehicleStatusReserved))

	found, err := repo.FindByID(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.VehicleStatusReserved, found.Status)
}

func TestVehicleRepoListStatusAndQueryFilters(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	now := time.Now().UTC()
	accord := seedVehicle(t, db, dealershipID, "Honda", "Accord", enums.VehicleStatusAvailable, now)
	sold := seedVehicle(t, db, dealershipID, "Toyota", "Corolla", enums.VehicleStatusSold, now.Add(time.Second))

	available := enums.VehicleStatusAvailable
	byStatus, err := repo.List(ctx, dealershipID, pagination.Params{}, Filters{Status: &available})
	require.NoError(t, err)
	require.Len(t, byStatus.Vehicles, 1)
	assert.Equal(t, accord.ID, byStatus.Vehicles[0].ID)

	byQuery, err := repo.List(ctx, dealershipID, pagination.Params{}, Filters{Query: "corol"})
	require.NoError(t, err)
	require.Len(t, byQuery.Vehicles, 1)
	assert.Equal(t, sold.ID, byQuery.Vehicles[0].ID)

	byVIN, err := repo.List(ctx, dealershipID, pagination.Params{}, Filters{Query: strings.ToLower(accord.VIN[:8])})
	require.NoError(t, err)
	require.Len(t, byVIN.Vehicles, 1)
	assert.Equal(t, accord.ID, byVIN.Vehicles[0].ID)
}

func TestVehicleRepoListCursorPagination(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	oldest := seedVehicle(t, db, dealershipID, "Honda", "Accord", enums.VehicleStatusAvailable, base)
	seedVehicle(t, db, dealershipID, "Toyota", "Corolla", enums.VehicleStatusAvailable, base.Add(time.Minute))
	newest := seedVehicle(t, db, dealershipID, "Ford", "F-150", enums.VehicleStatusAvailable, base.Add(2*time.Minute))

	first, err := repo.List(ctx, dealershipID, pagination.Params{Limit: 2}, Filters{})
	require.NoError(t, err)
	require.Len(t, first.Vehicles, 2)
	assert.Equal(t, newest.ID, first.Vehicles[0].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, dealershipID, pagination.Params{Limit: 2, Cursor: first.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Vehicles, 1)
	assert.Equal(t, oldest.ID, second.Vehicles[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestVehicleRepoCountDeals(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	vehicle := seedVehicle(t, db, dealershipID, "Honda", "Accord", enums.VehicleStatusAvailable, time.Now().UTC())

	require.NoError(t, db.Create(&models.Deal{
		DealershipID:   dealershipID,
		ClientID:       uuid.New(),
		VehicleID:      vehicle.ID,
		CreatedBy:      uuid.New(),
		Type:           enums.DealTypeRetail,
		Status:         enums.DealStatusDraft,
		SaleAmount:     24500,
		TotalAmount:    24500,
		FinancedAmount: 24500,
	}).Error)

	count, err := repo.CountDeals(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
