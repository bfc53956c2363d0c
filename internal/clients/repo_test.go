package clients

import (
	"context"
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

func setupClientsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	clients := `
CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  dealership_id TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  address TEXT,
  city TEXT,
  state TEXT,
  zip_code TEXT,
  drivers_license TEXT,
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
	require.NoError(t, db.Exec(clients).Error)
	require.NoError(t, db.Exec(deals).Error)
	return db
}

func seedClient(t *testing.T, db *gorm.DB, dealershipID uuid.UUID, first, last, email string, createdAt time.Time) *models.Client {
	t.Helper()

	client := &models.Client{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		FirstName:    first,
		LastName:     last,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if email != "" {
		client.Email = &email
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func TestClientRepoCreateAndFindByID(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	phone := "555-0134"
	created, err := repo.Create(ctx, &models.Client{
		DealershipID: uuid.New(),
		FirstName:    "Maria",
		LastName:     "Santos",
		Phone:        &phone,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", found.FirstName)
	require.NotNil(t, found.Phone)
	assert.Equal(t, "555-0134", *found.Phone)
}

func TestClientRepoUpdateAndDelete(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	client := seedClient(t, db, uuid.New(), "Maria", "Santos", "", time.Now().UTC())

	err := repo.Update(ctx, client.ID, map[string]any{
		"email": "maria.santos@example.com",
		"city":  "El Paso",
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Email)
	assert.Equal(t, "maria.santos@example.com", *found.Email)

	require.NoError(t, repo.Delete(ctx, client.ID))
	_, err = repo.FindByID(ctx, client.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClientRepoListQueryFilter(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	now := time.Now().UTC()
	maria := seedClient(t, db, dealershipID, "Maria", "Santos", "maria@example.com", now)
	seedClient(t, db, dealershipID, "Luis", "Vega", "luis@example.com", now.Add(time.Second))

	// Case-insensitive match on name.
	byName, err := repo.List(ctx, dealershipID, pagination.Params{}, Filters{Query: "mAr"})
	require.NoError(t, err)
	require.Len(t, byName.Clients, 1)
	assert.Equal(t, maria.ID, byName.Clients[0].ID)

	byEmail, err := repo.List(ctx, dealershipID, pagination.Params{}, Filters{Query: "luis@"})
	require.NoError(t, err)
	require.Len(t, byEmail.Clients, 1)
	assert.Equal(t, "Luis", byEmail.Clients[0].FirstName)

	none, err := repo.List(ctx, dealershipID, pagination.Params{}, Filters{Query: "nomatch"})
	require.NoError(t, err)
	assert.Empty(t, none.Clients)
}

func TestClientRepoListScopedToDealership(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mine := uuid.New()
	theirs := uuid.New()
	now := time.Now().UTC()
	seedClient(t, db, mine, "Maria", "Santos", "", now)
	seedClient(t, db, theirs, "Luis", "Vega", "", now)

	list, err := repo.List(ctx, mine, pagination.Params{}, Filters{})
	require.NoError(t, err)
	require.Len(t, list.Clients, 1)
	assert.Equal(t, "Maria", list.Clients[0].FirstName)
}

func TestClientRepoListCursorPagination(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	oldest := seedClient(t, db, dealershipID, "Ana", "Reyes", "", base)
	seedClient(t, db, dealershipID, "Maria", "Santos", "", base.Add(time.Minute))
	newest := seedClient(t, db, dealershipID, "Luis", "Vega", "", base.Add(2*time.Minute))

	first, err := repo.List(ctx, dealershipID, pagination.Params{Limit: 2}, Filters{})
	require.NoError(t, err)
	require.Len(t, first.Clients, 2)
	assert.Equal(t, newest.ID, first.Clients[0].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, dealershipID, pagination.Params{Limit: 2, Cursor: first.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Clients, 1)
	assert.Equal(t, oldest.ID, second.Clients[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestClientRepoCountDeals(t *testing.T) {
	db := setupClientsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	dealershipID := uuid.New()

	client := seedClient(t, db, dealershipID, "Maria", "Santos", "", time.Now().UTC())

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Deal{
			DealershipID:   dealershipID,
			ClientID:       client.ID,
			VehicleID:      uuid.New(),
			CreatedBy:      uuid.New(),
			Type:           enums.DealTypeRetail,
			Status:         enums.DealStatusDraft,
			SaleAmount:     10000,
			TotalAmount:    10000,
			FinancedAmount: 10000,
		}).Error)
	}

	count, err := repo.CountDeals(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	none, err := repo.CountDeals(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, none)
}
