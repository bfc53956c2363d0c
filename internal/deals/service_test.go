package deals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
)

type stubDealsRepo struct {
	client          *models.Client
	vehicle         *models.Vehicle
	deal            *models.Deal
	created         *models.Deal
	updates         map[string]any
	vehicleStatuses map[uuid.UUID]enums.VehicleStatus
	deleted         bool

	findByID          func(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	findClientByID    func(ctx context.Context, id uuid.UUID) (*models.Client, error)
	findVehicleByID   func(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	updateVehicleStat func(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error
}

func (s *stubDealsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubDealsRepo) Create(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}
	s.created = deal
	return deal, nil
}

func (s *stubDealsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	if s.deal == nil || s.deal.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.deal, nil
}

func (s *stubDealsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubDealsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubDealsRepo) List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*DealList, error) {
	return &DealList{}, nil
}

func (s *stubDealsRepo) ListByClient(ctx context.Context, dealershipID, clientID uuid.UUID, params pagination.Params) (*DealList, error) {
	return &DealList{}, nil
}

func (s *stubDealsRepo) ListByVehicle(ctx context.Context, dealershipID, vehicleID uuid.UUID, params pagination.Params) (*DealList, error) {
	return &DealList{}, nil
}

func (s *stubDealsRepo) Stats(ctx context.Context, dealershipID uuid.UUID) (*Stats, error) {
	return &Stats{}, nil
}

func (s *stubDealsRepo) FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.findClientByID != nil {
		return s.findClientByID(ctx, id)
	}
	if s.client == nil || s.client.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

func (s *stubDealsRepo) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if s.findVehicleByID != nil {
		return s.findVehicleByID(ctx, id)
	}
	if s.vehicle == nil || s.vehicle.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.vehicle, nil
}

func (s *stubDealsRepo) UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error {
	if s.updateVehicleStat != nil {
		return s.updateVehicleStat(ctx, id, status)
	}
	if s.vehicleStatuses == nil {
		s.vehicleStatuses = make(map[uuid.UUID]enums.VehicleStatus)
	}
	s.vehicleStatuses[id] = status
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type countingMetrics struct {
	created int
}

func (m *countingMetrics) IncDealCreated() {
	m.created++
}

func testActor(dealershipID uuid.UUID) Actor {
	return Actor{
		UserID:       uuid.New(),
		DealershipID: dealershipID,
		Role:         enums.MemberRoleSales,
	}
}

func newTestRepo(dealershipID uuid.UUID) *stubDealsRepo {
	return &stubDealsRepo{
		client: &models.Client{
			ID:           uuid.New(),
			DealershipID: dealershipID,
			FirstName:    "Maria",
			LastName:     "Santos",
		},
		vehicle: &models.Vehicle{
			ID:           uuid.New(),
			DealershipID: dealershipID,
			VIN:          "1HGBH41JXMN109186",
			Year:         2021,
			Make:         "Honda",
			Model:        "Accord",
			Price:        24500,
			Status:       enums.VehicleStatusAvailable,
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestCreateComputesTotals(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	metrics := &countingMetrics{}
	svc, err := NewService(repo, stubTxRunner{}, metrics)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	deal, err := svc.Create(context.Background(), testActor(dealershipID), CreateInput{
		ClientID:     repo.client.ID,
		VehicleID:    repo.vehicle.ID,
		Type:         enums.DealTypeRetail,
		SaleAmount:   15000,
		SalesTax:     floatPtr(1200),
		DocFee:       floatPtr(499),
		TradeInValue: floatPtr(2000),
		DownPayment:  floatPtr(3000),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if deal.TotalAmount != 14699 {
		t.Fatalf("expected total 14699, got %v", deal.TotalAmount)
	}
	if deal.FinancedAmount != 11699 {
		t.Fatalf("expected financed 11699, got %v", deal.FinancedAmount)
	}
	if deal.Status != enums.DealStatusPending {
		t.Fatalf("expected default pending status, got %s", deal.Status)
	}
	if metrics.created != 1 {
		t.Fatalf("expected deal counter incremented once, got %d", metrics.created)
	}
}

func TestCreateRejectsNonPositiveSaleAmount(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	_, err := svc.Create(context.Background(), testActor(dealershipID), CreateInput{
		ClientID:   repo.client.ID,
		VehicleID:  repo.vehicle.ID,
		Type:       enums.DealTypeRetail,
		SaleAmount: 0,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequiresActor(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	_, err := svc.Create(context.Background(), Actor{}, CreateInput{
		ClientID:   repo.client.ID,
		VehicleID:  repo.vehicle.ID,
		Type:       enums.DealTypeRetail,
		SaleAmount: 1000,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestCreateRejectsCrossDealershipClient(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	repo.client.DealershipID = uuid.New()
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	_, err := svc.Create(context.Background(), testActor(dealershipID), CreateInput{
		ClientID:   repo.client.ID,
		VehicleID:  repo.vehicle.ID,
		Type:       enums.DealTypeRetail,
		SaleAmount: 1000,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for cross-dealership client, got %v", err)
	}
}

func TestCreateRejectsSoldVehicle(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	repo.vehicle.Status = enums.VehicleStatusSold
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	_, err := svc.Create(context.Background(), testActor(dealershipID), CreateInput{
		ClientID:   repo.client.ID,
		VehicleID:  repo.vehicle.ID,
		Type:       enums.DealTypeRetail,
		SaleAmount: 1000,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for sold vehicle, got %v", err)
	}
}

func TestCreateCompletedMarksVehicleSoldAndDefaultsSaleDate(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	status := enums.DealStatusCompleted
	deal, err := svc.Create(context.Background(), testActor(dealershipID), CreateInput{
		ClientID:   repo.client.ID,
		VehicleID:  repo.vehicle.ID,
		Type:       enums.DealTypeWholesale,
		Status:     &status,
		SaleAmount: 9000,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if deal.SaleDate == nil {
		t.Fatal("expected sale date defaulted for completed deal")
	}
	if got := repo.vehicleStatuses[repo.vehicle.ID]; got != enums.VehicleStatusSold {
		t.Fatalf("expected vehicle marked sold, got %s", got)
	}
}

func TestCreateInProgressReservesVehicle(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	status := enums.DealStatusInProgress
	_, err := svc.Create(context.Background(), testActor(dealershipID), CreateInput{
		ClientID:   repo.client.ID,
		VehicleID:  repo.vehicle.ID,
		Type:       enums.DealTypeLease,
		Status:     &status,
		SaleAmount: 18000,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := repo.vehicleStatuses[repo.vehicle.ID]; got != enums.VehicleStatusReserved {
		t.Fatalf("expected vehicle reserved, got %s", got)
	}
}

func TestUpdateRecomputesTotalsWhenMoneyChanges(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	repo.deal = &models.Deal{
		ID:             uuid.New(),
		DealershipID:   dealershipID,
		ClientID:       repo.client.ID,
		VehicleID:      repo.vehicle.ID,
		Type:           enums.DealTypeRetail,
		Status:         enums.DealStatusPending,
		SaleAmount:     15000,
		SalesTax:       1200,
		DocFee:         499,
		TradeInValue:   2000,
		DownPayment:    3000,
		TotalAmount:    14699,
		FinancedAmount: 11699,
	}
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	_, err := svc.Update(context.Background(), testActor(dealershipID), repo.deal.ID, UpdateInput{
		SaleAmount: floatPtr(16000),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if got := repo.updates["total_amount"]; got != 15699.0 {
		t.Fatalf("expected total recomputed to 15699, got %v", got)
	}
	if got := repo.updates["financed_amount"]; got != 12699.0 {
		t.Fatalf("expected financed recomputed to 12699, got %v", got)
	}
	// Untouched money fields carry over into the recompute.
	if got := repo.updates["sales_tax"]; got != 1200.0 {
		t.Fatalf("expected sales tax preserved, got %v", got)
	}
}

func TestUpdateRejectsInvalidStatusTransition(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	repo.deal = &models.Deal{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		ClientID:     repo.client.ID,
		VehicleID:    repo.vehicle.ID,
		Type:         enums.DealTypeRetail,
		Status:       enums.DealStatusCancelled,
		SaleAmount:   15000,
	}
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	status := enums.DealStatusCompleted
	_, err := svc.Update(context.Background(), testActor(dealershipID), repo.deal.ID, UpdateInput{
		Status: &status,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateCancellingCompletedDealReleasesVehicle(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	now := time.Now().UTC()
	repo.deal = &models.Deal{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		ClientID:     repo.client.ID,
		VehicleID:    repo.vehicle.ID,
		Type:         enums.DealTypeRetail,
		Status:       enums.DealStatusCompleted,
		SaleAmount:   15000,
		SaleDate:     &now,
	}
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	status := enums.DealStatusCancelled
	_, err := svc.Update(context.Background(), testActor(dealershipID), repo.deal.ID, UpdateInput{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got := repo.vehicleStatuses[repo.vehicle.ID]; got != enums.VehicleStatusAvailable {
		t.Fatalf("expected vehicle released, got %s", got)
	}
}

func TestUpdateCrossDealershipDealHiddenAsNotFound(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	repo.deal = &models.Deal{
		ID:           uuid.New(),
		DealershipID: uuid.New(),
		ClientID:     repo.client.ID,
		VehicleID:    repo.vehicle.ID,
		Status:       enums.DealStatusPending,
	}
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	_, err := svc.Update(context.Background(), testActor(dealershipID), repo.deal.ID, UpdateInput{
		SaleAmount: floatPtr(100),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCompletedDealReleasesVehicle(t *testing.T) {
	dealershipID := uuid.New()
	repo := newTestRepo(dealershipID)
	repo.deal = &models.Deal{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		ClientID:     repo.client.ID,
		VehicleID:    repo.vehicle.ID,
		Status:       enums.DealStatusCompleted,
	}
	svc, _ := NewService(repo, stubTxRunner{}, nil)

	if err := svc.Delete(context.Background(), testActor(dealershipID), repo.deal.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected deal deleted")
	}
	if got := repo.vehicleStatuses[repo.vehicle.ID]; got != enums.VehicleStatusAvailable {
		t.Fatalf("expected vehicle released after delete, got %s", got)
	}
}

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from    enums.DealStatus
		to      enums.DealStatus
		allowed bool
	}{
		{enums.DealStatusDraft, enums.DealStatusPending, true},
		{enums.DealStatusDraft, enums.DealStatusInProgress, true},
		{enums.DealStatusDraft, enums.DealStatusCancelled, true},
		{enums.DealStatusDraft, enums.DealStatusCompleted, false},
		{enums.DealStatusPending, enums.DealStatusCompleted, true},
		{enums.DealStatusPending, enums.DealStatusDraft, false},
		{enums.DealStatusInProgress, enums.DealStatusCompleted, true},
		{enums.DealStatusInProgress, enums.DealStatusPending, false},
		{enums.DealStatusCompleted, enums.DealStatusCancelled, true},
		{enums.DealStatusCompleted, enums.DealStatusInProgress, false},
		{enums.DealStatusCancelled, enums.DealStatusPending, false},
		{enums.DealStatusCancelled, enums.DealStatusCompleted, false},
	}

	for _, tc := range cases {
		if got := canTransitionStatus(tc.from, tc.to); got != tc.allowed {
			t.Errorf("transition %s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
