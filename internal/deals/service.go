package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/internal/pricing"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dealMetrics interface {
	IncDealCreated()
}

// Service defines deal-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*models.Deal, error)
	Get(ctx context.Context, actor Actor, dealID uuid.UUID) (*models.Deal, error)
	Update(ctx context.Context, actor Actor, dealID uuid.UUID, input UpdateInput) (*models.Deal, error)
	Delete(ctx context.Context, actor Actor, dealID uuid.UUID) error
	List(ctx context.Context, actor Actor, params pagination.Params, filters Filters) (*DealList, error)
	ListByClient(ctx context.Context, actor Actor, clientID uuid.UUID, params pagination.Params) (*DealList, error)
	ListByVehicle(ctx context.Context, actor Actor, vehicleID uuid.UUID, params pagination.Params) (*DealList, error)
	Stats(ctx context.Context, actor Actor) (*Stats, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics dealMetrics
}

// NewService builds a deals service with the required dependencies.
// Metrics may be nil when the caller does not record counters.
func NewService(repo Repository, tx txRunner, metrics dealMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		metrics: metrics,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Deal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal type")
	}
	if input.SaleAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale amount must be greater than zero")
	}

	status := enums.DealStatusPending
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal status")
		}
		status = *input.Status
	}

	totals := pricing.Calculate(pricing.Inputs{
		SaleAmount:   input.SaleAmount,
		SalesTax:     input.SalesTax,
		DocFee:       input.DocFee,
		TradeInValue: input.TradeInValue,
		DownPayment:  input.DownPayment,
	})

	var created *models.Deal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		client, err := repo.FindClientByID(ctx, input.ClientID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
		}
		if client.DealershipID != actor.DealershipID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}

		vehicle, err := repo.FindVehicleByID(ctx, input.VehicleID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
		}
		if vehicle.DealershipID != actor.DealershipID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		if vehicle.Status == enums.VehicleStatusSold {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is already sold")
		}

		deal := &models.Deal{
			DealershipID:   actor.DealershipID,
			ClientID:       input.ClientID,
			VehicleID:      input.VehicleID,
			CreatedBy:      actor.UserID,
			Type:           input.Type,
			Status:         status,
			SaleAmount:     input.SaleAmount,
			SalesTax:       pricing.AmountOrZero(input.SalesTax),
			DocFee:         pricing.AmountOrZero(input.DocFee),
			TradeInValue:   pricing.AmountOrZero(input.TradeInValue),
			DownPayment:    pricing.AmountOrZero(input.DownPayment),
			TotalAmount:    totals.TotalAmount,
			FinancedAmount: totals.FinancedAmount,
			SaleDate:       input.SaleDate,
			CobuyerData:    input.CobuyerData,
		}
		if status == enums.DealStatusCompleted && deal.SaleDate == nil {
			now := time.Now().UTC()
			deal.SaleDate = &now
		}

		created, err = repo.Create(ctx, deal)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
		}

		return applyVehicleSideEffect(ctx, repo, vehicle.ID, "", status)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncDealCreated()
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, actor Actor, dealID uuid.UUID) (*models.Deal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.find(ctx, actor, dealID)
}

func (s *service) Update(ctx context.Context, actor Actor, dealID uuid.UUID, input UpdateInput) (*models.Deal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deal, err := findScoped(ctx, repo, actor, dealID)
		if err != nil {
			return err
		}

		updates := map[string]any{}

		if input.ClientID != nil && *input.ClientID != deal.ClientID {
			client, err := repo.FindClientByID(ctx, *input.ClientID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
			}
			if client.DealershipID != actor.DealershipID {
				return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			updates["client_id"] = *input.ClientID
		}

		newVehicleID := deal.VehicleID
		if input.VehicleID != nil && *input.VehicleID != deal.VehicleID {
			vehicle, err := repo.FindVehicleByID(ctx, *input.VehicleID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
			}
			if vehicle.DealershipID != actor.DealershipID {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
			}
			if vehicle.Status == enums.VehicleStatusSold {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is already sold")
			}
			updates["vehicle_id"] = *input.VehicleID
			newVehicleID = *input.VehicleID
		}

		if input.Type != nil {
			if !input.Type.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid deal type")
			}
			updates["type"] = *input.Type
		}

		newStatus := deal.Status
		if input.Status != nil && *input.Status != deal.Status {
			if !input.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid deal status")
			}
			if !canTransitionStatus(deal.Status, *input.Status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("deal cannot move from %s to %s", deal.Status, *input.Status))
			}
			newStatus = *input.Status
			updates["status"] = newStatus
		}

		// Recompute totals whenever any money field changes.
		saleAmount := deal.SaleAmount
		if input.SaleAmount != nil {
			if *input.SaleAmount <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "sale amount must be greater than zero")
			}
			saleAmount = *input.SaleAmount
		}
		salesTax := deal.SalesTax
		if input.SalesTax != nil {
			salesTax = *input.SalesTax
		}
		docFee := deal.DocFee
		if input.DocFee != nil {
			docFee = *input.DocFee
		}
		tradeIn := deal.TradeInValue
		if input.TradeInValue != nil {
			tradeIn = *input.TradeInValue
		}
		downPayment := deal.DownPayment
		if input.DownPayment != nil {
			downPayment = *input.DownPayment
		}

		moneyChanged := input.SaleAmount != nil || input.SalesTax != nil ||
			input.DocFee != nil || input.TradeInValue != nil || input.DownPayment != nil
		if moneyChanged {
			totals := pricing.Calculate(pricing.Inputs{
				SaleAmount:   saleAmount,
				SalesTax:     &salesTax,
				DocFee:       &docFee,
				TradeInValue: &tradeIn,
				DownPayment:  &downPayment,
			})
			updates["sale_amount"] = saleAmount
			updates["sales_tax"] = salesTax
			updates["doc_fee"] = docFee
			updates["trade_in_value"] = tradeIn
			updates["down_payment"] = downPayment
			updates["total_amount"] = totals.TotalAmount
			updates["financed_amount"] = totals.FinancedAmount
		}

		if input.SaleDate != nil {
			updates["sale_date"] = *input.SaleDate
		}
		if input.CobuyerData != nil {
			updates["cobuyer_data"] = *input.CobuyerData
		}
		if newStatus == enums.DealStatusCompleted && deal.SaleDate == nil && input.SaleDate == nil {
			updates["sale_date"] = time.Now().UTC()
		}

		if len(updates) == 0 {
			return nil
		}
		if err := repo.Update(ctx, deal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal")
		}

		if newStatus != deal.Status {
			// A completed deal moving off the old vehicle frees it even
			// when the vehicle reference changed in the same patch.
			if err := applyVehicleSideEffect(ctx, repo, newVehicleID, deal.Status, newStatus); err != nil {
				return err
			}
		}
		if newVehicleID != deal.VehicleID && deal.Status == enums.DealStatusCompleted {
			if err := repo.UpdateVehicleStatus(ctx, deal.VehicleID, enums.VehicleStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release previous vehicle")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.find(ctx, actor, dealID)
}

func (s *service) Delete(ctx context.Context, actor Actor, dealID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deal, err := findScoped(ctx, repo, actor, dealID)
		if err != nil {
			return err
		}

		if err := repo.Delete(ctx, deal.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete deal")
		}

		if deal.Status == enums.DealStatusCompleted {
			if err := repo.UpdateVehicleStatus(ctx, deal.VehicleID, enums.VehicleStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release vehicle")
			}
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, filters Filters) (*DealList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal status filter")
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal type filter")
	}
	list, err := s.repo.List(ctx, actor.DealershipID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals")
	}
	return list, nil
}

func (s *service) ListByClient(ctx context.Context, actor Actor, clientID uuid.UUID, params pagination.Params) (*DealList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	list, err := s.repo.ListByClient(ctx, actor.DealershipID, clientID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals by client")
	}
	return list, nil
}

func (s *service) ListByVehicle(ctx context.Context, actor Actor, vehicleID uuid.UUID, params pagination.Params) (*DealList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	list, err := s.repo.ListByVehicle(ctx, actor.DealershipID, vehicleID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals by vehicle")
	}
	return list, nil
}

func (s *service) Stats(ctx context.Context, actor Actor) (*Stats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	stats, err := s.repo.Stats(ctx, actor.DealershipID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal stats")
	}
	return stats, nil
}

func (s *service) find(ctx context.Context, actor Actor, dealID uuid.UUID) (*models.Deal, error) {
	return findScoped(ctx, s.repo, actor, dealID)
}

func findScoped(ctx context.Context, repo Repository, actor Actor, dealID uuid.UUID) (*models.Deal, error) {
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	deal, err := repo.FindByID(ctx, dealID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if deal.DealershipID != actor.DealershipID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}
	return deal, nil
}

func requireActor(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.DealershipID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	return nil
}

// canTransitionStatus encodes the deal lifecycle. Completed deals can only
// be cancelled, which puts the vehicle back on the lot.
func canTransitionStatus(from, to enums.DealStatus) bool {
	switch from {
	case enums.DealStatusDraft:
		return to == enums.DealStatusPending || to == enums.DealStatusInProgress || to == enums.DealStatusCancelled
	case enums.DealStatusPending:
		return to == enums.DealStatusInProgress || to == enums.DealStatusCompleted || to == enums.DealStatusCancelled
	case enums.DealStatusInProgress:
		return to == enums.DealStatusCompleted || to == enums.DealStatusCancelled
	case enums.DealStatusCompleted:
		return to == enums.DealStatusCancelled
	default:
		return false
	}
}

func applyVehicleSideEffect(ctx context.Context, repo Repository, vehicleID uuid.UUID, from, to enums.DealStatus) error {
	switch {
	case to == enums.DealStatusCompleted:
		if err := repo.UpdateVehicleStatus(ctx, vehicleID, enums.VehicleStatusSold); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark vehicle sold")
		}
	case from == enums.DealStatusCompleted && to == enums.DealStatusCancelled:
		if err := repo.UpdateVehicleStatus(ctx, vehicleID, enums.VehicleStatusAvailable); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release vehicle")
		}
	case to == enums.DealStatusInProgress:
		if err := repo.UpdateVehicleStatus(ctx, vehicleID, enums.VehicleStatusReserved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve vehicle")
		}
	}
	return nil
}
