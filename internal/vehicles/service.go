package vehicles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service defines vehicle-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, dealershipID uuid.UUID, input CreateInput) (*models.Vehicle, error)
	Get(ctx context.Context, dealershipID, vehicleID uuid.UUID) (*models.Vehicle, error)
	GetByVIN(ctx context.Context, dealershipID uuid.UUID, vin string) (*models.Vehicle, error)
	Update(ctx context.Context, dealershipID, vehicleID uuid.UUID, input UpdateInput) (*models.Vehicle, error)
	Delete(ctx context.Context, dealershipID, vehicleID uuid.UUID) error
	List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*VehicleList, error)
}

type service struct {
	repo Repository
}

// NewService builds a vehicles service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dealershipID uuid.UUID, input CreateInput) (*models.Vehicle, error) {
	if dealershipID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	vin := strings.ToUpper(strings.TrimSpace(input.VIN))
	if vin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vin required")
	}
	if strings.TrimSpace(input.Make) == "" || strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle make and model required")
	}
	if input.Year <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle year required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Mileage < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mileage cannot be negative")
	}

	vehicle := &models.Vehicle{
		DealershipID: dealershipID,
		VIN:          vin,
		StockNumber:  input.StockNumber,
		Year:         input.Year,
		Make:         strings.TrimSpace(input.Make),
		Model:        strings.TrimSpace(input.Model),
		Trim:         input.Trim,
		Body:         input.Body,
		Transmission: input.Transmission,
		Engine:       input.Engine,
		Mileage:      input.Mileage,
		Color:        input.Color,
		Price:        input.Price,
		Cost:         input.Cost,
		Status:       enums.VehicleStatusAvailable,
		Description:  input.Description,
		Images:       input.Images,
	}
	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		if db.IsUniqueViolation(err, "vin") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vehicle with this vin already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, dealershipID, vehicleID uuid.UUID) (*models.Vehicle, error) {
	return s.find(ctx, dealershipID, vehicleID)
}

func (s *service) GetByVIN(ctx context.Context, dealershipID uuid.UUID, vin string) (*models.Vehicle, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if vin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vin required")
	}
	vehicle, err := s.repo.FindByVIN(ctx, dealershipID, vin)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle by vin")
	}
	return vehicle, nil
}

func (s *service) Update(ctx context.Context, dealershipID, vehicleID uuid.UUID, input UpdateInput) (*models.Vehicle, error) {
	if _, err := s.find(ctx, dealershipID, vehicleID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.StockNumber != nil {
		updates["stock_number"] = *input.StockNumber
	}
	if input.Year != nil {
		if *input.Year <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle year required")
		}
		updates["year"] = *input.Year
	}
	if input.Make != nil {
		if strings.TrimSpace(*input.Make) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "make cannot be blank")
		}
		updates["make"] = strings.TrimSpace(*input.Make)
	}
	if input.Model != nil {
		if strings.TrimSpace(*input.Model) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model cannot be blank")
		}
		updates["model"] = strings.TrimSpace(*input.Model)
	}
	if input.Trim != nil {
		updates["trim"] = *input.Trim
	}
	if input.Body != nil {
		updates["body"] = *input.Body
	}
	if input.Transmission != nil {
		updates["transmission"] = *input.Transmission
	}
	if input.Engine != nil {
		updates["engine"] = *input.Engine
	}
	if input.Mileage != nil {
		if *input.Mileage < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mileage cannot be negative")
		}
		updates["mileage"] = *input.Mileage
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Cost != nil {
		updates["cost"] = *input.Cost
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Images != nil {
		updates["images"] = input.Images
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, vehicleID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
		}
	}
	return s.find(ctx, dealershipID, vehicleID)
}

func (s *service) Delete(ctx context.Context, dealershipID, vehicleID uuid.UUID) error {
	vehicle, err := s.find(ctx, dealershipID, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.Status == enums.VehicleStatusSold {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "sold vehicles cannot be deleted")
	}

	count, err := s.repo.CountDeals(ctx, vehicleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vehicle deals")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has deals and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, vehicleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	return nil
}

func (s *service) List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*VehicleList, error) {
	if dealershipID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle status filter")
	}
	list, err := s.repo.List(ctx, dealershipID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return list, nil
}

func (s *service) find(ctx context.Context, dealershipID, vehicleID uuid.UUID) (*models.Vehicle, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if vehicle.DealershipID != dealershipID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	return vehicle, nil
}
