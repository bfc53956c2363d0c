package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service defines client-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, dealershipID uuid.UUID, input CreateInput) (*models.Client, error)
	Get(ctx context.Context, dealershipID, clientID uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, dealershipID, clientID uuid.UUID, input UpdateInput) (*models.Client, error)
	Delete(ctx context.Context, dealershipID, clientID uuid.UUID) error
	List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*ClientList, error)
}

type service struct {
	repo Repository
}

// NewService builds a clients service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dealershipID uuid.UUID, input CreateInput) (*models.Client, error) {
	if dealershipID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client first and last name required")
	}

	client := &models.Client{
		DealershipID:   dealershipID,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		City:           input.City,
		State:          input.State,
		ZipCode:        input.ZipCode,
		DriversLicense: input.DriversLicense,
	}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, dealershipID, clientID uuid.UUID) (*models.Client, error) {
	return s.find(ctx, dealershipID, clientID)
}

func (s *service) Update(ctx context.Context, dealershipID, clientID uuid.UUID, input UpdateInput) (*models.Client, error) {
	if _, err := s.find(ctx, dealershipID, clientID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be blank")
		}
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name cannot be blank")
		}
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	setString("email", input.Email)
	setString("phone", input.Phone)
	setString("address", input.Address)
	setString("city", input.City)
	setString("state", input.State)
	setString("zip_code", input.ZipCode)
	setString("drivers_license", input.DriversLicense)

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, clientID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
		}
	}
	return s.find(ctx, dealershipID, clientID)
}

func (s *service) Delete(ctx context.Context, dealershipID, clientID uuid.UUID) error {
	if _, err := s.find(ctx, dealershipID, clientID); err != nil {
		return err
	}

	count, err := s.repo.CountDeals(ctx, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count client deals")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "client has deals and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, clientID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
	}
	return nil
}

func (s *service) List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*ClientList, error) {
	if dealershipID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	list, err := s.repo.List(ctx, dealershipID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	return list, nil
}

func (s *service) find(ctx context.Context, dealershipID, clientID uuid.UUID) (*models.Client, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	if client.DealershipID != dealershipID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return client, nil
}
