package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/internal/deals"
	"github.com/universalautobrokers/dealerdesk-backend/internal/pricing"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
)

type dealSubmitter interface {
	Create(ctx context.Context, actor deals.Actor, input deals.CreateInput) (*models.Deal, error)
}

type clientFinder interface {
	Get(ctx context.Context, dealershipID, clientID uuid.UUID) (*models.Client, error)
}

type vehicleFinder interface {
	Get(ctx context.Context, dealershipID, vehicleID uuid.UUID) (*models.Vehicle, error)
}

// Service drives the deal creation wizard: one draft per user, explicit step
// transitions, and a final submit that hands the draft to the deals service.
type Service interface {
	Start(ctx context.Context, actor deals.Actor) (*Draft, error)
	Get(ctx context.Context, actor deals.Actor) (*Draft, error)
	SelectClient(ctx context.Context, actor deals.Actor, clientID uuid.UUID) (*Draft, error)
	SelectVehicle(ctx context.Context, actor deals.Actor, vehicleID uuid.UUID) (*Draft, error)
	Update(ctx context.Context, actor deals.Actor, update Update) (*Draft, error)
	Advance(ctx context.Context, actor deals.Actor) (*Draft, error)
	Back(ctx context.Context, actor deals.Actor) (*Draft, error)
	Submit(ctx context.Context, actor deals.Actor) (*models.Deal, error)
	Discard(ctx context.Context, actor deals.Actor) error
}

type service struct {
	store    *Store
	deals    dealSubmitter
	clients  clientFinder
	vehicles vehicleFinder
}

// NewService builds a wizard service with the required dependencies.
func NewService(store *Store, dealsSvc dealSubmitter, clientsSvc clientFinder, vehiclesSvc vehicleFinder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if dealsSvc == nil {
		return nil, fmt.Errorf("deals service required")
	}
	if clientsSvc == nil {
		return nil, fmt.Errorf("clients service required")
	}
	if vehiclesSvc == nil {
		return nil, fmt.Errorf("vehicles service required")
	}
	return &service{
		store:    store,
		deals:    dealsSvc,
		clients:  clientsSvc,
		vehicles: vehiclesSvc,
	}, nil
}

func (s *service) Start(ctx context.Context, actor deals.Actor) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	if existing := s.store.Get(actor.UserID); existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	draft := &Draft{
		UserID:       actor.UserID,
		DealershipID: actor.DealershipID,
		Step:         StepClient,
		Type:         enums.DealTypeRetail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	draft.recompute()
	s.store.Put(draft)
	return draft, nil
}

func (s *service) Get(ctx context.Context, actor deals.Actor) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.load(actor)
}

func (s *service) SelectClient(ctx context.Context, actor deals.Actor, clientID uuid.UUID) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	draft, err := s.load(actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.clients.Get(ctx, actor.DealershipID, clientID); err != nil {
		return nil, err
	}

	draft.ClientID = &clientID
	return s.save(draft), nil
}

func (s *service) SelectVehicle(ctx context.Context, actor deals.Actor, vehicleID uuid.UUID) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	draft, err := s.load(actor)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.Get(ctx, actor.DealershipID, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == enums.VehicleStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is already sold")
	}

	draft.VehicleID = &vehicleID
	// The asking price seeds the sale amount but never overwrites a figure
	// the operator already negotiated.
	if draft.SaleAmount == nil {
		price := vehicle.Price
		draft.SaleAmount = &price
	}
	return s.save(draft), nil
}

func (s *service) Update(ctx context.Context, actor deals.Actor, update Update) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	draft, err := s.load(actor)
	if err != nil {
		return nil, err
	}

	if update.Type != nil && !update.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal type")
	}

	draft.apply(update)
	return s.save(draft), nil
}

func (s *service) Advance(ctx context.Context, actor deals.Actor) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	draft, err := s.load(actor)
	if err != nil {
		return nil, err
	}

	if err := gateFor(draft, draft.Step); err != nil {
		return nil, err
	}

	next, ok := draft.Step.Next()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the final step")
	}
	draft.Step = next
	return s.save(draft), nil
}

func (s *service) Back(ctx context.Context, actor deals.Actor) (*Draft, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	draft, err := s.load(actor)
	if err != nil {
		return nil, err
	}

	prev, ok := draft.Step.Prev()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first step")
	}
	draft.Step = prev
	return s.save(draft), nil
}

func (s *service) Submit(ctx context.Context, actor deals.Actor) (*models.Deal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	draft, err := s.load(actor)
	if err != nil {
		return nil, err
	}

	if draft.Step != StepReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft has not reached the review step")
	}
	for _, step := range []Step{StepClient, StepVehicle, StepDetails} {
		if err := gateFor(draft, step); err != nil {
			return nil, err
		}
	}

	deal, err := s.deals.Create(ctx, actor, deals.CreateInput{
		ClientID:     *draft.ClientID,
		VehicleID:    *draft.VehicleID,
		Type:         draft.Type,
		SaleAmount:   pricing.AmountOrZero(draft.SaleAmount),
		SalesTax:     draft.SalesTax,
		DocFee:       draft.DocFee,
		TradeInValue: draft.TradeInValue,
		DownPayment:  draft.DownPayment,
		SaleDate:     draft.SaleDate,
		CobuyerData:  draft.CobuyerData,
	})
	if err != nil {
		// The draft stays put so the operator can fix the problem and
		// submit again.
		return nil, err
	}

	s.store.Delete(actor.UserID)
	return deal, nil
}

func (s *service) Discard(ctx context.Context, actor deals.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	s.store.Delete(actor.UserID)
	return nil
}

func (s *service) load(actor deals.Actor) (*Draft, error) {
	draft := s.store.Get(actor.UserID)
	if draft == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft in progress")
	}
	if draft.DealershipID != actor.DealershipID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft in progress")
	}
	return draft, nil
}

func (s *service) save(draft *Draft) *Draft {
	draft.UpdatedAt = time.Now().UTC()
	draft.recompute()
	s.store.Put(draft)
	return draft
}

// gateFor enforces what a step must have before the flow may move past it.
func gateFor(draft *Draft, step Step) error {
	switch step {
	case StepClient:
		if draft.ClientID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "select a client before continuing")
		}
	case StepVehicle:
		if draft.VehicleID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "select a vehicle before continuing")
		}
	case StepDetails:
		if !draft.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "choose a deal type before continuing")
		}
		if pricing.AmountOrZero(draft.SaleAmount) <= 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale amount must be greater than zero")
		}
	}
	return nil
}

func requireActor(actor deals.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.DealershipID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	return nil
}
