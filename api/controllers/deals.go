package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/universalautobrokers/dealerdesk-backend/api/responses"
	"github.com/universalautobrokers/dealerdesk-backend/api/validators"
	"github.com/universalautobrokers/dealerdesk-backend/internal/deals"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
)

type dealCreateRequest struct {
	ClientID     string     `json:"client_id" validate:"required,uuid4"`
	VehicleID    string     `json:"vehicle_id" validate:"required,uuid4"`
	Type         string     `json:"type" validate:"required"`
	Status       *string    `json:"status,omitempty"`
	SaleAmount   float64    `json:"sale_amount" validate:"required,gt=0"`
	SalesTax     *float64   `json:"sales_tax,omitempty" validate:"omitempty,gte=0"`
	DocFee       *float64   `json:"doc_fee,omitempty" validate:"omitempty,gte=0"`
	TradeInValue *float64   `json:"trade_in_value,omitempty" validate:"omitempty,gte=0"`
	DownPayment  *float64   `json:"down_payment,omitempty" validate:"omitempty,gte=0"`
	SaleDate     *time.Time `json:"sale_date,omitempty"`
	CobuyerData  *string    `json:"cobuyer_data,omitempty"`
}

func (r dealCreateRequest) toInput() (deals.CreateInput, error) {
	clientID, err := uuid.Parse(r.ClientID)
	if err != nil {
		return deals.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid client id")
	}
	vehicleID, err := uuid.Parse(r.VehicleID)
	if err != nil {
		return deals.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id")
	}
	dealType, err := enums.ParseDealType(r.Type)
	if err != nil {
		return deals.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal type")
	}

	input := deals.CreateInput{
		ClientID:     clientID,
		VehicleID:    vehicleID,
		Type:         dealType,
		SaleAmount:   r.SaleAmount,
		SalesTax:     r.SalesTax,
		DocFee:       r.DocFee,
		TradeInValue: r.TradeInValue,
		DownPayment:  r.DownPayment,
		SaleDate:     r.SaleDate,
		CobuyerData:  r.CobuyerData,
	}
	if r.Status != nil {
		status, err := enums.ParseDealStatus(*r.Status)
		if err != nil {
			return deals.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal status")
		}
		input.Status = &status
	}
	return input, nil
}

type dealUpdateRequest struct {
	ClientID     *string    `json:"client_id,omitempty" validate:"omitempty,uuid4"`
	VehicleID    *string    `json:"vehicle_id,omitempty" validate:"omitempty,uuid4"`
	Type         *string    `json:"type,omitempty"`
	Status       *string    `json:"status,omitempty"`
	SaleAmount   *float64   `json:"sale_amount,omitempty" validate:"omitempty,gt=0"`
	SalesTax     *float64   `json:"sales_tax,omitempty" validate:"omitempty,gte=0"`
	DocFee       *float64   `json:"doc_fee,omitempty" validate:"omitempty,gte=0"`
	TradeInValue *float64   `json:"trade_in_value,omitempty" validate:"omitempty,gte=0"`
	DownPayment  *float64   `json:"down_payment,omitempty" validate:"omitempty,gte=0"`
	SaleDate     *time.Time `json:"sale_date,omitempty"`
	CobuyerData  *string    `json:"cobuyer_data,omitempty"`
}

func (r dealUpdateRequest) toInput() (deals.UpdateInput, error) {
	input := deals.UpdateInput{
		SaleAmount:   r.SaleAmount,
		SalesTax:     r.SalesTax,
		DocFee:       r.DocFee,
		TradeInValue: r.TradeInValue,
		DownPayment:  r.DownPayment,
		SaleDate:     r.SaleDate,
		CobuyerData:  r.CobuyerData,
	}
	if r.ClientID != nil {
		id, err := uuid.Parse(*r.ClientID)
		if err != nil {
			return deals.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid client id")
		}
		input.ClientID = &id
	}
	if r.VehicleID != nil {
		id, err := uuid.Parse(*r.VehicleID)
		if err != nil {
			return deals.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id")
		}
		input.VehicleID = &id
	}
	if r.Type != nil {
		dealType, err := enums.ParseDealType(*r.Type)
		if err != nil {
			return deals.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal type")
		}
		input.Type = &dealType
	}
	if r.Status != nil {
		status, err := enums.ParseDealStatus(*r.Status)
		if err != nil {
			return deals.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal status")
		}
		input.Status = &status
	}
	return input, nil
}

// DealCreate persists a deal after pricing and state checks.
func DealCreate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dealCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

// DealList returns a cursor-paginated page of the dealership's deals.
func DealList(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildDealFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientIDParam := strings.TrimSpace(r.URL.Query().Get("client_id"))
		vehicleIDParam := strings.TrimSpace(r.URL.Query().Get("vehicle_id"))

		var list *deals.DealList
		switch {
		case clientIDParam != "":
			clientID, parseErr := uuid.Parse(clientIDParam)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid client id"))
				return
			}
			list, err = svc.ListByClient(r.Context(), actor, clientID, params)
		case vehicleIDParam != "":
			vehicleID, parseErr := uuid.Parse(vehicleIDParam)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid vehicle id"))
				return
			}
			list, err = svc.ListByVehicle(r.Context(), actor, vehicleID, params)
		default:
			list, err = svc.List(r.Context(), actor, params, filters)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DealDetail returns a deal with its client, vehicle and documents preloaded.
func DealDetail(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Get(r.Context(), actor, dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealUpdate applies a sparse patch and recomputes pricing when money fields move.
func DealUpdate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dealUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Update(r.Context(), actor, dealID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealDelete removes a deal together with its documents.
func DealDelete(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, dealID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// DealStats returns the dealership-wide rollup for the dashboard.
func DealStats(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func buildDealFilters(r *http.Request) (deals.Filters, error) {
	filters := deals.Filters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDealStatus(raw)
		if err != nil {
			return deals.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		dealType, err := enums.ParseDealType(raw)
		if err != nil {
			return deals.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		filters.Type = &dealType
	}

	dateFrom, err := validators.ParseQueryTime(r, "date_from")
	if err != nil {
		return deals.Filters{}, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := validators.ParseQueryTime(r, "date_to")
	if err != nil {
		return deals.Filters{}, err
	}
	filters.DateTo = dateTo

	filters.Query = validators.SanitizeString(r.URL.Query().Get("q"), 120)

	return filters, nil
}
