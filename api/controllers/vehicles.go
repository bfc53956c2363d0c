package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/universalautobrokers/dealerdesk-backend/api/responses"
	"github.com/universalautobrokers/dealerdesk-backend/api/validators"
	"github.com/universalautobrokers/dealerdesk-backend/internal/vehicles"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
)

type vehicleCreateRequest struct {
	VIN          string   `json:"vin" validate:"required,len=17"`
	StockNumber  *string  `json:"stock_number,omitempty" validate:"omitempty,max=40"`
	Year         int      `json:"year" validate:"required,gte=1900,lte=2100"`
	Make         string   `json:"make" validate:"required,min=1,max=60"`
	Model        string   `json:"model" validate:"required,min=1,max=60"`
	Trim         *string  `json:"trim,omitempty" validate:"omitempty,max=60"`
	Body         *string  `json:"body,omitempty" validate:"omitempty,max=60"`
	Transmission *string  `json:"transmission,omitempty" validate:"omitempty,max=60"`
	Engine       *string  `json:"engine,omitempty" validate:"omitempty,max=60"`
	Mileage      int      `json:"mileage" validate:"gte=0"`
	Color        *string  `json:"color,omitempty" validate:"omitempty,max=40"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Cost         *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Description  *string  `json:"description,omitempty"`
	Images       []string `json:"images,omitempty"`
}

func (r vehicleCreateRequest) toInput() vehicles.CreateInput {
	return vehicles.CreateInput{
		VIN:          strings.TrimSpace(r.VIN),
		StockNumber:  r.StockNumber,
		Year:         r.Year,
		Make:         strings.TrimSpace(r.Make),
		Model:        strings.TrimSpace(r.Model),
		Trim:         r.Trim,
		Body:         r.Body,
		Transmission: r.Transmission,
		Engine:       r.Engine,
		Mileage:      r.Mileage,
		Color:        r.Color,
		Price:        r.Price,
		Cost:         r.Cost,
		Description:  r.Description,
		Images:       r.Images,
	}
}

type vehicleUpdateRequest struct {
	StockNumber  *string  `json:"stock_number,omitempty" validate:"omitempty,max=40"`
	Year         *int     `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Make         *string  `json:"make,omitempty" validate:"omitempty,min=1,max=60"`
	Model        *string  `json:"model,omitempty" validate:"omitempty,min=1,max=60"`
	Trim         *string  `json:"trim,omitempty" validate:"omitempty,max=60"`
	Body         *string  `json:"body,omitempty" validate:"omitempty,max=60"`
	Transmission *string  `json:"transmission,omitempty" validate:"omitempty,max=60"`
	Engine       *string  `json:"engine,omitempty" validate:"omitempty,max=60"`
	Mileage      *int     `json:"mileage,omitempty" validate:"omitempty,gte=0"`
	Color        *string  `json:"color,omitempty" validate:"omitempty,max=40"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Cost         *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Description  *string  `json:"description,omitempty"`
	Images       []string `json:"images,omitempty"`
}

func (r vehicleUpdateRequest) toInput() vehicles.UpdateInput {
	return vehicles.UpdateInput{
		StockNumber:  r.StockNumber,
		Year:         r.Year,
		Make:         r.Make,
		Model:        r.Model,
		Trim:         r.Trim,
		Body:         r.Body,
		Transmission: r.Transmission,
		Engine:       r.Engine,
		Mileage:      r.Mileage,
		Color:        r.Color,
		Price:        r.Price,
		Cost:         r.Cost,
		Description:  r.Description,
		Images:       r.Images,
	}
}

// VehicleCreate adds a unit to the dealership's inventory.
func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Create(r.Context(), dealershipID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// VehicleList returns a cursor-paginated inventory page with optional filters.
func VehicleList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
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

		filters := vehicles.Filters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseVehicleStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), dealershipID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// VehicleDetail returns a single vehicle, looked up by id or by VIN.
func VehicleDetail(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := parseIDParam(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Get(r.Context(), dealershipID, vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// VehicleByVIN resolves inventory by its VIN for wizard lookups and scanners.
func VehicleByVIN(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vin := strings.TrimSpace(chi.URLParam(r, "vin"))
		if vin == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vin is required"))
			return
		}

		vehicle, err := svc.GetByVIN(r.Context(), dealershipID, vin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// VehicleUpdate applies a sparse patch to the vehicle record.
func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := parseIDParam(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Update(r.Context(), dealershipID, vehicleID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// VehicleDelete removes an unsold vehicle with no deals on file.
func VehicleDelete(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := parseIDParam(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), dealershipID, vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
