package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/universalautobrokers/dealerdesk-backend/api/responses"
	"github.com/universalautobrokers/dealerdesk-backend/api/validators"
	"github.com/universalautobrokers/dealerdesk-backend/internal/clients"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
)

type clientCreateRequest struct {
	FirstName      string  `json:"first_name" validate:"required,min=1,max=80"`
	LastName       string  `json:"last_name" validate:"required,min=1,max=80"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address        *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City           *string `json:"city,omitempty" validate:"omitempty,max=80"`
	State          *string `json:"state,omitempty" validate:"omitempty,max=40"`
	ZipCode        *string `json:"zip_code,omitempty" validate:"omitempty,max=16"`
	DriversLicense *string `json:"drivers_license,omitempty" validate:"omitempty,max=40"`
}

func (r clientCreateRequest) toInput() clients.CreateInput {
	return clients.CreateInput{
		FirstName:      strings.TrimSpace(r.FirstName),
		LastName:       strings.TrimSpace(r.LastName),
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		DriversLicense: r.DriversLicense,
	}
}

type clientUpdateRequest struct {
	FirstName      *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=80"`
	LastName       *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=80"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address        *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City           *string `json:"city,omitempty" validate:"omitempty,max=80"`
	State          *string `json:"state,omitempty" validate:"omitempty,max=40"`
	ZipCode        *string `json:"zip_code,omitempty" validate:"omitempty,max=16"`
	DriversLicense *string `json:"drivers_license,omitempty" validate:"omitempty,max=40"`
}

func (r clientUpdateRequest) toInput() clients.UpdateInput {
	return clients.UpdateInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		DriversLicense: r.DriversLicense,
	}
}

// ClientCreate registers a client record for the active dealership.
func ClientCreate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Create(r.Context(), dealershipID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

// ClientList returns a cursor-paginated page of the dealership's clients.
func ClientList(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
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
		filters := clients.Filters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
		}

		list, err := svc.List(r.Context(), dealershipID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ClientDetail returns a single client scoped to the active dealership.
func ClientDetail(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientID, err := parseIDParam(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Get(r.Context(), dealershipID, clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

// ClientUpdate applies a sparse patch to the client record.
func ClientUpdate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientID, err := parseIDParam(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Update(r.Context(), dealershipID, clientID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

// ClientDelete removes a client with no deals on file.
func ClientDelete(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientID, err := parseIDParam(r, "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), dealershipID, clientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
