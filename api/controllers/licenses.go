package controllers

import (
	"net/http"
	"strings"

	"github.com/universalautobrokers/dealerdesk-backend/api/responses"
	"github.com/universalautobrokers/dealerdesk-backend/api/validators"
	"github.com/universalautobrokers/dealerdesk-backend/internal/licenses"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
)

type licenseActivateRequest struct {
	Key        string  `json:"key" validate:"required,min=8,max=120"`
	MachineID  string  `json:"machine_id" validate:"required,min=4,max=120"`
	Hostname   *string `json:"hostname,omitempty" validate:"omitempty,max=255"`
	Platform   *string `json:"platform,omitempty" validate:"omitempty,max=60"`
	AppVersion *string `json:"app_version,omitempty" validate:"omitempty,max=40"`
}

func (r licenseActivateRequest) toInput() licenses.ActivateInput {
	return licenses.ActivateInput{
		Key:        strings.TrimSpace(r.Key),
		MachineID:  strings.TrimSpace(r.MachineID),
		Hostname:   r.Hostname,
		Platform:   r.Platform,
		AppVersion: r.AppVersion,
	}
}

type licenseCheckRequest struct {
	Key       string `json:"key" validate:"required,min=8,max=120"`
	MachineID string `json:"machine_id" validate:"required,min=4,max=120"`
}

// LicenseActivate binds a license key to the calling machine.
func LicenseActivate(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var payload licenseActivateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		license, err := svc.Activate(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, license)
	}
}

// LicenseValidate answers whether the key is still good for this machine.
func LicenseValidate(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var payload licenseCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Validate(r.Context(), strings.TrimSpace(payload.Key), strings.TrimSpace(payload.MachineID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// LicenseDeactivate releases the machine binding so the key can move.
func LicenseDeactivate(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var payload licenseCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), strings.TrimSpace(payload.Key), strings.TrimSpace(payload.MachineID)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// LicenseList returns the dealership's license keys.
func LicenseList(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), dealershipID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
