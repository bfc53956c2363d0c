package controllers

import (
	"net/http"
	"strings"

	"github.com/universalautobrokers/dealerdesk-backend/api/responses"
	"github.com/universalautobrokers/dealerdesk-backend/api/validators"
	"github.com/universalautobrokers/dealerdesk-backend/internal/documents"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
)

type documentCreateRequest struct {
	Type     string  `json:"type" validate:"required"`
	Filename string  `json:"filename" validate:"required,min=1,max=255"`
	FileSize *int64  `json:"file_size,omitempty" validate:"omitempty,gte=0"`
	Checksum *string `json:"checksum,omitempty" validate:"omitempty,max=128"`
}

func (r documentCreateRequest) toInput() (documents.CreateInput, error) {
	docType, err := enums.ParseDocumentType(r.Type)
	if err != nil {
		return documents.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document type")
	}
	return documents.CreateInput{
		Type:     docType,
		Filename: strings.TrimSpace(r.Filename),
		FileSize: r.FileSize,
		Checksum: r.Checksum,
	}, nil
}

// DocumentCreate attaches generated paperwork metadata to a deal.
func DocumentCreate(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload documentCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		document, err := svc.Create(r.Context(), dealershipID, dealID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, document)
	}
}

// DocumentList returns the paperwork attached to a deal.
func DocumentList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		docs, err := svc.ListByDeal(r.Context(), dealershipID, dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, docs)
	}
}

// DocumentDelete removes one document from a deal.
func DocumentDelete(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		dealershipID, err := dealershipIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		documentID, err := parseIDParam(r, "documentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), dealershipID, dealID, documentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
