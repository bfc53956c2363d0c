package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/universalautobrokers/dealerdesk-backend/api/middleware"
	"github.com/universalautobrokers/dealerdesk-backend/internal/deals"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
)

// actorFromRequest reconstructs the authenticated actor from the values the
// auth middleware placed on the request context.
func actorFromRequest(r *http.Request) (deals.Actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return deals.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}

	dealershipID := middleware.DealershipIDFromContext(r.Context())
	if dealershipID == "" {
		return deals.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return deals.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}

	did, err := uuid.Parse(dealershipID)
	if err != nil {
		return deals.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealership id")
	}

	return deals.Actor{
		UserID:       uid,
		DealershipID: did,
		Role:         enums.MemberRole(middleware.RoleFromContext(r.Context())),
	}, nil
}

// parseBodyID parses a UUID carried in a request body field.
func parseBodyID(raw, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

// dealershipIDFromRequest is the narrower variant for handlers that only need
// the tenant scope.
func dealershipIDFromRequest(r *http.Request) (uuid.UUID, error) {
	dealershipID := middleware.DealershipIDFromContext(r.Context())
	if dealershipID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	did, err := uuid.Parse(dealershipID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealership id")
	}
	return did, nil
}
