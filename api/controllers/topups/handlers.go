package topups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/vendorcart-backend/api/middleware"
	"github.com/angelmondragon/vendorcart-backend/api/responses"
	"github.com/angelmondragon/vendorcart-backend/internal/topup"
	pkgerrors "github.com/angelmondragon/vendorcart-backend/pkg/errors"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
)

// TopUpGet returns a pending top-up owned by the buyer.
func TopUpGet(svc topup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "top-up service unavailable"))
			return
		}

		id, err := topUpIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), middleware.BuyerIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// TopUpComplete is called by the deposit flow once the wallet has been
// funded; it replays the deferred submission.
func TopUpComplete(svc topup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "top-up service unavailable"))
			return
		}

		id, err := topUpIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Complete(r.Context(), middleware.BuyerIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func topUpIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "topUpId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid top-up id")
	}
	return id, nil
}
