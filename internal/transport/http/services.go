package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/kferacho3/BodegaDanes/internal/domain"
)

// CatalogReader is the minimal interface for the public services endpoint.
type CatalogReader interface {
	Services(ctx context.Context) ([]domain.ServiceTier, error)
	ServicesOn(ctx context.Context, date string) ([]domain.ServiceTier, error)
}

// HandleListServices returns the bookable service tiers from the
// processor-backed catalog. With a ?date=YYYY-MM-DD query the response is
// scoped to that day: its snapshot when one exists, the global catalog
// otherwise.
func HandleListServices(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var tiers []domain.ServiceTier
		var err error
		if date := r.URL.Query().Get("date"); date != "" {
			tiers, err = svc.ServicesOn(r.Context(), date)
		} else {
			tiers, err = svc.Services(r.Context())
		}
		if err != nil {
			if errors.Is(err, domain.ErrInvalidDate) {
				writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeStripeError, "catalog fetch failed")
			return
		}
		if tiers == nil {
			tiers = []domain.ServiceTier{}
		}
		writeJSON(w, http.StatusOK, tiers)
	}
}
