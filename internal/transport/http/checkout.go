package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kferacho3/BodegaDanes/internal/app"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

// SessionCreator is the minimal interface for the checkout endpoint.
type SessionCreator interface {
	CreateSession(ctx context.Context, in app.CreateSessionInput) (string, error)
}

// HandleCreateCheckoutSession creates the payment session the wizard
// redirects to and returns its ID.
func HandleCreateCheckoutSession(svc SessionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req checkoutSessionRequest
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		id, err := svc.CreateSession(r.Context(), app.CreateSessionInput{
			Date:             req.Date,
			ServiceID:        req.ServiceID,
			ConfirmationCode: req.ConfirmationCode,
			Email:            req.Email,
			Theme:            req.Theme,
			Time:             req.Time,
			Location:         req.Location,
			Guests:           req.Guests.String(),
			Notes:            req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidDate):
				writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			case errors.Is(err, domain.ErrServiceIDRequired):
				writeError(w, http.StatusBadRequest, codeServiceIDRequired, err.Error())
			case errors.Is(err, domain.ErrServiceNotFound):
				writeError(w, http.StatusBadRequest, codeServiceNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeStripeError, "checkout session creation failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

type checkoutSessionRequest struct {
	Date             string      `json:"date"`
	ServiceID        string      `json:"serviceId"`
	ConfirmationCode string      `json:"confirmationCode"`
	Email            string      `json:"email"`
	Theme            string      `json:"theme"`
	Time             string      `json:"time"`
	Location         string      `json:"location"`
	Guests           json.Number `json:"guests"`
	Notes            string      `json:"notes"`
}
