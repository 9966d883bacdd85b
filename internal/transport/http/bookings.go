package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kferacho3/BodegaDanes/internal/app"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

// Reserver is the minimal interface needed to create a reservation.
type Reserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (string, error)
}

// HandleCreateBooking locks the date and stores the provisional booking
// before the client redirects to payment.
func HandleCreateBooking(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		code, err := svc.Reserve(r.Context(), app.ReserveInput{
			Date:          req.Date,
			ServiceID:     req.ServiceID,
			Meta:          req.Meta,
			CustomerEmail: emailFromMeta(req.Meta),
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidDate):
				writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			case errors.Is(err, domain.ErrServiceIDRequired):
				writeError(w, http.StatusBadRequest, codeServiceIDRequired, err.Error())
			case errors.Is(err, domain.ErrDayNotBookable):
				writeError(w, http.StatusConflict, codeDayNotBookable, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, createBookingResponse{OK: true, ConfirmationCode: code})
	}
}

type createBookingRequest struct {
	Date      string         `json:"date"`
	ServiceID string         `json:"serviceId"`
	Meta      map[string]any `json:"meta"`
}

type createBookingResponse struct {
	OK               bool   `json:"ok"`
	ConfirmationCode string `json:"confirmationCode"`
}

// emailFromMeta lifts the wizard's optional email answer out of the
// free-form questionnaire so it lands in its own column.
func emailFromMeta(meta map[string]any) string {
	if email, ok := meta["email"].(string); ok {
		return email
	}
	return ""
}

// BookingFinder is the minimal interface needed for the lookup endpoint.
type BookingFinder interface {
	Lookup(ctx context.Context, code, identity string) (domain.Booking, error)
}

// HandleLookupBooking finds a booking by confirmation code plus the email
// or customer ID it was created under. A miss is a 404, never a 500.
func HandleLookupBooking(svc BookingFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req lookupBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		b, err := svc.Lookup(r.Context(), req.Code, req.Identity)
		if err != nil {
			if errors.Is(err, domain.ErrBookingNotFound) {
				writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, bookingResponse{
			Date:             b.Date.Format("2006-01-02"),
			ServiceID:        b.ServiceID,
			ConfirmationCode: b.ConfirmationCode,
			Confirmed:        b.Confirmed(),
			Meta:             b.Meta,
		})
	}
}

type lookupBookingRequest struct {
	Code     string `json:"code"`
	Identity string `json:"identity"`
}

type bookingResponse struct {
	Date             string         `json:"date"`
	ServiceID        string         `json:"serviceId"`
	ConfirmationCode string         `json:"confirmationCode"`
	Confirmed        bool           `json:"confirmed"`
	Meta             map[string]any `json:"meta,omitempty"`
}
