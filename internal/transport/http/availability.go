package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kferacho3/BodegaDanes/internal/app"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

// AvailabilityStore is the minimal interface the calendar endpoints need.
type AvailabilityStore interface {
	List(ctx context.Context) ([]domain.DayAvailability, error)
	SetStatus(ctx context.Context, inputs []app.DayStatusInput) (int, error)
	ReplaceAll(ctx context.Context, inputs []app.DayStatusInput) error
	ClearAll(ctx context.Context) error
}

type availabilityRow struct {
	Date     string               `json:"date"`
	Status   string               `json:"status"`
	Services []domain.ServiceTier `json:"services,omitempty"`
}

// HandleAvailability serves the calendar: GET lists every row, PUT upserts
// a single object or an array (add ?replace=1 for whole-calendar replace),
// DELETE clears the store. Mutations sit behind the admin middleware; the
// public booking wizard only ever GETs.
func HandleAvailability(svc AvailabilityStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			days, err := svc.List(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			rows := make([]availabilityRow, 0, len(days))
			for _, d := range days {
				rows = append(rows, availabilityRow{
					Date:     d.Date.Format("2006-01-02"),
					Status:   string(d.Status),
					Services: d.Services,
				})
			}
			writeJSON(w, http.StatusOK, rows)

		case http.MethodPut:
			inputs, ok := decodeDayInputs(w, r)
			if !ok {
				return
			}
			if r.URL.Query().Get("replace") != "" {
				if err := svc.ReplaceAll(r.Context(), inputs); err != nil {
					writeAvailabilityError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(inputs)})
				return
			}
			count, err := svc.SetStatus(r.Context(), inputs)
			if err != nil {
				writeAvailabilityError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})

		case http.MethodDelete:
			if err := svc.ClearAll(r.Context()); err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type dayStatusRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// decodeDayInputs accepts either a single {date, status} object or an
// array of them, matching the admin calendar's wire format.
func decodeDayInputs(w http.ResponseWriter, r *http.Request) ([]app.DayStatusInput, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return nil, false
	}

	var reqs []dayStatusRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		var single dayStatusRequest
		if err := json.Unmarshal(raw, &single); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return nil, false
		}
		reqs = []dayStatusRequest{single}
	}

	inputs := make([]app.DayStatusInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, app.DayStatusInput{Date: req.Date, Status: req.Status})
	}
	return inputs, true
}

func writeAvailabilityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrDateInPast):
		writeError(w, http.StatusBadRequest, codeDateInPast, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
