package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kferacho3/BodegaDanes/internal/app"
)

// ContactRelay is the minimal interface for the contact endpoint.
type ContactRelay interface {
	Relay(ctx context.Context, in app.ContactInput) error
}

// HandleContact relays a contact-form submission to the operator and
// auto-replies to the sender.
func HandleContact(svc ContactRelay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req contactRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		err := svc.Relay(r.Context(), app.ContactInput{
			Name:    req.Name,
			Email:   req.Email,
			Message: req.Message,
		})
		if err != nil {
			if errors.Is(err, app.ErrContactFieldsRequired) {
				writeError(w, http.StatusBadRequest, codeMissingContactField, err.Error())
				return
			}
			writeError(w, http.StatusBadGateway, codeEmailSendFailed, "failed to send email")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
