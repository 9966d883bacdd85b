package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidDate         = "invalid_date"
	codeInvalidStatus       = "invalid_status"
	codeDateInPast          = "date_in_past"
	codeDayNotBookable      = "day_not_bookable"
	codeServiceIDRequired   = "service_id_required"
	codeBookingNotFound     = "booking_not_found"
	codeServiceNotFound     = "service_not_found"
	codeInvalidSignature    = "invalid_signature"
	codeInvalidPayload      = "invalid_payload"
	codeInvalidCredentials  = "invalid_credentials"
	codeUnauthorized        = "unauthorized"
	codeMissingContactField = "missing_contact_field"
	codeEmailSendFailed     = "email_send_failed"
	codeStripeError         = "stripe_error"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
