package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kferacho3/BodegaDanes/internal/payments"
)

const signatureHeader = "Stripe-Signature"
const maxWebhookBody = 1 << 20 // Stripe caps event payloads well below 1 MiB.

// WebhookVerifier authenticates a raw delivery and decodes its event.
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (payments.Event, error)
}

// EventHandler reconciles one verified payment event.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev payments.Event) error
}

// HandleStripeWebhook is the inbound webhook endpoint. The body is kept
// raw for signature verification. Rejected deliveries are 4xx so the
// processor stops retrying them, with separate codes for forged signatures
// and verified-but-undecodable payloads. Storage failures return 5xx on
// purpose: redelivery re-runs idempotent upserts.
func HandleStripeWebhook(verifier WebhookVerifier, svc EventHandler, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "unreadable body")
			return
		}

		ev, err := verifier.Verify(payload, r.Header.Get(signatureHeader))
		if err != nil {
			logger.Warn().Err(err).Msg("webhook rejected")
			if errors.Is(err, payments.ErrInvalidPayload) {
				writeError(w, http.StatusBadRequest, codeInvalidPayload, "webhook payload decode failed")
				return
			}
			writeError(w, http.StatusBadRequest, codeInvalidSignature, "webhook signature verification failed")
			return
		}

		if err := svc.HandleEvent(r.Context(), ev); err != nil {
			logger.Error().Err(err).Msg("webhook reconciliation failed")
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}
