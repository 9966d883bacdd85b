package payments

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidSignature marks a webhook delivery whose signature does not
// match the shared secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrInvalidPayload marks a delivery that passed signature verification but
// whose event body does not decode into the expected Stripe shape.
var ErrInvalidPayload = errors.New("undecodable webhook payload")

// WebhookVerifier checks the Stripe-Signature header against the raw
// (unparsed) request body and decodes the verified event.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify authenticates payload against sigHeader and returns the decoded
// event. The payload must be the exact bytes received on the wire; any
// re-serialization breaks the signature.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	decoded, err := Decode(ev)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return decoded, nil
}
