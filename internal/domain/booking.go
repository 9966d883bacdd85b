package domain

import "time"

// Booking is the provisional record created when the wizard is finalized,
// before the customer is redirected to payment. ConfirmationCode is globally
// unique and is the idempotency key the payment webhook upserts against.
// StripeSessionID stays empty until a checkout session completes.
type Booking struct {
	ID               string
	Date             time.Time
	ServiceID        string
	ConfirmationCode string
	CustomerID       string
	CustomerEmail    string
	Meta             map[string]any
	StripeSessionID  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Confirmed reports whether a completed checkout has been reconciled
// against this booking.
func (b Booking) Confirmed() bool {
	return b.StripeSessionID != ""
}
