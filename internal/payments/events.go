package payments

import (
	"encoding/json"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
)

// Event is the closed set of processor notifications the reconciliation
// service understands. Each variant carries only the fields its handler
// needs; anything outside the set decodes to Unknown rather than erroring,
// so the processor is never driven into an endless retry loop by a new
// event type.
type Event interface {
	isEvent()
}

// CheckoutCompleted covers checkout.session.completed and
// checkout.session.async_payment_succeeded. Metadata echoes what was
// attached at session creation (date, serviceId, confirmationCode, ...).
type CheckoutCompleted struct {
	SessionID     string
	CustomerID    string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutFailed is checkout.session.async_payment_failed.
type CheckoutFailed struct {
	SessionID     string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutExpired is checkout.session.expired (abandoned payment page).
type CheckoutExpired struct {
	SessionID string
	Metadata  map[string]string
}

// InvoiceFinalized is invoice.finalized: the balance invoice is ready.
type InvoiceFinalized struct {
	InvoiceID     string
	Number        string
	CustomerEmail string
	HostedURL     string
}

// InvoicePaid is invoice.payment_succeeded.
type InvoicePaid struct {
	InvoiceID     string
	Number        string
	CustomerEmail string
}

// InvoiceFailed is invoice.payment_failed.
type InvoiceFailed struct {
	InvoiceID     string
	Number        string
	CustomerEmail string
}

// InvoiceClosed covers invoice.voided and invoice.marked_uncollectible.
// Reason is the trailing segment of the event type ("voided",
// "marked_uncollectible").
type InvoiceClosed struct {
	InvoiceID string
	Number    string
	Reason    string
}

// ChargeSucceeded is payment_intent.succeeded (direct charge path).
type ChargeSucceeded struct {
	IntentID     string
	ReceiptEmail string
}

// ChargeFailed is payment_intent.payment_failed.
type ChargeFailed struct {
	IntentID     string
	ReceiptEmail string
	Reason       string
}

// CatalogChanged covers every product.* and price.* event; the catalog
// cache is refreshed regardless of which object changed.
type CatalogChanged struct {
	EventType string
}

// Unknown is the fallback variant for event types outside the closed set.
type Unknown struct {
	Type string
}

func (CheckoutCompleted) isEvent() {}
func (CheckoutFailed) isEvent()    {}
func (CheckoutExpired) isEvent()   {}
func (InvoiceFinalized) isEvent()  {}
func (InvoicePaid) isEvent()       {}
func (InvoiceFailed) isEvent()     {}
func (InvoiceClosed) isEvent()     {}
func (ChargeSucceeded) isEvent()   {}
func (ChargeFailed) isEvent()      {}
func (CatalogChanged) isEvent()    {}
func (Unknown) isEvent()           {}

// Decode maps a verified Stripe event onto the closed union. Malformed
// payloads for a known type are an error; unrecognized types are Unknown.
func Decode(ev stripe.Event) (Event, error) {
	typ := string(ev.Type)
	switch typ {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		s, err := decodeSession(ev)
		if err != nil {
			return nil, err
		}
		out := CheckoutCompleted{
			SessionID:     s.ID,
			CustomerEmail: sessionEmail(s),
			Metadata:      s.Metadata,
		}
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
		return out, nil

	case "checkout.session.async_payment_failed":
		s, err := decodeSession(ev)
		if err != nil {
			return nil, err
		}
		return CheckoutFailed{SessionID: s.ID, CustomerEmail: sessionEmail(s), Metadata: s.Metadata}, nil

	case "checkout.session.expired":
		s, err := decodeSession(ev)
		if err != nil {
			return nil, err
		}
		return CheckoutExpired{SessionID: s.ID, Metadata: s.Metadata}, nil

	case "invoice.finalized":
		inv, err := decodeInvoice(ev)
		if err != nil {
			return nil, err
		}
		return InvoiceFinalized{InvoiceID: inv.ID, Number: inv.Number, CustomerEmail: inv.CustomerEmail, HostedURL: inv.HostedInvoiceURL}, nil

	case "invoice.payment_succeeded":
		inv, err := decodeInvoice(ev)
		if err != nil {
			return nil, err
		}
		return InvoicePaid{InvoiceID: inv.ID, Number: inv.Number, CustomerEmail: inv.CustomerEmail}, nil

	case "invoice.payment_failed":
		inv, err := decodeInvoice(ev)
		if err != nil {
			return nil, err
		}
		return InvoiceFailed{InvoiceID: inv.ID, Number: inv.Number, CustomerEmail: inv.CustomerEmail}, nil

	case "invoice.voided", "invoice.marked_uncollectible":
		inv, err := decodeInvoice(ev)
		if err != nil {
			return nil, err
		}
		reason := typ[strings.Index(typ, ".")+1:]
		return InvoiceClosed{InvoiceID: inv.ID, Number: inv.Number, Reason: reason}, nil

	case "payment_intent.succeeded":
		pi, err := decodeIntent(ev)
		if err != nil {
			return nil, err
		}
		return ChargeSucceeded{IntentID: pi.ID, ReceiptEmail: pi.ReceiptEmail}, nil

	case "payment_intent.payment_failed":
		pi, err := decodeIntent(ev)
		if err != nil {
			return nil, err
		}
		out := ChargeFailed{IntentID: pi.ID, ReceiptEmail: pi.ReceiptEmail}
		if pi.LastPaymentError != nil {
			out.Reason = pi.LastPaymentError.Msg
		}
		return out, nil
	}

	if strings.HasPrefix(typ, "product.") || strings.HasPrefix(typ, "price.") {
		return CatalogChanged{EventType: typ}, nil
	}

	return Unknown{Type: typ}, nil
}

func decodeSession(ev stripe.Event) (stripe.CheckoutSession, error) {
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return stripe.CheckoutSession{}, fmt.Errorf("decode %s: %w", ev.Type, err)
	}
	return s, nil
}

func decodeInvoice(ev stripe.Event) (stripe.Invoice, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
		return stripe.Invoice{}, fmt.Errorf("decode %s: %w", ev.Type, err)
	}
	return inv, nil
}

func decodeIntent(ev stripe.Event) (stripe.PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return stripe.PaymentIntent{}, fmt.Errorf("decode %s: %w", ev.Type, err)
	}
	return pi, nil
}

func sessionEmail(s stripe.CheckoutSession) string {
	if s.CustomerEmail != "" {
		return s.CustomerEmail
	}
	if s.CustomerDetails != nil {
		return s.CustomerDetails.Email
	}
	return ""
}
