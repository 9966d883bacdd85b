package email

import (
	"fmt"
	"html"
	"strings"
)

// BookingDetails is the subset of checkout metadata rendered into the
// confirmation emails. Every field came from the wizard, so values are
// HTML-escaped before rendering.
type BookingDetails struct {
	Date             string
	ServiceID        string
	ConfirmationCode string
	Theme            string
	Time             string
	Location         string
	Guests           string
}

// DetailsFromMetadata pulls the known wizard fields out of the metadata
// echoed back by the payment processor.
func DetailsFromMetadata(meta map[string]string) BookingDetails {
	return BookingDetails{
		Date:             meta["date"],
		ServiceID:        meta["serviceId"],
		ConfirmationCode: meta["confirmationCode"],
		Theme:            meta["theme"],
		Time:             meta["time"],
		Location:         meta["location"],
		Guests:           meta["guests"],
	}
}

// ConfirmationHTML renders the booking receipt sent to both the customer
// and the operator after a completed checkout.
func ConfirmationHTML(d BookingDetails, baseURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Booking confirmed &middot; %s</h1>", html.EscapeString(d.ServiceID))
	fmt.Fprintf(&b, "<p><b>Date:</b> %s</p>", html.EscapeString(d.Date))
	fmt.Fprintf(&b, "<p><b>Theme:</b> %s</p>", html.EscapeString(d.Theme))
	fmt.Fprintf(&b, "<p><b>Time:</b> %s</p>", html.EscapeString(d.Time))
	fmt.Fprintf(&b, "<p><b>Location:</b> %s</p>", html.EscapeString(d.Location))
	fmt.Fprintf(&b, "<p><b>Guests:</b> %s</p>", html.EscapeString(d.Guests))
	fmt.Fprintf(&b, "<p><b>Confirmation #:</b> %s</p>", html.EscapeString(d.ConfirmationCode))
	fmt.Fprintf(&b, `<p>You can review your event at:<br/><a href="%s/my-events">%s/my-events</a></p>`, baseURL, baseURL)
	return b.String()
}

// OperatorSubject is the subject line for the operator's new-event notice.
func OperatorSubject(d BookingDetails) string {
	return fmt.Sprintf("NEW EVENT - %s on %s", d.ServiceID, d.Date)
}

func PaymentFailedHTML() string {
	return "<p>Your deposit payment failed. Please retry.</p>"
}

func InvoiceReadyHTML(link string) string {
	return fmt.Sprintf(`<p>Please pay your remaining balance:</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(link), html.EscapeString(link))
}

func InvoicePaidHTML() string {
	return "<p>See you soon!</p>"
}

func InvoiceFailedHTML() string {
	return "<p>Your payment failed. Please update your card.</p>"
}

func ChargeSucceededHTML() string {
	return "<p>Thank you!</p>"
}

func ChargeFailedHTML() string {
	return "<p>Your card was declined. Please retry or contact us.</p>"
}

// ContactNotificationHTML relays a contact-form submission to the operator.
func ContactNotificationHTML(name, from, message string) string {
	return fmt.Sprintf("<p><b>Name:</b> %s</p><p><b>Email:</b> %s</p><p>%s</p>",
		html.EscapeString(name), html.EscapeString(from), html.EscapeString(message))
}

// ContactAutoReplyHTML thanks the sender for reaching out.
func ContactAutoReplyHTML(name string) string {
	return fmt.Sprintf("<p>Hi %s,</p><p>Thanks for your message! We'll get back to you shortly.</p><p>&mdash; The Bodega Danes Team</p>",
		html.EscapeString(name))
}
