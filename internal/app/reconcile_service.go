package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kferacho3/BodegaDanes/internal/clock"
	"github.com/kferacho3/BodegaDanes/internal/domain"
	"github.com/kferacho3/BodegaDanes/internal/email"
	"github.com/kferacho3/BodegaDanes/internal/payments"
)

type ReconcileRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	UpsertConfirmedBooking(ctx context.Context, booking domain.Booking) error
	UpsertDayStatus(ctx context.Context, date time.Time, status domain.DayStatus) error
	HasConfirmedBookingOnDate(ctx context.Context, date time.Time) (bool, error)
}

type ReconcileGateway interface {
	GetService(ctx context.Context, priceID string) (domain.ServiceTier, error)
	CreateRemainingInvoice(ctx context.Context, customerID, serviceID string, amount int64) error
}

type CatalogInvalidator interface {
	Invalidate()
}

// SiteRevalidator asks the public site to refresh its cached catalog.
type SiteRevalidator interface {
	Revalidate(ctx context.Context) error
}

// ReconcileService consumes payment-lifecycle events and brings bookings
// and the availability calendar to a consistent final state.
//
// Failure semantics: storage errors propagate, so the processor redelivers
// and the upserts converge on retry. Email and invoice errors are logged
// and swallowed; acknowledging receipt beats perfect side effects, because
// an error response would make the processor redeliver forever and pile up
// duplicate notification emails.
type ReconcileService struct {
	repo     ReconcileRepository
	gateway  ReconcileGateway
	mailer   email.Mailer
	catalog  CatalogInvalidator
	site     SiteRevalidator
	clock    clock.Clock
	log      zerolog.Logger
	operator string
	baseURL  string
}

type ReconcileConfig struct {
	OperatorEmail string
	BaseURL       string
}

func NewReconcileService(
	repo ReconcileRepository,
	gateway ReconcileGateway,
	mailer email.Mailer,
	catalog CatalogInvalidator,
	site SiteRevalidator,
	clk clock.Clock,
	log zerolog.Logger,
	cfg ReconcileConfig,
) *ReconcileService {
	return &ReconcileService{
		repo:     repo,
		gateway:  gateway,
		mailer:   mailer,
		catalog:  catalog,
		site:     site,
		clock:    clk,
		log:      log,
		operator: cfg.OperatorEmail,
		baseURL:  cfg.BaseURL,
	}
}

// HandleEvent dispatches one verified event. Safe to re-run for the same
// event: every write is an upsert keyed by confirmation code or date.
func (s *ReconcileService) HandleEvent(ctx context.Context, ev payments.Event) error {
	switch e := ev.(type) {
	case payments.CheckoutCompleted:
		return s.checkoutCompleted(ctx, e)
	case payments.CheckoutFailed:
		s.checkoutFailed(ctx, e)
		return nil
	case payments.CheckoutExpired:
		return s.checkoutExpired(ctx, e)
	case payments.InvoiceFinalized:
		s.sendTo(ctx, e.CustomerEmail, "Your final invoice is ready", email.InvoiceReadyHTML(e.HostedURL))
		return nil
	case payments.InvoicePaid:
		s.sendTo(ctx, e.CustomerEmail, "Payment received - thank you!", email.InvoicePaidHTML())
		s.sendTo(ctx, s.operator, "Client paid final invoice", "<p>"+e.Number+" paid.</p>")
		return nil
	case payments.InvoiceFailed:
		s.sendTo(ctx, e.CustomerEmail, "Payment failed", email.InvoiceFailedHTML())
		s.sendTo(ctx, s.operator, "Invoice payment failed", "<p>"+e.Number+"</p>")
		return nil
	case payments.InvoiceClosed:
		s.sendTo(ctx, s.operator, "Invoice "+e.Number+" "+e.Reason, "<p>See Stripe dashboard for details.</p>")
		return nil
	case payments.ChargeSucceeded:
		s.sendTo(ctx, e.ReceiptEmail, "Balance charged successfully", email.ChargeSucceededHTML())
		return nil
	case payments.ChargeFailed:
		to := e.ReceiptEmail
		if to == "" {
			to = s.operator
		}
		s.sendTo(ctx, to, "Card charge failed", email.ChargeFailedHTML())
		return nil
	case payments.CatalogChanged:
		s.catalog.Invalidate()
		if s.site != nil {
			if err := s.site.Revalidate(ctx); err != nil {
				s.log.Warn().Err(err).Str("event", e.EventType).Msg("site revalidation failed")
			}
		}
		return nil
	case payments.Unknown:
		s.log.Info().Str("type", e.Type).Msg("ignoring unhandled event type")
		return nil
	default:
		return nil
	}
}

func (s *ReconcileService) checkoutCompleted(ctx context.Context, e payments.CheckoutCompleted) error {
	code := e.Metadata["confirmationCode"]
	day, err := parseDay(e.Metadata["date"])
	if code == "" || err != nil {
		// A session created outside the wizard; nothing to reconcile, and
		// erroring would only make the processor redeliver it.
		s.log.Warn().Str("session", e.SessionID).Msg("checkout completed without booking metadata")
		return nil
	}

	s.createRemainingInvoice(ctx, e)

	now := s.clock.Now()
	booking := domain.Booking{
		ID:               uuid.NewString(),
		Date:             day,
		ServiceID:        e.Metadata["serviceId"],
		ConfirmationCode: code,
		CustomerID:       e.CustomerID,
		CustomerEmail:    e.CustomerEmail,
		Meta:             metaToAny(e.Metadata),
		StripeSessionID:  e.SessionID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpsertConfirmedBooking(txCtx, booking); err != nil {
			return err
		}
		return s.repo.UpsertDayStatus(txCtx, day, domain.DayStatusBooked)
	})
	if err != nil {
		return err
	}

	details := email.DetailsFromMetadata(e.Metadata)
	html := email.ConfirmationHTML(details, s.baseURL)
	s.sendTo(ctx, e.CustomerEmail, "Your booking is confirmed!", html)
	s.sendTo(ctx, s.operator, email.OperatorSubject(details), html)
	return nil
}

func (s *ReconcileService) checkoutFailed(ctx context.Context, e payments.CheckoutFailed) {
	// The day stays BOOKED for the operator to release by hand; the
	// customer usually retries the same session.
	s.sendTo(ctx, e.CustomerEmail, "Payment failed", email.PaymentFailedHTML())
	s.sendTo(ctx, s.operator, "Client deposit payment failed", email.PaymentFailedHTML())
}

// checkoutExpired releases the held date back to OPEN, but only while no
// confirmed booking exists for it. A confirmed booking means a different
// session already paid for the day; the expired one is stale.
func (s *ReconcileService) checkoutExpired(ctx context.Context, e payments.CheckoutExpired) error {
	day, err := parseDay(e.Metadata["date"])
	if err != nil {
		s.log.Warn().Str("session", e.SessionID).Msg("checkout expired without a date")
		return nil
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		confirmed, err := s.repo.HasConfirmedBookingOnDate(txCtx, day)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}
		return s.repo.UpsertDayStatus(txCtx, day, domain.DayStatusOpen)
	})
}

func (s *ReconcileService) createRemainingInvoice(ctx context.Context, e payments.CheckoutCompleted) {
	serviceID := e.Metadata["serviceId"]
	if serviceID == "" || e.CustomerID == "" {
		return
	}
	tier, err := s.gateway.GetService(ctx, serviceID)
	if err != nil {
		s.log.Error().Err(err).Str("service", serviceID).Msg("price lookup for balance invoice failed")
		return
	}
	remaining := tier.RemainingBalance()
	if remaining <= 0 {
		return
	}
	if err := s.gateway.CreateRemainingInvoice(ctx, e.CustomerID, serviceID, remaining); err != nil {
		s.log.Error().Err(err).Str("customer", e.CustomerID).Msg("balance invoice creation failed")
	}
}

func (s *ReconcileService) sendTo(ctx context.Context, to, subject, html string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, html); err != nil {
		s.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("email send failed")
	}
}

func metaToAny(meta map[string]string) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
