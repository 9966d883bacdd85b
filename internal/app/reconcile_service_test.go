package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kferacho3/BodegaDanes/internal/clock"
	"github.com/kferacho3/BodegaDanes/internal/domain"
	"github.com/kferacho3/BodegaDanes/internal/payments"
)

type fakeReconcileRepo struct {
	bookings  map[string]domain.Booking
	statuses  map[string]domain.DayStatus
	confirmed map[string]bool

	upsertErr error
}

func newFakeReconcileRepo() *fakeReconcileRepo {
	return &fakeReconcileRepo{
		bookings:  map[string]domain.Booking{},
		statuses:  map[string]domain.DayStatus{},
		confirmed: map[string]bool{},
	}
}

func (r *fakeReconcileRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeReconcileRepo) UpsertConfirmedBooking(ctx context.Context, booking domain.Booking) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.bookings[booking.ConfirmationCode] = booking
	r.confirmed[formatDay(booking.Date)] = true
	return nil
}

func (r *fakeReconcileRepo) UpsertDayStatus(ctx context.Context, date time.Time, status domain.DayStatus) error {
	r.statuses[formatDay(date)] = status
	return nil
}

func (r *fakeReconcileRepo) HasConfirmedBookingOnDate(ctx context.Context, date time.Time) (bool, error) {
	return r.confirmed[formatDay(date)], nil
}

type fakeGateway struct {
	tiers map[string]domain.ServiceTier

	invoices   []int64
	invoiceErr error
}

func (g *fakeGateway) GetService(ctx context.Context, priceID string) (domain.ServiceTier, error) {
	tier, ok := g.tiers[priceID]
	if !ok {
		return domain.ServiceTier{}, domain.ErrServiceNotFound
	}
	return tier, nil
}

func (g *fakeGateway) CreateRemainingInvoice(ctx context.Context, customerID, serviceID string, amount int64) error {
	if g.invoiceErr != nil {
		return g.invoiceErr
	}
	g.invoices = append(g.invoices, amount)
	return nil
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

type fakeCatalog struct {
	invalidations int
}

func (c *fakeCatalog) Invalidate() { c.invalidations++ }

type fakeSite struct {
	calls int
	err   error
}

func (s *fakeSite) Revalidate(ctx context.Context) error {
	s.calls++
	return s.err
}

type reconcileFixture struct {
	svc     *ReconcileService
	repo    *fakeReconcileRepo
	gateway *fakeGateway
	mailer  *fakeMailer
	catalog *fakeCatalog
	site    *fakeSite
}

func newReconcileFixture() reconcileFixture {
	repo := newFakeReconcileRepo()
	gateway := &fakeGateway{tiers: map[string]domain.ServiceTier{
		"price_basic": {ID: "price_basic", DepositAmount: 20000, FullAmount: 50000},
		"price_flat":  {ID: "price_flat", DepositAmount: 50000, FullAmount: 50000},
	}}
	mailer := &fakeMailer{}
	catalog := &fakeCatalog{}
	site := &fakeSite{}
	svc := NewReconcileService(
		repo, gateway, mailer, catalog, site,
		clock.NewFixed(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
		zerolog.Nop(),
		ReconcileConfig{OperatorEmail: "ops@bodegadanes.com", BaseURL: "https://bodegadanes.com"},
	)
	return reconcileFixture{svc: svc, repo: repo, gateway: gateway, mailer: mailer, catalog: catalog, site: site}
}

func completedEvent() payments.CheckoutCompleted {
	return payments.CheckoutCompleted{
		SessionID:     "cs_123",
		CustomerID:    "cus_123",
		CustomerEmail: "sam@example.com",
		Metadata: map[string]string{
			"date":             "2025-07-04",
			"serviceId":        "price_basic",
			"confirmationCode": "AB12CD",
			"guests":           "40",
		},
	}
}

func TestReconcileService_CheckoutCompleted(t *testing.T) {
	t.Parallel()

	t.Run("confirms booking and locks the day", func(t *testing.T) {
		f := newReconcileFixture()

		if err := f.svc.HandleEvent(context.Background(), completedEvent()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		b, ok := f.repo.bookings["AB12CD"]
		if !ok {
			t.Fatalf("expected booking upserted under confirmation code")
		}
		if b.StripeSessionID != "cs_123" || b.CustomerID != "cus_123" {
			t.Fatalf("unexpected booking: %+v", b)
		}
		if f.repo.statuses["2025-07-04"] != domain.DayStatusBooked {
			t.Fatalf("expected day BOOKED, got %s", f.repo.statuses["2025-07-04"])
		}
		if len(f.gateway.invoices) != 1 || f.gateway.invoices[0] != 30000 {
			t.Fatalf("expected one balance invoice for 30000, got %v", f.gateway.invoices)
		}
		if len(f.mailer.sent) != 2 {
			t.Fatalf("expected customer + operator email, got %d", len(f.mailer.sent))
		}
		if f.mailer.sent[0].To != "sam@example.com" || f.mailer.sent[1].To != "ops@bodegadanes.com" {
			t.Fatalf("unexpected recipients: %+v", f.mailer.sent)
		}
	})

	t.Run("redelivery converges on the same state", func(t *testing.T) {
		f := newReconcileFixture()

		for i := 0; i < 3; i++ {
			if err := f.svc.HandleEvent(context.Background(), completedEvent()); err != nil {
				t.Fatalf("delivery %d: expected no error, got %v", i, err)
			}
		}
		if len(f.repo.bookings) != 1 {
			t.Fatalf("expected a single booking after redelivery, got %d", len(f.repo.bookings))
		}
		if f.repo.statuses["2025-07-04"] != domain.DayStatusBooked {
			t.Fatalf("expected day still BOOKED")
		}
	})

	t.Run("ignores a session without booking metadata", func(t *testing.T) {
		f := newReconcileFixture()

		ev := payments.CheckoutCompleted{SessionID: "cs_stray", Metadata: map[string]string{}}
		if err := f.svc.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("expected stray session to be acknowledged, got %v", err)
		}
		if len(f.repo.bookings) != 0 || len(f.repo.statuses) != 0 {
			t.Fatalf("expected no writes for stray session")
		}
		if len(f.mailer.sent) != 0 {
			t.Fatalf("expected no emails for stray session")
		}
	})

	t.Run("storage failure propagates for redelivery", func(t *testing.T) {
		f := newReconcileFixture()
		f.repo.upsertErr = errors.New("db down")

		if err := f.svc.HandleEvent(context.Background(), completedEvent()); err == nil {
			t.Fatalf("expected storage error to propagate")
		}
	})

	t.Run("email failure is swallowed", func(t *testing.T) {
		f := newReconcileFixture()
		f.mailer.err = errors.New("smtp down")

		if err := f.svc.HandleEvent(context.Background(), completedEvent()); err != nil {
			t.Fatalf("expected email failure to be swallowed, got %v", err)
		}
		if _, ok := f.repo.bookings["AB12CD"]; !ok {
			t.Fatalf("expected booking confirmed despite email failure")
		}
	})

	t.Run("invoice failure is swallowed", func(t *testing.T) {
		f := newReconcileFixture()
		f.gateway.invoiceErr = errors.New("stripe down")

		if err := f.svc.HandleEvent(context.Background(), completedEvent()); err != nil {
			t.Fatalf("expected invoice failure to be swallowed, got %v", err)
		}
		if _, ok := f.repo.bookings["AB12CD"]; !ok {
			t.Fatalf("expected booking confirmed despite invoice failure")
		}
	})

	t.Run("no invoice when deposit covers the price", func(t *testing.T) {
		f := newReconcileFixture()
		ev := completedEvent()
		ev.Metadata["serviceId"] = "price_flat"

		if err := f.svc.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.gateway.invoices) != 0 {
			t.Fatalf("expected no balance invoice, got %v", f.gateway.invoices)
		}
	})
}

func TestReconcileService_CheckoutFailed(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture()
	ev := payments.CheckoutFailed{
		SessionID:     "cs_123",
		CustomerEmail: "sam@example.com",
		Metadata:      map[string]string{"date": "2025-07-04"},
	}

	if err := f.svc.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// The date stays held for the operator to release by hand.
	if len(f.repo.statuses) != 0 {
		t.Fatalf("expected no calendar writes, got %v", f.repo.statuses)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected customer + operator email, got %d", len(f.mailer.sent))
	}
}

func TestReconcileService_CheckoutExpired(t *testing.T) {
	t.Parallel()

	t.Run("releases the day back to OPEN", func(t *testing.T) {
		f := newReconcileFixture()
		f.repo.statuses["2025-07-04"] = domain.DayStatusBooked

		ev := payments.CheckoutExpired{SessionID: "cs_123", Metadata: map[string]string{"date": "2025-07-04"}}
		if err := f.svc.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.repo.statuses["2025-07-04"] != domain.DayStatusOpen {
			t.Fatalf("expected day released to OPEN, got %s", f.repo.statuses["2025-07-04"])
		}
	})

	t.Run("keeps the day when another session already paid", func(t *testing.T) {
		f := newReconcileFixture()
		if err := f.svc.HandleEvent(context.Background(), completedEvent()); err != nil {
			t.Fatalf("confirm: %v", err)
		}

		ev := payments.CheckoutExpired{SessionID: "cs_old", Metadata: map[string]string{"date": "2025-07-04"}}
		if err := f.svc.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.repo.statuses["2025-07-04"] != domain.DayStatusBooked {
			t.Fatalf("expected day to stay BOOKED, got %s", f.repo.statuses["2025-07-04"])
		}
	})

	t.Run("ignores an expiry without a date", func(t *testing.T) {
		f := newReconcileFixture()

		ev := payments.CheckoutExpired{SessionID: "cs_123", Metadata: map[string]string{}}
		if err := f.svc.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.repo.statuses) != 0 {
			t.Fatalf("expected no calendar writes")
		}
	})
}

func TestReconcileService_InvoiceAndChargeEvents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		event      payments.Event
		recipients []string
	}{
		{
			name:       "invoice finalized emails the customer",
			event:      payments.InvoiceFinalized{InvoiceID: "in_1", Number: "INV-1", CustomerEmail: "sam@example.com", HostedURL: "https://pay.example"},
			recipients: []string{"sam@example.com"},
		},
		{
			name:       "invoice paid emails customer and operator",
			event:      payments.InvoicePaid{InvoiceID: "in_1", Number: "INV-1", CustomerEmail: "sam@example.com"},
			recipients: []string{"sam@example.com", "ops@bodegadanes.com"},
		},
		{
			name:       "invoice failed emails customer and operator",
			event:      payments.InvoiceFailed{InvoiceID: "in_1", Number: "INV-1", CustomerEmail: "sam@example.com"},
			recipients: []string{"sam@example.com", "ops@bodegadanes.com"},
		},
		{
			name:       "invoice closed emails the operator",
			event:      payments.InvoiceClosed{InvoiceID: "in_1", Number: "INV-1", Reason: "voided"},
			recipients: []string{"ops@bodegadanes.com"},
		},
		{
			name:       "charge succeeded emails the receipt address",
			event:      payments.ChargeSucceeded{IntentID: "pi_1", ReceiptEmail: "sam@example.com"},
			recipients: []string{"sam@example.com"},
		},
		{
			name:       "charge failed without receipt email falls back to operator",
			event:      payments.ChargeFailed{IntentID: "pi_1"},
			recipients: []string{"ops@bodegadanes.com"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReconcileFixture()
			if err := f.svc.HandleEvent(context.Background(), tc.event); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(f.mailer.sent) != len(tc.recipients) {
				t.Fatalf("expected %d emails, got %d", len(tc.recipients), len(f.mailer.sent))
			}
			for i, want := range tc.recipients {
				if f.mailer.sent[i].To != want {
					t.Fatalf("email %d: expected %s, got %s", i, want, f.mailer.sent[i].To)
				}
			}
		})
	}

	t.Run("missing recipient skips the send", func(t *testing.T) {
		f := newReconcileFixture()
		if err := f.svc.HandleEvent(context.Background(), payments.ChargeSucceeded{IntentID: "pi_1"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.mailer.sent) != 0 {
			t.Fatalf("expected no emails, got %d", len(f.mailer.sent))
		}
	})
}

func TestReconcileService_CatalogChanged(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture()
	if err := f.svc.HandleEvent(context.Background(), payments.CatalogChanged{EventType: "price.updated"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.catalog.invalidations != 1 {
		t.Fatalf("expected cache invalidated once, got %d", f.catalog.invalidations)
	}
	if f.site.calls != 1 {
		t.Fatalf("expected one site revalidation, got %d", f.site.calls)
	}

	// Revalidation failure is logged, not surfaced.
	f.site.err = errors.New("site down")
	if err := f.svc.HandleEvent(context.Background(), payments.CatalogChanged{EventType: "product.deleted"}); err != nil {
		t.Fatalf("expected revalidation failure to be swallowed, got %v", err)
	}
}

func TestReconcileService_UnknownEvent(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture()
	if err := f.svc.HandleEvent(context.Background(), payments.Unknown{Type: "customer.created"}); err != nil {
		t.Fatalf("expected unknown event to be acknowledged, got %v", err)
	}
	if len(f.repo.bookings) != 0 || len(f.mailer.sent) != 0 {
		t.Fatalf("expected no side effects for unknown event")
	}
}
