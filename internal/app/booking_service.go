package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kferacho3/BodegaDanes/internal/clock"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetDay(ctx context.Context, date time.Time) (*domain.DayAvailability, error)
	UpsertDayStatus(ctx context.Context, date time.Time, status domain.DayStatus) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
	FindByCodeAndIdentity(ctx context.Context, code, identity string) (*domain.Booking, error)
}

// BookingService turns a wizard submission into a durable hold: the day is
// flipped to BOOKED and a provisional booking row is written, both inside
// one transaction, before the browser is redirected to payment.
type BookingService struct {
	repo  BookingRepository
	clock clock.Clock
}

func NewBookingService(repo BookingRepository, clk clock.Clock) *BookingService {
	return &BookingService{repo: repo, clock: clk}
}

type ReserveInput struct {
	Date          string
	ServiceID     string
	Meta          map[string]any
	CustomerID    string
	CustomerEmail string
}

// Reserve creates the hold and returns the confirmation code the client
// attaches to the checkout session metadata.
//
// A date with no availability row is treated as implicitly open. That is a
// deliberate laxity carried over from the production site: the calendar is
// sparse and the public wizard only offers dates the admin opened, so the
// server does not second-guess an absent row. A row that exists and is not
// OPEN refuses the reservation.
//
// Reserve is not idempotent: a second call for the same date re-asserts
// BOOKED and creates a second provisional row under a new code.
func (s *BookingService) Reserve(ctx context.Context, in ReserveInput) (string, error) {
	day, err := parseDay(in.Date)
	if err != nil {
		return "", err
	}
	if in.ServiceID == "" {
		return "", domain.ErrServiceIDRequired
	}

	code, err := newConfirmationCode()
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	booking := domain.Booking{
		ID:               uuid.NewString(),
		Date:             day,
		ServiceID:        in.ServiceID,
		ConfirmationCode: code,
		CustomerID:       in.CustomerID,
		CustomerEmail:    in.CustomerEmail,
		Meta:             in.Meta,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetDay(txCtx, day)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == domain.DayStatusOff {
			return domain.ErrDayNotBookable
		}
		if err := s.repo.UpsertDayStatus(txCtx, day, domain.DayStatusBooked); err != nil {
			return err
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			// Regenerate once on a code collision before giving up.
			if errors.Is(err, domain.ErrCodeCollision) {
				retry, genErr := newConfirmationCode()
				if genErr != nil {
					return genErr
				}
				booking.ConfirmationCode = retry
				code = retry
				return s.repo.CreateBooking(txCtx, booking)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Lookup finds a booking by confirmation code where identity matches the
// stored customer email or customer ID. A miss is ErrBookingNotFound, which
// the transport surfaces as "no booking found" rather than a server error.
func (s *BookingService) Lookup(ctx context.Context, code, identity string) (domain.Booking, error) {
	if code == "" || identity == "" {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	b, err := s.repo.FindByCodeAndIdentity(ctx, code, identity)
	if err != nil {
		return domain.Booking{}, err
	}
	if b == nil {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return *b, nil
}
