package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kferacho3/BodegaDanes/internal/domain"
)

// BookingRepository backs both the reservation flow and the webhook
// reconciliation; both key their writes on natural identifiers (date,
// confirmation code) so redelivered events converge.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetDay(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	return getDay(ctx, r.pool, date)
}

func (r *BookingRepository) UpsertDayStatus(ctx context.Context, date time.Time, status domain.DayStatus) error {
	return upsertDayStatus(ctx, r.pool, date, status)
}

// CreateBooking inserts the provisional row. A confirmation-code collision
// surfaces as ErrCodeCollision via DO NOTHING rather than a raised unique
// violation, which would abort the surrounding transaction and make the
// caller's regenerate-and-retry impossible.
func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, date, service_id, confirmation_code, customer_id, customer_email, meta, stripe_session_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (confirmation_code) DO NOTHING`

	meta, err := marshalMeta(b.Meta)
	if err != nil {
		return err
	}
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, stmt,
		b.ID, b.Date, b.ServiceID, b.ConfirmationCode,
		b.CustomerID, b.CustomerEmail, meta, b.StripeSessionID,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeCollision
	}
	return nil
}

// UpsertConfirmedBooking attaches the payment session to the provisional
// row for the confirmation code, or creates the row from webhook metadata
// when the provisional insert never happened. Redelivery lands on the
// update arm and rewrites the same values.
func (r *BookingRepository) UpsertConfirmedBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, date, service_id, confirmation_code, customer_id, customer_email, meta, stripe_session_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (confirmation_code) DO UPDATE SET
	stripe_session_id = EXCLUDED.stripe_session_id,
	customer_id       = EXCLUDED.customer_id,
	updated_at        = EXCLUDED.updated_at`

	meta, err := marshalMeta(b.Meta)
	if err != nil {
		return err
	}
	_, err = querierFrom(ctx, r.pool).Exec(ctx, stmt,
		b.ID, b.Date, b.ServiceID, b.ConfirmationCode,
		b.CustomerID, b.CustomerEmail, meta, b.StripeSessionID,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert confirmed booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindByCodeAndIdentity(ctx context.Context, code, identity string) (*domain.Booking, error) {
	const query = `
SELECT id, date, service_id, confirmation_code, customer_id, customer_email, meta, stripe_session_id, created_at, updated_at
FROM bookings
WHERE confirmation_code = $1 AND (customer_email = $2 OR customer_id = $2)`

	var b domain.Booking
	var meta []byte
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, code, identity).Scan(
		&b.ID, &b.Date, &b.ServiceID, &b.ConfirmationCode,
		&b.CustomerID, &b.CustomerEmail, &meta, &b.StripeSessionID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &b.Meta); err != nil {
			return nil, fmt.Errorf("decode booking meta: %w", err)
		}
	}
	b.Date = b.Date.UTC()
	return &b, nil
}

func (r *BookingRepository) HasConfirmedBookingOnDate(ctx context.Context, date time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM bookings WHERE date = $1 AND stripe_session_id <> '')`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("check confirmed bookings: %w", err)
	}
	return exists, nil
}

func marshalMeta(meta map[string]any) ([]byte, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode booking meta: %w", err)
	}
	return data, nil
}
