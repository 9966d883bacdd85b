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

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

func (r *AvailabilityRepository) List(ctx context.Context) ([]domain.DayAvailability, error) {
	const query = `SELECT date, status, services FROM availability ORDER BY date ASC`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	defer rows.Close()

	out := []domain.DayAvailability{}
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return out, nil
}

// UpsertMany writes each row in one transaction: insert when the date is
// new, overwrite status when it exists. An update never touches the
// services snapshot.
func (r *AvailabilityRepository) UpsertMany(ctx context.Context, days []domain.DayAvailability) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		for _, day := range days {
			if err := upsertDayStatus(txCtx, r.pool, day.Date, day.Status); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceAll deletes every row and inserts the provided set atomically.
func (r *AvailabilityRepository) ReplaceAll(ctx context.Context, days []domain.DayAvailability) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		q := querierFrom(txCtx, r.pool)
		if _, err := q.Exec(txCtx, `DELETE FROM availability`); err != nil {
			return fmt.Errorf("replace availability: %w", err)
		}
		const stmt = `INSERT INTO availability (date, status, services) VALUES ($1, $2, $3)`
		for _, day := range days {
			services, err := marshalServices(day.Services)
			if err != nil {
				return err
			}
			if _, err := q.Exec(txCtx, stmt, day.Date, day.Status, services); err != nil {
				return fmt.Errorf("replace availability: %w", err)
			}
		}
		return nil
	})
}

func (r *AvailabilityRepository) DeleteAll(ctx context.Context) error {
	if _, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM availability`); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}
	return nil
}

// upsertDayStatus is shared with the booking repository, which flips days
// to BOOKED inside its reservation transaction.
func upsertDayStatus(ctx context.Context, pool *pgxpool.Pool, date time.Time, status domain.DayStatus) error {
	const stmt = `
INSERT INTO availability (date, status) VALUES ($1, $2)
ON CONFLICT (date) DO UPDATE SET status = EXCLUDED.status`

	if _, err := querierFrom(ctx, pool).Exec(ctx, stmt, date, status); err != nil {
		return fmt.Errorf("upsert day status: %w", err)
	}
	return nil
}

func getDay(ctx context.Context, pool *pgxpool.Pool, date time.Time) (*domain.DayAvailability, error) {
	const query = `SELECT date, status, services FROM availability WHERE date = $1`

	day, err := scanDay(querierFrom(ctx, pool).QueryRow(ctx, query, date))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &day, nil
}

func scanDay(row pgx.Row) (domain.DayAvailability, error) {
	var day domain.DayAvailability
	var services []byte
	if err := row.Scan(&day.Date, &day.Status, &services); err != nil {
		if err == pgx.ErrNoRows {
			return domain.DayAvailability{}, err
		}
		return domain.DayAvailability{}, fmt.Errorf("scan availability row: %w", err)
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &day.Services); err != nil {
			return domain.DayAvailability{}, fmt.Errorf("decode services snapshot: %w", err)
		}
	}
	day.Date = day.Date.UTC()
	return day, nil
}

func isNoRows(err error) bool {
	return err == pgx.ErrNoRows
}

func marshalServices(services []domain.ServiceTier) ([]byte, error) {
	if services == nil {
		services = []domain.ServiceTier{}
	}
	data, err := json.Marshal(services)
	if err != nil {
		return nil, fmt.Errorf("encode services snapshot: %w", err)
	}
	return data, nil
}
