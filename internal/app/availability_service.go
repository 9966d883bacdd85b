package app

import (
	"context"
	"time"

	"github.com/kferacho3/BodegaDanes/internal/clock"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

type AvailabilityRepository interface {
	List(ctx context.Context) ([]domain.DayAvailability, error)
	UpsertMany(ctx context.Context, rows []domain.DayAvailability) error
	ReplaceAll(ctx context.Context, rows []domain.DayAvailability) error
	DeleteAll(ctx context.Context) error
}

// AvailabilityService is the single source of truth for which calendar
// dates are bookable. Admin edits toggle OPEN/OFF; the booking flow flips
// OPEN days to BOOKED; reconciliation may release BOOKED back to OPEN.
type AvailabilityService struct {
	repo  AvailabilityRepository
	clock clock.Clock
}

func NewAvailabilityService(repo AvailabilityRepository, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{repo: repo, clock: clk}
}

// List returns every row ascending by date. An empty store is an empty
// list, not an error.
func (s *AvailabilityService) List(ctx context.Context) ([]domain.DayAvailability, error) {
	return s.repo.List(ctx)
}

type DayStatusInput struct {
	Date   string
	Status string
}

// SetStatus upserts each {date, status} pair in one transaction. Dates
// strictly before today (UTC) are rejected; toggling "today" itself is
// allowed so the operator can close out the current day.
func (s *AvailabilityService) SetStatus(ctx context.Context, inputs []DayStatusInput) (int, error) {
	rows, err := s.validate(inputs, true)
	if err != nil {
		return 0, err
	}
	if err := s.repo.UpsertMany(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ReplaceAll swaps the whole calendar for the provided rows as a single
// atomic unit. Any invalid row aborts before a single write; a storage
// failure rolls the whole replace back.
func (s *AvailabilityService) ReplaceAll(ctx context.Context, inputs []DayStatusInput) error {
	rows, err := s.validate(inputs, false)
	if err != nil {
		return err
	}
	return s.repo.ReplaceAll(ctx, rows)
}

// ClearAll deletes every row. Idempotent.
func (s *AvailabilityService) ClearAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func (s *AvailabilityService) validate(inputs []DayStatusInput, rejectPast bool) ([]domain.DayAvailability, error) {
	today := midnightUTC(s.clock.Now())
	rows := make([]domain.DayAvailability, 0, len(inputs))
	for _, in := range inputs {
		day, err := parseDay(in.Date)
		if err != nil {
			return nil, err
		}
		status := domain.DayStatus(in.Status)
		if !domain.ValidDayStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		if rejectPast && day.Before(today) {
			return nil, domain.ErrDateInPast
		}
		rows = append(rows, domain.DayAvailability{Date: day, Status: status})
	}
	return rows, nil
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
