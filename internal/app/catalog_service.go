package app

import (
	"context"
	"sync"
	"time"

	"github.com/kferacho3/BodegaDanes/internal/domain"
)

type CatalogLister interface {
	ListServices(ctx context.Context) ([]domain.ServiceTier, error)
}

// DayFinder resolves a calendar day's availability row, nil when no row
// exists for the date.
type DayFinder interface {
	GetDay(ctx context.Context, date time.Time) (*domain.DayAvailability, error)
}

// CatalogService serves the bookable service tiers sourced from the
// payment processor's product/price records, cached in-process until a
// catalog-changed webhook invalidates it.
type CatalogService struct {
	gateway CatalogLister
	days    DayFinder

	mu     sync.Mutex
	cached []domain.ServiceTier
	valid  bool
}

func NewCatalogService(gateway CatalogLister, days DayFinder) *CatalogService {
	return &CatalogService{gateway: gateway, days: days}
}

// Services returns the global catalog, fetching from the processor on a
// cold or invalidated cache.
func (s *CatalogService) Services(ctx context.Context) ([]domain.ServiceTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.valid {
		return s.cached, nil
	}
	tiers, err := s.gateway.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	s.cached = tiers
	s.valid = true
	return tiers, nil
}

// Invalidate drops the cached catalog; the next Services call refetches.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.cached = nil
	s.mu.Unlock()
}

// ServicesForDay is the explicit fallback rule for per-day tiers: a day
// with a non-empty snapshot serves the snapshot; otherwise the global
// catalog applies. day may be nil (no availability row).
func (s *CatalogService) ServicesForDay(ctx context.Context, day *domain.DayAvailability) ([]domain.ServiceTier, error) {
	if day != nil && len(day.Services) > 0 {
		return day.Services, nil
	}
	return s.Services(ctx)
}

// ServicesOn resolves the tiers offered on a specific YYYY-MM-DD date by
// looking up the day's row and applying the ServicesForDay fallback.
func (s *CatalogService) ServicesOn(ctx context.Context, date string) ([]domain.ServiceTier, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	row, err := s.days.GetDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return s.ServicesForDay(ctx, row)
}
