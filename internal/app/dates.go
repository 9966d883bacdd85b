package app

import (
	"regexp"
	"time"

	"github.com/kferacho3/BodegaDanes/internal/domain"
)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// parseDay parses a YYYY-MM-DD string into midnight UTC. The pattern check
// runs first so "2025-6-1" and timestamps are rejected before time.Parse
// gets a chance to be lenient.
func parseDay(s string) (time.Time, error) {
	if !dayPattern.MatchString(s) {
		return time.Time{}, domain.ErrInvalidDate
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t.UTC(), nil
}

func formatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
