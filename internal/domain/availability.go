package domain

import "time"

type DayStatus string

const (
	DayStatusOpen   DayStatus = "OPEN"
	DayStatusOff    DayStatus = "OFF"
	DayStatusBooked DayStatus = "BOOKED"
)

// ValidDayStatus reports whether s is one of the three calendar states.
func ValidDayStatus(s DayStatus) bool {
	switch s {
	case DayStatusOpen, DayStatusOff, DayStatusBooked:
		return true
	}
	return false
}

// DayAvailability is one calendar day. Date is normalized to midnight UTC
// and is the natural key: at most one row per date. Services optionally
// snapshots the tiers offered on that day; an empty snapshot means the
// global catalog applies (see CatalogService.ServicesForDay).
type DayAvailability struct {
	Date     time.Time
	Status   DayStatus
	Services []ServiceTier
}
