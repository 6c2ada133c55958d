// internal/booking/grid.go

// Package booking holds the calendar core: the day's slot grid, slot
// occupancy resolution, booking pricing, and the drag-reschedule state
// machine. Everything here is pure; persistence lives in the handlers.
package booking

import (
	"fmt"
	"time"
)

// SlotMinutes is the fixed width of one calendar slot.
const SlotMinutes = 30

// Slots returns the ordered "HH:MM" labels from opensAt to closesAt
// (exclusive) in 30-minute increments. A window where opensAt >= closesAt
// yields an empty grid; the loop is bounded by minute arithmetic, never by
// wall-clock time.
func Slots(opensAt, closesAt string) ([]string, error) {
	open, err := ParseClock(opensAt)
	if err != nil {
		return nil, fmt.Errorf("invalid opens_at: %w", err)
	}
	closeMin, err := ParseClock(closesAt)
	if err != nil {
		return nil, fmt.Errorf("invalid closes_at: %w", err)
	}

	slots := []string{}
	for minute := open; minute < closeMin; minute += SlotMinutes {
		slots = append(slots, FormatClock(minute))
	}
	return slots, nil
}

// ParseClock converts an "HH:MM" label into minutes since midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("must be in HH:MM format: %w", err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" label.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
