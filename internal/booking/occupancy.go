// internal/booking/occupancy.go
package booking

import (
	"math"
	"time"
)

// Booking is the slice of a stored booking the calendar core needs. The
// court reference is required and fully typed; handlers map database rows
// into this shape before resolving the grid.
type Booking struct {
	ID        int64
	CourtID   int64
	Start     time.Time
	End       time.Time
	Cancelled bool
}

// Duration returns the booking's length.
func (b Booking) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// SpanSlots is the number of consecutive grid rows the booking's card
// visually occupies. Durations that are not a multiple of 30 minutes round
// to the nearest slot and never drop below one row.
func (b Booking) SpanSlots() int {
	span := int(math.Round(b.Duration().Minutes() / SlotMinutes))
	if span < 1 {
		span = 1
	}
	return span
}

// startMinute and endMinute express the booking's range in minutes since
// midnight of the booking's own start day, so a booking running past
// midnight keeps a monotonic range instead of wrapping.
func (b Booking) startMinute() int {
	midnight := time.Date(b.Start.Year(), b.Start.Month(), b.Start.Day(), 0, 0, 0, 0, b.Start.Location())
	return int(b.Start.Sub(midnight).Minutes())
}

func (b Booking) endMinute() int {
	midnight := time.Date(b.Start.Year(), b.Start.Month(), b.Start.Day(), 0, 0, 0, 0, b.Start.Location())
	return int(b.End.Sub(midnight).Minutes())
}

// Occupies reports whether the booking covers the slot starting at
// slotMinute on the given court. The boundary conditions matter: the end
// minute is exclusive so back-to-back bookings neither merge nor gap.
func (b Booking) Occupies(courtID int64, slotMinute int) bool {
	if b.Cancelled || b.CourtID != courtID {
		return false
	}
	return b.startMinute() <= slotMinute && slotMinute < b.endMinute()
}

// Anchors reports whether the slot is the booking's anchor cell: the one
// whose start falls inside the booking's first half hour.
func (b Booking) Anchors(courtID int64, slotMinute int) bool {
	if b.Cancelled || b.CourtID != courtID {
		return false
	}
	start := b.startMinute()
	return start <= slotMinute && slotMinute < start+SlotMinutes
}

// CellState is the resolved occupancy of one (court, slot) grid cell.
type CellState int

const (
	// CellFree accepts clicks and drops.
	CellFree CellState = iota
	// CellAnchor draws the booking card spanning Cell.Span rows.
	CellAnchor
	// CellContinuation blocks interaction but draws nothing itself.
	CellContinuation
)

func (s CellState) String() string {
	switch s {
	case CellAnchor:
		return "anchor"
	case CellContinuation:
		return "continuation"
	default:
		return "free"
	}
}

// Cell is one resolved grid cell. BookingID and Span are set for anchor and
// continuation cells.
type Cell struct {
	State     CellState
	BookingID int64
	Span      int
}

// ResolveCell maps a (court, slot) pair against the day's bookings.
// Overlapping bookings on one court are a data inconsistency the calendar
// does not try to repair: the first match in query order wins.
func ResolveCell(courtID int64, slot string, bookings []Booking) (Cell, error) {
	slotMinute, err := ParseClock(slot)
	if err != nil {
		return Cell{}, err
	}

	for _, b := range bookings {
		if !b.Occupies(courtID, slotMinute) {
			continue
		}
		cell := Cell{BookingID: b.ID, Span: b.SpanSlots()}
		if b.Anchors(courtID, slotMinute) {
			cell.State = CellAnchor
		} else {
			cell.State = CellContinuation
		}
		return cell, nil
	}
	return Cell{State: CellFree}, nil
}

// Column is the resolved day column for one court.
type Column struct {
	CourtID int64
	Cells   []Cell
}

// BuildGrid resolves every (court, slot) cell for the day.
func BuildGrid(slots []string, courtIDs []int64, bookings []Booking) ([]Column, error) {
	columns := make([]Column, 0, len(courtIDs))
	for _, courtID := range courtIDs {
		column := Column{CourtID: courtID, Cells: make([]Cell, 0, len(slots))}
		for _, slot := range slots {
			cell, err := ResolveCell(courtID, slot, bookings)
			if err != nil {
				return nil, err
			}
			column.Cells = append(column.Cells, cell)
		}
		columns = append(columns, column)
	}
	return columns, nil
}
