// internal/booking/drag.go
package booking

import (
	"errors"
	"time"
)

var (
	ErrNotDragging  = errors.New("no booking is being dragged")
	ErrNoDropTarget = errors.New("no drop target hovered")
)

// DragPhase replaces the original tangle of independent booleans with one
// enumerated state, so "hovering without dragging" cannot be represented.
type DragPhase int

const (
	PhaseIdle DragPhase = iota
	PhaseDragging
	PhaseHovering
	PhaseCommitted
)

func (p DragPhase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseHovering:
		return "hovering"
	case PhaseCommitted:
		return "committed"
	default:
		return "idle"
	}
}

// Move is the schedule change a committed drop persists.
type Move struct {
	BookingID int64
	CourtID   int64
	Start     time.Time
	End       time.Time
}

// Drag tracks a single booking being dragged across the grid.
type Drag struct {
	phase       DragPhase
	booking     Booking
	targetCourt int64
	targetSlot  string
}

func NewDrag() *Drag {
	return &Drag{phase: PhaseIdle}
}

func (d *Drag) Phase() DragPhase {
	return d.phase
}

// Booking returns the booking captured at drag-start.
func (d *Drag) Booking() Booking {
	return d.booking
}

// Start captures the full booking being moved.
func (d *Drag) Start(b Booking) {
	d.phase = PhaseDragging
	d.booking = b
	d.targetCourt = 0
	d.targetSlot = ""
}

// Hover updates the drop-target indicator as the pointer crosses cells.
func (d *Drag) Hover(courtID int64, slot string) {
	if d.phase != PhaseDragging && d.phase != PhaseHovering {
		return
	}
	d.phase = PhaseHovering
	d.targetCourt = courtID
	d.targetSlot = slot
}

// Target returns the hovered drop target, if any.
func (d *Drag) Target() (courtID int64, slot string, ok bool) {
	if d.phase != PhaseHovering {
		return 0, "", false
	}
	return d.targetCourt, d.targetSlot, true
}

// Reject ends the drag without a drop: dropped off-grid, or onto a slot a
// different booking occupies. No state changed, no error surfaced.
func (d *Drag) Reject() {
	d.phase = PhaseIdle
	d.targetCourt = 0
	d.targetSlot = ""
}

// Drop commits the drag onto the hovered target for the currently viewed
// day. The caller persists the returned Move and, on success, reloads the
// day; on failure the booking simply stays where it was since nothing was
// mutated optimistically.
func (d *Drag) Drop(day time.Time) (Move, error) {
	switch d.phase {
	case PhaseIdle, PhaseCommitted:
		return Move{}, ErrNotDragging
	case PhaseDragging:
		return Move{}, ErrNoDropTarget
	}

	move, err := PlanMove(d.booking, d.targetCourt, d.targetSlot, day)
	if err != nil {
		return Move{}, err
	}
	d.phase = PhaseCommitted
	return move, nil
}

// PlanMove computes the reschedule for dropping a booking on targetSlot of
// the viewed day: the original duration is preserved exactly.
func PlanMove(b Booking, targetCourt int64, targetSlot string, day time.Time) (Move, error) {
	slotMinute, err := ParseClock(targetSlot)
	if err != nil {
		return Move{}, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).
		Add(time.Duration(slotMinute) * time.Minute)

	return Move{
		BookingID: b.ID,
		CourtID:   targetCourt,
		Start:     start,
		End:       start.Add(b.Duration()),
	}, nil
}
