package booking

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestOccupiesBoundaries(t *testing.T) {
	b := Booking{
		ID:      1,
		CourtID: 7,
		Start:   mustDate(t, "2024-06-01 09:00"),
		End:     mustDate(t, "2024-06-01 10:30"),
	}

	tests := []struct {
		name    string
		courtID int64
		slot    string
		want    bool
	}{
		{"slot before start", 7, "08:30", false},
		{"first slot", 7, "09:00", true},
		{"middle slot", 7, "09:30", true},
		{"last covered slot", 7, "10:00", true},
		{"end is exclusive", 7, "10:30", false},
		{"different court", 8, "09:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minute, err := ParseClock(tt.slot)
			if err != nil {
				t.Fatalf("parse slot: %v", err)
			}
			if got := b.Occupies(tt.courtID, minute); got != tt.want {
				t.Errorf("Occupies(%d, %s) = %v, want %v", tt.courtID, tt.slot, got, tt.want)
			}
		})
	}
}

func TestCancelledBookingNeverOccupies(t *testing.T) {
	b := Booking{
		ID:        2,
		CourtID:   1,
		Start:     mustDate(t, "2024-06-01 09:00"),
		End:       mustDate(t, "2024-06-01 10:00"),
		Cancelled: true,
	}
	minute, _ := ParseClock("09:00")
	if b.Occupies(1, minute) {
		t.Error("cancelled booking must not occupy its slots")
	}
	if b.Anchors(1, minute) {
		t.Error("cancelled booking must not anchor")
	}
}

func TestSpanSlots(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"one hour", "2024-06-01 09:00", "2024-06-01 10:00", 2},
		{"ninety minutes", "2024-06-01 09:00", "2024-06-01 10:30", 3},
		{"two and a half hours", "2024-06-01 09:00", "2024-06-01 11:30", 5},
		// Off-grid durations must not crash the renderer: round, floor at 1.
		{"forty minutes rounds up", "2024-06-01 09:00", "2024-06-01 09:40", 1},
		{"fifty minutes rounds to two", "2024-06-01 09:00", "2024-06-01 09:50", 2},
		{"ten minutes floors at one", "2024-06-01 09:00", "2024-06-01 09:10", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{Start: mustDate(t, tt.start), End: mustDate(t, tt.end)}
			if got := b.SpanSlots(); got != tt.want {
				t.Errorf("SpanSlots() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveCellStates(t *testing.T) {
	bookings := []Booking{
		{
			ID:      10,
			CourtID: 1,
			Start:   mustDate(t, "2024-06-01 09:00"),
			End:     mustDate(t, "2024-06-01 10:00"),
		},
		// Back to back on the same court: must not merge with the first.
		{
			ID:      11,
			CourtID: 1,
			Start:   mustDate(t, "2024-06-01 10:00"),
			End:     mustDate(t, "2024-06-01 11:00"),
		},
	}

	tests := []struct {
		slot      string
		wantState CellState
		wantID    int64
	}{
		{"08:30", CellFree, 0},
		{"09:00", CellAnchor, 10},
		{"09:30", CellContinuation, 10},
		{"10:00", CellAnchor, 11},
		{"10:30", CellContinuation, 11},
		{"11:00", CellFree, 0},
	}

	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			cell, err := ResolveCell(1, tt.slot, bookings)
			if err != nil {
				t.Fatalf("ResolveCell: %v", err)
			}
			if cell.State != tt.wantState {
				t.Errorf("state = %s, want %s", cell.State, tt.wantState)
			}
			if cell.BookingID != tt.wantID {
				t.Errorf("booking id = %d, want %d", cell.BookingID, tt.wantID)
			}
		})
	}
}

func TestResolveCellFirstMatchWins(t *testing.T) {
	// Overlapping bookings are a data inconsistency; the first in query
	// order anchors the cell.
	bookings := []Booking{
		{ID: 20, CourtID: 1, Start: mustDate(t, "2024-06-01 09:00"), End: mustDate(t, "2024-06-01 10:00")},
		{ID: 21, CourtID: 1, Start: mustDate(t, "2024-06-01 09:00"), End: mustDate(t, "2024-06-01 11:00")},
	}

	cell, err := ResolveCell(1, "09:00", bookings)
	if err != nil {
		t.Fatalf("ResolveCell: %v", err)
	}
	if cell.BookingID != 20 {
		t.Errorf("booking id = %d, want first match 20", cell.BookingID)
	}
}

func TestBuildGrid(t *testing.T) {
	slots, err := Slots("09:00", "11:00")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	bookings := []Booking{
		{ID: 30, CourtID: 2, Start: mustDate(t, "2024-06-01 09:00"), End: mustDate(t, "2024-06-01 10:00")},
	}

	columns, err := BuildGrid(slots, []int64{1, 2}, bookings)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if len(columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(columns))
	}

	// Court 1 is completely free.
	for i, cell := range columns[0].Cells {
		if cell.State != CellFree {
			t.Errorf("court 1 slot %d: state %s, want free", i, cell.State)
		}
	}

	// Court 2: anchor at 09:00 spanning two slots, continuation at 09:30.
	court2 := columns[1].Cells
	if court2[0].State != CellAnchor || court2[0].Span != 2 {
		t.Errorf("court 2 slot 0: state %s span %d, want anchor span 2", court2[0].State, court2[0].Span)
	}
	if court2[1].State != CellContinuation {
		t.Errorf("court 2 slot 1: state %s, want continuation", court2[1].State)
	}
	if court2[2].State != CellFree || court2[3].State != CellFree {
		t.Error("court 2 tail slots must be free")
	}
}
