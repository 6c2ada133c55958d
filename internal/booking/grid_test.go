package booking

import (
	"strings"
	"testing"
)

func TestSlots(t *testing.T) {
	tests := []struct {
		name     string
		opensAt  string
		closesAt string
		want     []string
	}{
		{
			name:     "standard morning window",
			opensAt:  "08:00",
			closesAt: "10:00",
			want:     []string{"08:00", "08:30", "09:00", "09:30"},
		},
		{
			name:     "half hour offset open",
			opensAt:  "08:30",
			closesAt: "10:00",
			want:     []string{"08:30", "09:00", "09:30"},
		},
		{
			name:     "single slot",
			opensAt:  "21:30",
			closesAt: "22:00",
			want:     []string{"21:30"},
		},
		{
			name:     "open equals close",
			opensAt:  "08:00",
			closesAt: "08:00",
			want:     []string{},
		},
		{
			name:     "open after close",
			opensAt:  "22:00",
			closesAt: "08:00",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slots(tt.opensAt, tt.closesAt)
			if err != nil {
				t.Fatalf("Slots(%q, %q): %v", tt.opensAt, tt.closesAt, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Slots(%q, %q) = %v, want %v", tt.opensAt, tt.closesAt, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slot %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSlotsFullDayCount(t *testing.T) {
	// 08:00-22:00 is 14 hours, so 28 half-hour slots.
	got, err := Slots("08:00", "22:00")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(got) != 28 {
		t.Fatalf("expected 28 slots, got %d", len(got))
	}

	// Labels must be strictly increasing, valid, zero-padded HH:MM.
	prev := -1
	for _, slot := range got {
		if len(slot) != 5 || !strings.Contains(slot, ":") {
			t.Fatalf("malformed slot label %q", slot)
		}
		minute, err := ParseClock(slot)
		if err != nil {
			t.Fatalf("slot %q does not parse: %v", slot, err)
		}
		if minute <= prev {
			t.Fatalf("slot %q is not strictly increasing", slot)
		}
		prev = minute
	}
}

func TestSlotsInvalidInput(t *testing.T) {
	if _, err := Slots("8am", "22:00"); err == nil {
		t.Error("expected error for invalid opens_at")
	}
	if _, err := Slots("08:00", "late"); err == nil {
		t.Error("expected error for invalid closes_at")
	}
}

func TestFormatClockZeroPadding(t *testing.T) {
	if got := FormatClock(510); got != "08:30" {
		t.Errorf("FormatClock(510) = %q, want 08:30", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %q, want 00:00", got)
	}
}
