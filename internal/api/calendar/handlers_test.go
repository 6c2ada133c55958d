package calendar

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tmcruz/padeldesk/internal/api/authz"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/testutil"
)

func setupCalendarTest(t *testing.T) (*db.DB, int64, []int64) {
	t.Helper()

	database := testutil.NewTestDB(t)
	ctx := context.Background()

	owner, err := database.Queries.CreateOwner(ctx, db.CreateOwnerParams{
		Name:         "Club Owner",
		Email:        "owner@test.com",
		PasswordHash: "x",
		Role:         "owner",
	})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	var courtIDs []int64
	for _, name := range []string{"Court 1", "Court 2"} {
		court, err := database.Queries.CreateCourt(ctx, db.CreateCourtParams{
			OwnerID:    owner.ID,
			Name:       name,
			CourtType:  "indoor",
			HourlyRate: 20,
		})
		if err != nil {
			t.Fatalf("create court: %v", err)
		}
		courtIDs = append(courtIDs, court.ID)
	}

	queries = nil
	queriesOnce = sync.Once{}
	InitHandlers(database.Queries)

	t.Cleanup(func() {
		queries = nil
		queriesOnce = sync.Once{}
	})

	return database, owner.ID, courtIDs
}

func getCalendar(t *testing.T, ownerID int64, date string) calendarResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar?date="+date, nil)
	user := &authz.AuthUser{ID: ownerID, Role: "owner"}
	req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	recorder := httptest.NewRecorder()

	HandleCalendarDay(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var response calendarResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return response
}

func cellAt(t *testing.T, response calendarResponse, courtID int64, slot string) calendarCell {
	t.Helper()
	for _, col := range response.Columns {
		if col.CourtID != courtID {
			continue
		}
		for _, cell := range col.Cells {
			if cell.Slot == slot {
				return cell
			}
		}
	}
	t.Fatalf("no cell for court %d slot %s", courtID, slot)
	return calendarCell{}
}

func TestHandleCalendarDay_ExplicitOwnerScope(t *testing.T) {
	_, ownerID, _ := setupCalendarTest(t)

	tests := []struct {
		name       string
		ownerParam int64
		wantStatus int
	}{
		{"own scope", ownerID, http.StatusOK},
		{"foreign scope", ownerID + 1, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := fmt.Sprintf("/api/v1/calendar?date=2024-06-01&owner_id=%d", tt.ownerParam)
			req := httptest.NewRequest(http.MethodGet, url, nil)
			user := &authz.AuthUser{ID: ownerID, Role: "owner"}
			req = req.WithContext(authz.ContextWithUser(req.Context(), user))
			recorder := httptest.NewRecorder()

			HandleCalendarDay(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status: %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleCalendarDay_DefaultHours(t *testing.T) {
	_, ownerID, courtIDs := setupCalendarTest(t)

	response := getCalendar(t, ownerID, "2024-06-01")

	if response.OpensAt != "08:00" || response.ClosesAt != "22:00" {
		t.Errorf("hours = %s-%s, want default 08:00-22:00", response.OpensAt, response.ClosesAt)
	}
	// 14 hours of half-hour slots
	if len(response.Slots) != 28 {
		t.Errorf("slots = %d, want 28", len(response.Slots))
	}
	if len(response.Columns) != len(courtIDs) {
		t.Errorf("columns = %d, want %d", len(response.Columns), len(courtIDs))
	}
	for _, col := range response.Columns {
		if len(col.Cells) != len(response.Slots) {
			t.Errorf("court %d has %d cells, want %d", col.CourtID, len(col.Cells), len(response.Slots))
		}
	}
}

func TestHandleCalendarDay_StoredHoursWindow(t *testing.T) {
	database, ownerID, _ := setupCalendarTest(t)

	// 2024-06-01 is a Saturday
	_, err := database.Queries.UpsertOperatingHours(context.Background(), db.UpsertOperatingHoursParams{
		OwnerID:   ownerID,
		DayOfWeek: 6,
		OpensAt:   "09:00",
		ClosesAt:  "13:00",
	})
	if err != nil {
		t.Fatalf("seed hours: %v", err)
	}

	response := getCalendar(t, ownerID, "2024-06-01")

	if response.OpensAt != "09:00" || response.ClosesAt != "13:00" {
		t.Errorf("hours = %s-%s, want 09:00-13:00", response.OpensAt, response.ClosesAt)
	}
	if len(response.Slots) != 8 {
		t.Errorf("slots = %d, want 8", len(response.Slots))
	}
	if response.Slots[0] != "09:00" || response.Slots[7] != "12:30" {
		t.Errorf("slot range = %s..%s", response.Slots[0], response.Slots[7])
	}
}

func TestHandleCalendarDay_ResolvesBookingCells(t *testing.T) {
	database, ownerID, courtIDs := setupCalendarTest(t)

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	created, err := database.Queries.CreateBooking(context.Background(), db.CreateBookingParams{
		OwnerID:       ownerID,
		CourtID:       courtIDs[0],
		StartTime:     start,
		EndTime:       start.Add(90 * time.Minute),
		Price:         30,
		PaymentStatus: "pending",
		EventType:     "match",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	response := getCalendar(t, ownerID, "2024-06-01")

	anchor := cellAt(t, response, courtIDs[0], "09:00")
	if anchor.State != "anchor" || anchor.BookingID != created.ID || anchor.Span != 3 {
		t.Errorf("09:00 = %+v, want anchor span 3 for booking %d", anchor, created.ID)
	}
	for _, slot := range []string{"09:30", "10:00"} {
		cell := cellAt(t, response, courtIDs[0], slot)
		if cell.State != "continuation" || cell.BookingID != created.ID {
			t.Errorf("%s = %+v, want continuation", slot, cell)
		}
	}
	// End boundary is exclusive
	if cell := cellAt(t, response, courtIDs[0], "10:30"); cell.State != "free" {
		t.Errorf("10:30 = %+v, want free", cell)
	}
	// The other court is untouched
	if cell := cellAt(t, response, courtIDs[1], "09:00"); cell.State != "free" {
		t.Errorf("other court 09:00 = %+v, want free", cell)
	}

	if len(response.Bookings) != 1 || response.Bookings[0].ID != created.ID {
		t.Errorf("bookings = %+v, want one card for booking %d", response.Bookings, created.ID)
	}
}

func TestHandleCalendarDay_ExcludesCancelled(t *testing.T) {
	database, ownerID, courtIDs := setupCalendarTest(t)

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	created, err := database.Queries.CreateBooking(context.Background(), db.CreateBookingParams{
		OwnerID:       ownerID,
		CourtID:       courtIDs[0],
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		PaymentStatus: "pending",
		EventType:     "match",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := database.Queries.CancelBooking(context.Background(), db.CancelBookingParams{
		ID:      created.ID,
		OwnerID: ownerID,
	}); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	response := getCalendar(t, ownerID, "2024-06-01")

	if cell := cellAt(t, response, courtIDs[0], "09:00"); cell.State != "free" {
		t.Errorf("cancelled booking still occupies cell: %+v", cell)
	}
	if len(response.Bookings) != 0 {
		t.Errorf("cancelled booking still listed: %+v", response.Bookings)
	}
}

func TestHandleCalendarDay_Unauthorized(t *testing.T) {
	setupCalendarTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar?date=2024-06-01", nil)
	recorder := httptest.NewRecorder()

	HandleCalendarDay(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d, want 401", recorder.Code)
	}
}
