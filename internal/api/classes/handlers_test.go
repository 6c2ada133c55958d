package classes

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tmcruz/padeldesk/internal/api/authz"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/testutil"
)

func setupClassesTest(t *testing.T) (*db.DB, int64, int64) {
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

	court, err := database.Queries.CreateCourt(ctx, db.CreateCourtParams{
		OwnerID:    owner.ID,
		Name:       "Court 1",
		CourtType:  "indoor",
		HourlyRate: 20,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	store = nil
	queries = nil
	queriesOnce = sync.Once{}
	InitHandlers(database)

	t.Cleanup(func() {
		store = nil
		queries = nil
		queriesOnce = sync.Once{}
	})

	return database, owner.ID, court.ID
}

func withAuthUser(req *http.Request, ownerID int64) *http.Request {
	user := &authz.AuthUser{ID: ownerID, Role: "owner"}
	return req.WithContext(authz.ContextWithUser(req.Context(), user))
}

// seedClass creates a Saturday 09:00 class lasting 90 minutes.
func seedClass(t *testing.T, database *db.DB, ownerID, courtID int64) db.Class {
	t.Helper()

	class, err := database.Queries.CreateClass(context.Background(), db.CreateClassParams{
		OwnerID:         ownerID,
		Name:            "Junior Training",
		Coach:           "Miguel",
		CourtID:         courtID,
		DayOfWeek:       6,
		StartsAt:        "09:00",
		DurationMinutes: 90,
		Price:           40,
	})
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	return class
}

func scheduleClass(t *testing.T, ownerID, classID int64, date string) *httptest.ResponseRecorder {
	t.Helper()

	body := fmt.Sprintf(`{"date": %q}`, date)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/classes/%d/schedule", classID), strings.NewReader(body))
	req.SetPathValue(classIDParam, fmt.Sprint(classID))
	req.Header.Set("Content-Type", "application/json")
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleClassSchedule(recorder, req)
	return recorder
}

func TestHandleClassCreate(t *testing.T) {
	_, ownerID, courtID := setupClassesTest(t)

	body := fmt.Sprintf(`{
		"name": "Junior Training",
		"coach": "Miguel",
		"court_id": %d,
		"day_of_week": 6,
		"starts_at": "09:00",
		"duration_minutes": 90,
		"price": 40
	}`, courtID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleClassCreate(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var created classResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "Junior Training" || created.DayOfWeek != 6 || created.DurationMinutes != 90 {
		t.Errorf("created = %+v", created)
	}
}

func TestHandleClassCreate_BadStartTime(t *testing.T) {
	_, ownerID, courtID := setupClassesTest(t)

	body := fmt.Sprintf(`{"name": "X", "court_id": %d, "starts_at": "9am", "duration_minutes": 60}`, courtID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleClassCreate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d, want 400", recorder.Code)
	}
}

func TestHandleClassSchedule(t *testing.T) {
	database, ownerID, courtID := setupClassesTest(t)
	class := seedClass(t, database, ownerID, courtID)

	// 2024-06-01 is a Saturday
	recorder := scheduleClass(t, ownerID, class.ID, "2024-06-01")

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		BookingID int64  `json:"booking_id"`
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.EventType != "training" {
		t.Errorf("event_type = %s, want training", response.EventType)
	}

	booking, err := database.Queries.GetBookingByID(context.Background(), response.BookingID)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking.StartTime.Hour() != 9 || booking.EndTime.Sub(booking.StartTime) != 90*time.Minute {
		t.Errorf("booking window = %v-%v, want 09:00 for 90 minutes", booking.StartTime, booking.EndTime)
	}
	if booking.Price != 40 {
		t.Errorf("price = %v, want the class price 40", booking.Price)
	}
}

func TestHandleClassSchedule_WrongWeekday(t *testing.T) {
	database, ownerID, courtID := setupClassesTest(t)
	class := seedClass(t, database, ownerID, courtID)

	// 2024-06-03 is a Monday; the class runs on Saturdays
	recorder := scheduleClass(t, ownerID, class.ID, "2024-06-03")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d, want 400", recorder.Code)
	}
}

func TestHandleClassSchedule_CourtConflict(t *testing.T) {
	database, ownerID, courtID := setupClassesTest(t)
	class := seedClass(t, database, ownerID, courtID)

	start := time.Date(2024, 6, 1, 9, 30, 0, 0, time.Local)
	if _, err := database.Queries.CreateBooking(context.Background(), db.CreateBookingParams{
		OwnerID:       ownerID,
		CourtID:       courtID,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		PaymentStatus: "pending",
		EventType:     "match",
	}); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	recorder := scheduleClass(t, ownerID, class.ID, "2024-06-01")

	if recorder.Code != http.StatusConflict {
		t.Fatalf("status: %d, want 409", recorder.Code)
	}
}

func TestHandleClassSchedule_CrossTenant(t *testing.T) {
	database, ownerID, courtID := setupClassesTest(t)
	class := seedClass(t, database, ownerID, courtID)

	other, err := database.Queries.CreateOwner(context.Background(), db.CreateOwnerParams{
		Name: "Other", Email: "other@test.com", PasswordHash: "x", Role: "owner",
	})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	recorder := scheduleClass(t, other.ID, class.ID, "2024-06-01")

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status: %d, want 404", recorder.Code)
	}
}
