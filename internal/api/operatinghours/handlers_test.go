package operatinghours

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

	"github.com/tmcruz/padeldesk/internal/api/authz"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/testutil"
)

func setupOperatingHoursTest(t *testing.T) (*db.DB, int64) {
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

	queries = nil
	queriesOnce = sync.Once{}
	InitHandlers(database.Queries)

	t.Cleanup(func() {
		queries = nil
		queriesOnce = sync.Once{}
	})

	return database, owner.ID
}

func withAuthUser(req *http.Request, ownerID int64) *http.Request {
	user := &authz.AuthUser{ID: ownerID, Role: "owner"}
	return req.WithContext(authz.ContextWithUser(req.Context(), user))
}

func TestHandleOperatingHoursList_Defaults(t *testing.T) {
	_, ownerID := setupOperatingHoursTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/operating-hours", nil)
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleOperatingHoursList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	var days []dayHoursResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("days = %d, want 7", len(days))
	}
	for _, day := range days {
		if day.OpensAt != defaultOpensAt || day.ClosesAt != defaultClosesAt {
			t.Errorf("day %d = %s-%s, want defaults", day.DayOfWeek, day.OpensAt, day.ClosesAt)
		}
	}
}

func TestHandleOperatingHoursList_MixesStoredAndDefault(t *testing.T) {
	database, ownerID := setupOperatingHoursTest(t)

	_, err := database.Queries.UpsertOperatingHours(context.Background(), db.UpsertOperatingHoursParams{
		OwnerID:   ownerID,
		DayOfWeek: 1,
		OpensAt:   "07:00",
		ClosesAt:  "23:00",
	})
	if err != nil {
		t.Fatalf("seed hours: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/operating-hours", nil)
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleOperatingHoursList(recorder, req)

	var days []dayHoursResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if days[1].OpensAt != "07:00" || days[1].ClosesAt != "23:00" {
		t.Errorf("monday = %s-%s, want stored 07:00-23:00", days[1].OpensAt, days[1].ClosesAt)
	}
	if days[2].OpensAt != defaultOpensAt {
		t.Errorf("tuesday = %s, want default", days[2].OpensAt)
	}
}

func TestHandleOperatingHoursUpdate(t *testing.T) {
	_, ownerID := setupOperatingHoursTest(t)

	body := `{"opens_at": "07:30", "closes_at": "21:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/operating-hours/2", strings.NewReader(body))
	req.SetPathValue(dayOfWeekParam, "2")
	req.Header.Set("Content-Type", "application/json")
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleOperatingHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var updated dayHoursResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.DayOfWeek != 2 || updated.OpensAt != "07:30" || updated.ClosesAt != "21:00" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestHandleOperatingHoursUpdate_Validation(t *testing.T) {
	_, ownerID := setupOperatingHoursTest(t)

	tests := []struct {
		name string
		day  string
		body string
	}{
		{"opens after closes", "2", `{"opens_at": "22:00", "closes_at": "08:00"}`},
		{"equal times", "2", `{"opens_at": "08:00", "closes_at": "08:00"}`},
		{"bad format", "2", `{"opens_at": "8am", "closes_at": "22:00"}`},
		{"missing opens", "2", `{"closes_at": "22:00"}`},
		{"day out of range", "7", `{"opens_at": "08:00", "closes_at": "22:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/operating-hours/%s", tt.day), strings.NewReader(tt.body))
			req.SetPathValue(dayOfWeekParam, tt.day)
			req.Header.Set("Content-Type", "application/json")
			req = withAuthUser(req, ownerID)
			recorder := httptest.NewRecorder()

			HandleOperatingHoursUpdate(recorder, req)

			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status: %d, want 400", recorder.Code)
			}
		})
	}
}

func TestHandleOperatingHoursUpdate_ClosedDayDeletes(t *testing.T) {
	database, ownerID := setupOperatingHoursTest(t)

	_, err := database.Queries.UpsertOperatingHours(context.Background(), db.UpsertOperatingHoursParams{
		OwnerID:   ownerID,
		DayOfWeek: 0,
		OpensAt:   "10:00",
		ClosesAt:  "18:00",
	})
	if err != nil {
		t.Fatalf("seed hours: %v", err)
	}

	body := `{"is_closed": true}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/operating-hours/0", strings.NewReader(body))
	req.SetPathValue(dayOfWeekParam, "0")
	req.Header.Set("Content-Type", "application/json")
	req = withAuthUser(req, ownerID)
	recorder := httptest.NewRecorder()

	HandleOperatingHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}

	hours, err := database.Queries.ListOperatingHours(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("list hours: %v", err)
	}
	if len(hours) != 0 {
		t.Fatalf("hours remain after closed-day update: %+v", hours)
	}
}

func TestHandleOperatingHoursUpdate_Unauthorized(t *testing.T) {
	setupOperatingHoursTest(t)

	body := `{"opens_at": "08:00", "closes_at": "22:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/operating-hours/1", strings.NewReader(body))
	req.SetPathValue(dayOfWeekParam, "1")
	recorder := httptest.NewRecorder()

	HandleOperatingHoursUpdate(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d, want 401", recorder.Code)
	}
}
