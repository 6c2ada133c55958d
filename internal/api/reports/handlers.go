// internal/api/reports/handlers.go
package reports

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/reports"
)

const (
	reportQueryTimeout = 5 * time.Second

	// Guard against unbounded scans; a year of history is plenty for the
	// revenue screen.
	maxReportWindow = 366 * 24 * time.Hour
)

var (
	queries     *db.Queries
	queriesOnce sync.Once
)

type revenueResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Summary reports.Summary `json:"summary"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

// GET /api/v1/reports/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD
//
// The window is [from 00:00, day after to 00:00); both bounds default to
// today, so a bare request reports the current day.
func HandleRevenueReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ownerID, ok := apiutil.OwnerScopeFromQuery(w, r)
	if !ok {
		return
	}

	from, err := dateParam(r, "from")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to.Before(from) {
		apiutil.WriteError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	windowEnd := to.Add(24 * time.Hour)
	if windowEnd.Sub(from) > maxReportWindow {
		apiutil.WriteError(w, http.StatusBadRequest, "Report window is limited to one year")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportQueryTimeout)
	defer cancel()

	rows, err := q.ListBookingsBetween(ctx, db.ListBookingsBetweenParams{
		OwnerID:   ownerID,
		StartTime: from,
		EndTime:   windowEnd,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to load report bookings")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	response := revenueResponse{
		From:    from.Format("2006-01-02"),
		To:      to.Format("2006-01-02"),
		Summary: reports.Summarize(rows),
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write report response")
	}
}

func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, apiutil.FieldError{Field: name, Reason: "must be YYYY-MM-DD"}
	}
	return day, nil
}

func loadQueries() *db.Queries {
	return queries
}
