// internal/api/calendar/handlers.go
package calendar

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/booking"
	"github.com/tmcruz/padeldesk/internal/db"
)

const (
	calendarQueryTimeout = 5 * time.Second
	defaultOpensAt       = "08:00"
	defaultClosesAt      = "22:00"
)

var (
	queries     *db.Queries
	queriesOnce sync.Once
)

type courtColumn struct {
	CourtID   int64          `json:"court_id"`
	CourtName string         `json:"court_name"`
	Cells     []calendarCell `json:"cells"`
}

type calendarCell struct {
	Slot      string `json:"slot"`
	State     string `json:"state"`
	BookingID int64  `json:"booking_id,omitempty"`
	Span      int    `json:"span,omitempty"`
}

type bookingCard struct {
	ID        int64   `json:"id"`
	CourtID   int64   `json:"court_id"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	EventType string  `json:"event_type"`
	Price     float64 `json:"price"`
	Players   string  `json:"players"`
}

type calendarResponse struct {
	Date     string        `json:"date"`
	OpensAt  string        `json:"opens_at"`
	ClosesAt string        `json:"closes_at"`
	Slots    []string      `json:"slots"`
	Columns  []courtColumn `json:"columns"`
	Bookings []bookingCard `json:"bookings"`
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

// GET /api/v1/calendar?date=YYYY-MM-DD
//
// Returns the fully resolved day grid: one slot row per half hour of the
// day's operating window and one column per active court, each cell free,
// anchor, or continuation.
func HandleCalendarDay(w http.ResponseWriter, r *http.Request) {
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

	day, err := apiutil.DateFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), calendarQueryTimeout)
	defer cancel()

	opensAt, closesAt := defaultOpensAt, defaultClosesAt
	hours, err := q.GetOperatingHours(ctx, db.GetOperatingHoursParams{
		OwnerID:   ownerID,
		DayOfWeek: int64(day.Weekday()),
	})
	switch {
	case err == nil:
		opensAt, closesAt = hours.OpensAt, hours.ClosesAt
	case errors.Is(err, sql.ErrNoRows):
		// No stored row means the default window.
	default:
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to load operating hours")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	slots, err := booking.Slots(opensAt, closesAt)
	if err != nil {
		logger.Error().Err(err).Str("opens_at", opensAt).Str("closes_at", closesAt).Msg("Invalid operating hours")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	courts, err := q.ListActiveCourts(ctx, ownerID)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list courts")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := q.ListBookingsForDay(ctx, db.ListBookingsForDayParams{
		OwnerID:   ownerID,
		StartTime: dayStart,
		EndTime:   dayStart.Add(24*time.Hour - time.Millisecond),
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list bookings")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	courtIDs := make([]int64, 0, len(courts))
	courtNames := make(map[int64]string, len(courts))
	for _, c := range courts {
		courtIDs = append(courtIDs, c.ID)
		courtNames[c.ID] = c.Name
	}

	gridBookings := make([]booking.Booking, 0, len(rows))
	cards := make([]bookingCard, 0, len(rows))
	for _, row := range rows {
		gridBookings = append(gridBookings, booking.Booking{
			ID:      row.ID,
			CourtID: row.CourtID,
			Start:   row.StartTime,
			End:     row.EndTime,
		})
		cards = append(cards, bookingCard{
			ID:        row.ID,
			CourtID:   row.CourtID,
			StartTime: row.StartTime.Format("15:04"),
			EndTime:   row.EndTime.Format("15:04"),
			EventType: row.EventType,
			Price:     booking.RoundForDisplay(row.Price),
			Players:   playerSummary(row.Players),
		})
	}

	grid, err := booking.BuildGrid(slots, courtIDs, gridBookings)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve calendar grid")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	columns := make([]courtColumn, 0, len(grid))
	for _, col := range grid {
		cells := make([]calendarCell, 0, len(col.Cells))
		for i, cell := range col.Cells {
			out := calendarCell{Slot: slots[i], State: cell.State.String()}
			if cell.State != booking.CellFree {
				out.BookingID = cell.BookingID
				out.Span = cell.Span
			}
			cells = append(cells, out)
		}
		columns = append(columns, courtColumn{
			CourtID:   col.CourtID,
			CourtName: courtNames[col.CourtID],
			Cells:     cells,
		})
	}

	response := calendarResponse{
		Date:     day.Format("2006-01-02"),
		OpensAt:  opensAt,
		ClosesAt: closesAt,
		Slots:    slots,
		Columns:  columns,
		Bookings: cards,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write calendar response")
	}
}

// playerSummary joins the filled-in player names for the booking card.
func playerSummary(players [4]db.PlayerSlot) string {
	var names []string
	for _, p := range players {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	summary := names[0]
	for _, name := range names[1:] {
		summary += ", " + name
	}
	return summary
}

func loadQueries() *db.Queries {
	return queries
}
