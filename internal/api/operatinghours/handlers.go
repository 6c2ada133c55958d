// internal/api/operatinghours/handlers.go
package operatinghours

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/db"
)

const (
	operatingHoursQueryTimeout = 5 * time.Second
	dayOfWeekParam             = "day_of_week"
	defaultOpensAt             = "08:00"
	defaultClosesAt            = "22:00"
)

var (
	queries     *db.Queries
	queriesOnce sync.Once
)

type operatingHoursRequest struct {
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
	IsClosed bool   `json:"is_closed"`
}

type dayHoursResponse struct {
	DayOfWeek int64  `json:"day_of_week"`
	OpensAt   string `json:"opens_at,omitempty"`
	ClosesAt  string `json:"closes_at,omitempty"`
	IsClosed  bool   `json:"is_closed"`
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

// GET /api/v1/operating-hours
func HandleOperatingHoursList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ownerID, ok := apiutil.OwnerScope(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	hours, err := q.ListOperatingHours(ctx, ownerID)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to fetch operating hours")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load operating hours")
		return
	}

	hoursByDay := make(map[int64]db.OperatingHour, len(hours))
	for _, hour := range hours {
		hoursByDay[hour.DayOfWeek] = hour
	}

	// Days with no stored row fall back to the default window; a club that
	// wants a day closed deletes it explicitly via is_closed.
	days := make([]dayHoursResponse, 0, 7)
	for day := int64(0); day < 7; day++ {
		entry := dayHoursResponse{DayOfWeek: day, OpensAt: defaultOpensAt, ClosesAt: defaultClosesAt}
		if hour, ok := hoursByDay[day]; ok {
			entry.OpensAt = hour.OpensAt
			entry.ClosesAt = hour.ClosesAt
		}
		days = append(days, entry)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, days); err != nil {
		logger.Error().Err(err).Msg("Failed to write operating hours response")
	}
}

// PUT /api/v1/operating-hours/{day_of_week}
func HandleOperatingHoursUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	dayOfWeek, err := dayOfWeekFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req operatingHoursRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownerID, ok := apiutil.OwnerScope(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	if req.IsClosed {
		if _, err := q.DeleteOperatingHours(ctx, db.DeleteOperatingHoursParams{
			OwnerID:   ownerID,
			DayOfWeek: dayOfWeek,
		}); err != nil {
			logger.Error().Err(err).Int64("owner_id", ownerID).Int64("day_of_week", dayOfWeek).Msg("Failed to delete operating hours")
			apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update operating hours")
			return
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"deleted": true}); err != nil {
			logger.Error().Err(err).Msg("Failed to write operating hours response")
		}
		return
	}

	opensAt, opensTime, err := parseOperatingTime(req.OpensAt, "opens_at")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	closesAt, closesTime, err := parseOperatingTime(req.ClosesAt, "closes_at")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !opensTime.Before(closesTime) {
		apiutil.WriteError(w, http.StatusBadRequest, "opens_at must be before closes_at")
		return
	}

	updated, err := q.UpsertOperatingHours(ctx, db.UpsertOperatingHoursParams{
		OwnerID:   ownerID,
		DayOfWeek: dayOfWeek,
		OpensAt:   opensAt,
		ClosesAt:  closesAt,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Int64("day_of_week", dayOfWeek).Msg("Failed to upsert operating hours")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update operating hours")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, dayHoursResponse{
		DayOfWeek: updated.DayOfWeek,
		OpensAt:   updated.OpensAt,
		ClosesAt:  updated.ClosesAt,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write operating hours response")
	}
}

func parseOperatingTime(raw string, field string) (string, time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("%s is required", field)
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s must be in HH:MM format", field)
	}
	return parsed.Format("15:04"), parsed, nil
}

func dayOfWeekFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(dayOfWeekParam))
	if raw == "" {
		return 0, fmt.Errorf("invalid day_of_week")
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 || value > 6 {
		return 0, fmt.Errorf("day_of_week must be between 0 and 6")
	}
	return value, nil
}

func loadQueries() *db.Queries {
	return queries
}
