// internal/api/classes/handlers.go
package classes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/db"
)

const (
	classQueryTimeout = 5 * time.Second
	classIDParam      = "id"
)

var (
	store       *db.DB
	queries     *db.Queries
	queriesOnce sync.Once

	validate = validator.New()
)

type classRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=80"`
	Coach           string  `json:"coach" validate:"max=80"`
	CourtID         int64   `json:"court_id" validate:"required,gt=0"`
	DayOfWeek       int64   `json:"day_of_week" validate:"gte=0,lte=6"`
	StartsAt        string  `json:"starts_at" validate:"required"`
	DurationMinutes int64   `json:"duration_minutes" validate:"required,gt=0,lte=360"`
	Price           float64 `json:"price" validate:"gte=0"`
}

type scheduleRequest struct {
	Date string `json:"date" validate:"required"`
}

type classResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Coach           string  `json:"coach,omitempty"`
	CourtID         int64   `json:"court_id"`
	DayOfWeek       int64   `json:"day_of_week"`
	StartsAt        string  `json:"starts_at"`
	DurationMinutes int64   `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// InitHandlers must be called during server startup before handling requests.
// Scheduling writes a booking inside a transaction, so this package needs the
// DB handle rather than bare queries.
func InitHandlers(d *db.DB) {
	if d == nil {
		return
	}
	queriesOnce.Do(func() {
		store = d
		queries = d.Queries
	})
}

// GET /api/v1/classes
func HandleClassesList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), classQueryTimeout)
	defer cancel()

	rows, err := q.ListClasses(ctx, ownerID)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list classes")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to list classes")
		return
	}

	response := make([]classResponse, 0, len(rows))
	for _, c := range rows {
		response = append(response, toClassResponse(c))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write classes response")
	}
}

// POST /api/v1/classes
func HandleClassCreate(w http.ResponseWriter, r *http.Request) {
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

	var req classRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid class payload")
		return
	}
	if _, err := time.Parse("15:04", req.StartsAt); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "starts_at must be HH:MM")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), classQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil || court.OwnerID != ownerID {
		apiutil.WriteError(w, http.StatusBadRequest, "Court not found")
		return
	}

	class, err := q.CreateClass(ctx, db.CreateClassParams{
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(req.Name),
		Coach:           strings.TrimSpace(req.Coach),
		CourtID:         req.CourtID,
		DayOfWeek:       req.DayOfWeek,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to create class")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create class")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, toClassResponse(class)); err != nil {
		logger.Error().Err(err).Msg("Failed to write class response")
	}
}

// POST /api/v1/classes/{id}/schedule
//
// Materializes one occurrence of a recurring class as a training booking on
// the calendar. The date must fall on the class's weekday, and the court
// must be free for the class's time range.
func HandleClassSchedule(w http.ResponseWriter, r *http.Request) {
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

	classID, err := apiutil.IDFromPath(r, classIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req scheduleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.Local)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), classQueryTimeout)
	defer cancel()

	class, err := q.GetClassByID(ctx, classID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && class.OwnerID != ownerID) {
		apiutil.WriteError(w, http.StatusNotFound, "Class not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("class_id", classID).Msg("Failed to load class")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to schedule class")
		return
	}

	if int64(day.Weekday()) != class.DayOfWeek {
		apiutil.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Class runs on weekday %d, not on %s", class.DayOfWeek, req.Date))
		return
	}

	startsAt, err := time.Parse("15:04", class.StartsAt)
	if err != nil {
		logger.Error().Err(err).Int64("class_id", classID).Str("starts_at", class.StartsAt).Msg("Corrupt class start time")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to schedule class")
		return
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), startsAt.Hour(), startsAt.Minute(), 0, 0, day.Location())
	end := start.Add(time.Duration(class.DurationMinutes) * time.Minute)

	notes := class.Name
	if class.Coach != "" {
		notes += " with " + class.Coach
	}

	// Conflict check and insert share one transaction so two concurrent
	// schedule calls cannot both claim the slot.
	var created db.Booking
	err = store.RunInTx(ctx, func(tx *db.DB) error {
		overlapping, err := tx.Queries.CountOverlappingBookings(ctx, db.CountOverlappingBookingsParams{
			CourtID:   class.CourtID,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return fmt.Errorf("checking class conflicts: %w", err)
		}
		if overlapping > 0 {
			return apiutil.HandlerError{
				Status:  http.StatusConflict,
				Message: "Court is already booked for that time",
			}
		}

		created, err = tx.Queries.CreateBooking(ctx, db.CreateBookingParams{
			OwnerID:       ownerID,
			CourtID:       class.CourtID,
			StartTime:     start,
			EndTime:       end,
			Price:         class.Price,
			PaymentStatus: "pending",
			EventType:     "training",
			Notes:         notes,
		})
		return err
	})
	if err != nil {
		var herr apiutil.HandlerError
		if errors.As(err, &herr) {
			apiutil.WriteError(w, herr.Status, herr.Message)
			return
		}
		logger.Error().Err(err).Int64("class_id", classID).Msg("Failed to create class booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to schedule class")
		return
	}

	response := map[string]interface{}{
		"booking_id": created.ID,
		"class_id":   class.ID,
		"court_id":   created.CourtID,
		"start_time": created.StartTime.Format(time.RFC3339),
		"end_time":   created.EndTime.Format(time.RFC3339),
		"event_type": created.EventType,
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write schedule response")
	}
}

func toClassResponse(c db.Class) classResponse {
	return classResponse{
		ID:              c.ID,
		Name:            c.Name,
		Coach:           c.Coach,
		CourtID:         c.CourtID,
		DayOfWeek:       c.DayOfWeek,
		StartsAt:        c.StartsAt,
		DurationMinutes: c.DurationMinutes,
		Price:           c.Price,
	}
}

func loadQueries() *db.Queries {
	return queries
}
