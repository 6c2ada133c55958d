// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/booking"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/email"
	"github.com/tmcruz/padeldesk/internal/members"
)

const (
	bookingQueryTimeout = 5 * time.Second
	bookingIDParam      = "id"
)

var (
	queries     *db.Queries
	notifier    *email.BookingNotifier
	queriesOnce sync.Once
	validate    = validator.New()
)

type playerRequest struct {
	Name            string  `json:"name" validate:"max=80"`
	Phone           string  `json:"phone" validate:"max=30"`
	IsMember        bool    `json:"is_member"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

type bookingRequest struct {
	CourtID       int64            `json:"court_id" validate:"required,gt=0"`
	StartTime     string           `json:"start_time" validate:"required"`
	DurationHours float64          `json:"duration_hours" validate:"required,gt=0,lte=6"`
	PaymentStatus string           `json:"payment_status" validate:"omitempty,oneof=pending paid"`
	EventType     string           `json:"event_type" validate:"omitempty,oneof=match tournament training event maintenance open_game"`
	Notes         string           `json:"notes" validate:"max=500"`
	Players       [4]playerRequest `json:"players"`
}

type moveRequest struct {
	CourtID   int64  `json:"court_id" validate:"required,gt=0"`
	StartTime string `json:"start_time" validate:"required"`
}

type bookingResponse struct {
	ID            int64            `json:"id"`
	CourtID       int64            `json:"court_id"`
	CourtName     string           `json:"court_name,omitempty"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	Price         float64          `json:"price"`
	PaymentStatus string           `json:"payment_status"`
	Status        string           `json:"status"`
	EventType     string           `json:"event_type"`
	Notes         string           `json:"notes,omitempty"`
	Players       [4]db.PlayerSlot `json:"players"`
}

// InitHandlers must be called during server startup before handling requests.
// The notifier may be nil when email is not configured.
func InitHandlers(q *db.Queries, n *email.BookingNotifier) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		notifier = n
	})
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
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

	req, start, end, err := decodeBookingRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil || court.OwnerID != ownerID {
		apiutil.WriteError(w, http.StatusNotFound, "Court not found")
		return
	}

	overlapping, err := q.CountOverlappingBookings(ctx, db.CountOverlappingBookingsParams{
		CourtID:   req.CourtID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to check for conflicts")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}
	if overlapping > 0 {
		apiutil.WriteError(w, http.StatusConflict, "Court is already booked for that time")
		return
	}

	quote := priceForRequest(court.HourlyRate, req)

	created, err := q.CreateBooking(ctx, db.CreateBookingParams{
		OwnerID:       ownerID,
		CourtID:       req.CourtID,
		StartTime:     start,
		EndTime:       end,
		Price:         quote.FinalPrice,
		PaymentStatus: defaultString(req.PaymentStatus, "pending"),
		EventType:     defaultString(req.EventType, "match"),
		Notes:         req.Notes,
		Players:       toPlayerSlots(req.Players),
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to create booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	logger.Info().
		Int64("booking_id", created.ID).
		Int64("court_id", created.CourtID).
		Time("start_time", created.StartTime).
		Msg("Booking created")

	if notifier != nil {
		notifier.BookingConfirmed(created, court.Name)
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, toBookingResponse(created, court.Name)); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/quote
//
// Prices a booking without persisting anything. The form calls this as the
// player slots change so the breakdown stays live.
func HandleBookingQuote(w http.ResponseWriter, r *http.Request) {
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

	req, _, _, err := decodeBookingRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil || court.OwnerID != ownerID {
		apiutil.WriteError(w, http.StatusNotFound, "Court not found")
		return
	}

	quote := priceForRequest(court.HourlyRate, req)
	if err := apiutil.WriteJSON(w, http.StatusOK, quote); err != nil {
		logger.Error().Err(err).Msg("Failed to write quote response")
	}
}

// GET /api/v1/bookings?date=YYYY-MM-DD
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	dayStart, dayEnd := dayBounds(day)
	rows, err := q.ListBookingsForDay(ctx, db.ListBookingsForDayParams{
		OwnerID:   ownerID,
		StartTime: dayStart,
		EndTime:   dayEnd,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list bookings")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load bookings")
		return
	}

	response := make([]bookingResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toBookingResponse(row.Booking, row.CourtName))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write bookings response")
	}
}

// GET /api/v1/bookings/{id}
func HandleBookingGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	b, ok := loadOwnedBooking(w, r, q)
	if !ok {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toBookingResponse(b, "")); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// PUT /api/v1/bookings/{id}
func HandleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	existing, ok := loadOwnedBooking(w, r, q)
	if !ok {
		return
	}

	req, start, end, err := decodeBookingRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil || court.OwnerID != existing.OwnerID {
		apiutil.WriteError(w, http.StatusNotFound, "Court not found")
		return
	}

	overlapping, err := q.CountOverlappingBookings(ctx, db.CountOverlappingBookingsParams{
		CourtID:   req.CourtID,
		StartTime: start,
		EndTime:   end,
		ExcludeID: existing.ID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to check for conflicts")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update booking")
		return
	}
	if overlapping > 0 {
		apiutil.WriteError(w, http.StatusConflict, "Court is already booked for that time")
		return
	}

	quote := priceForRequest(court.HourlyRate, req)

	updated, err := q.UpdateBooking(ctx, db.UpdateBookingParams{
		ID:            existing.ID,
		OwnerID:       existing.OwnerID,
		CourtID:       req.CourtID,
		StartTime:     start,
		EndTime:       end,
		Price:         quote.FinalPrice,
		PaymentStatus: defaultString(req.PaymentStatus, existing.PaymentStatus),
		EventType:     defaultString(req.EventType, existing.EventType),
		Notes:         req.Notes,
		Players:       toPlayerSlots(req.Players),
	})
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", existing.ID).Msg("Failed to update booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update booking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toBookingResponse(updated, court.Name)); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/{id}/move
//
// A conflicting target leaves the booking untouched and reports 409; the
// calendar treats that as a silent drop rejection and simply redraws.
func HandleBookingMove(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	existing, ok := loadOwnedBooking(w, r, q)
	if !ok {
		return
	}

	if existing.Status == "cancelled" {
		apiutil.WriteError(w, http.StatusConflict, "Cancelled bookings cannot be moved")
		return
	}

	var req moveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, err := apiutil.ParseDateTimeField(req.StartTime, "start_time")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The drop preserves the booking's duration exactly.
	end := start.Add(existing.EndTime.Sub(existing.StartTime))

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil || court.OwnerID != existing.OwnerID {
		apiutil.WriteError(w, http.StatusNotFound, "Court not found")
		return
	}

	overlapping, err := q.CountOverlappingBookings(ctx, db.CountOverlappingBookingsParams{
		CourtID:   req.CourtID,
		StartTime: start,
		EndTime:   end,
		ExcludeID: existing.ID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to check for conflicts")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to move booking")
		return
	}
	if overlapping > 0 {
		apiutil.WriteError(w, http.StatusConflict, "Target slot is occupied")
		return
	}

	moved, err := q.MoveBooking(ctx, db.MoveBookingParams{
		ID:        existing.ID,
		OwnerID:   existing.OwnerID,
		CourtID:   req.CourtID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", existing.ID).Msg("Failed to move booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to move booking")
		return
	}

	logger.Info().
		Int64("booking_id", moved.ID).
		Int64("court_id", moved.CourtID).
		Time("start_time", moved.StartTime).
		Msg("Booking moved")

	if err := apiutil.WriteJSON(w, http.StatusOK, toBookingResponse(moved, court.Name)); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/{id}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	existing, ok := loadOwnedBooking(w, r, q)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	affected, err := q.CancelBooking(ctx, db.CancelBookingParams{
		ID:      existing.ID,
		OwnerID: existing.OwnerID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", existing.ID).Msg("Failed to cancel booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusConflict, "Booking is already cancelled")
		return
	}

	logger.Info().Int64("booking_id", existing.ID).Msg("Booking cancelled")

	if notifier != nil {
		courtName := ""
		if court, err := q.GetCourtByID(ctx, existing.CourtID); err == nil {
			courtName = court.Name
		}
		notifier.BookingCancelled(existing, courtName)
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/bookings/{id}
//
// Hard delete exists for open-game placeholders that never happened;
// everything else should cancel so the row survives for reporting.
func HandleBookingDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	existing, ok := loadOwnedBooking(w, r, q)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	affected, err := q.DeleteBooking(ctx, db.DeleteBookingParams{
		ID:      existing.ID,
		OwnerID: existing.OwnerID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", existing.ID).Msg("Failed to delete booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete booking")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Booking not found")
		return
	}

	logger.Info().Int64("booking_id", existing.ID).Msg("Booking deleted")
	w.WriteHeader(http.StatusNoContent)
}

func loadOwnedBooking(w http.ResponseWriter, r *http.Request, q *db.Queries) (db.Booking, bool) {
	logger := log.Ctx(r.Context())

	bookingID, err := apiutil.IDFromPath(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return db.Booking{}, false
	}

	ownerID, ok := apiutil.OwnerScope(w, r)
	if !ok {
		return db.Booking{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	b, err := q.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "Booking not found")
			return db.Booking{}, false
		}
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to load booking")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load booking")
		return db.Booking{}, false
	}

	// Cross-tenant ids read as missing, not forbidden.
	if b.OwnerID != ownerID {
		apiutil.WriteError(w, http.StatusNotFound, "Booking not found")
		return db.Booking{}, false
	}

	return b, true
}

func decodeBookingRequest(r *http.Request) (bookingRequest, time.Time, time.Time, error) {
	var req bookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		return bookingRequest{}, time.Time{}, time.Time{}, err
	}
	if err := validate.Struct(req); err != nil {
		return bookingRequest{}, time.Time{}, time.Time{}, err
	}

	start, err := apiutil.ParseDateTimeField(req.StartTime, "start_time")
	if err != nil {
		return bookingRequest{}, time.Time{}, time.Time{}, err
	}
	if start.Minute()%booking.SlotMinutes != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return bookingRequest{}, time.Time{}, time.Time{}, apiutil.FieldError{
			Field: "start_time", Reason: "must fall on a 30-minute slot boundary",
		}
	}
	duration := time.Duration(req.DurationHours * float64(time.Hour))
	if duration%(booking.SlotMinutes*time.Minute) != 0 {
		return bookingRequest{}, time.Time{}, time.Time{}, apiutil.FieldError{
			Field: "duration_hours", Reason: "must be a multiple of 30 minutes",
		}
	}
	end := start.Add(duration)

	for i := range req.Players {
		req.Players[i].Name = strings.TrimSpace(req.Players[i].Name)
		req.Players[i].Phone = members.NormalizePhone(req.Players[i].Phone)
	}

	return req, start, end, nil
}

func priceForRequest(hourlyRate float64, req bookingRequest) booking.Quote {
	var rates [booking.PlayersPerBooking]booking.PlayerRate
	for i, p := range req.Players {
		rates[i] = booking.PlayerRate{IsMember: p.IsMember, DiscountPercent: p.DiscountPercent}
	}
	return booking.Price(hourlyRate, req.DurationHours, rates)
}

func toPlayerSlots(players [4]playerRequest) [4]db.PlayerSlot {
	var slots [4]db.PlayerSlot
	for i, p := range players {
		slots[i] = db.PlayerSlot{
			Name:            p.Name,
			Phone:           p.Phone,
			IsMember:        p.IsMember,
			DiscountPercent: p.DiscountPercent,
		}
	}
	return slots
}

func toBookingResponse(b db.Booking, courtName string) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		CourtID:       b.CourtID,
		CourtName:     courtName,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Price:         booking.RoundForDisplay(b.Price),
		PaymentStatus: b.PaymentStatus,
		Status:        b.Status,
		EventType:     b.EventType,
		Notes:         b.Notes,
		Players:       b.Players,
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.Add(24*time.Hour - time.Millisecond)
}

func loadQueries() *db.Queries {
	return queries
}
