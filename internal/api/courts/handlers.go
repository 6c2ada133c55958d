// internal/api/courts/handlers.go
package courts

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
	"github.com/tmcruz/padeldesk/internal/db"
)

const (
	courtQueryTimeout = 5 * time.Second
	courtIDParam      = "id"
)

var (
	queries     *db.Queries
	queriesOnce sync.Once
	validate    = validator.New()
)

type courtRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=80"`
	CourtType  string  `json:"court_type" validate:"required,oneof=indoor outdoor"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
	PeakRate   float64 `json:"peak_rate" validate:"gte=0"`
	SortOrder  int64   `json:"sort_order" validate:"gte=0"`
	IsActive   *bool   `json:"is_active"`
}

type courtResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	CourtType  string  `json:"court_type"`
	HourlyRate float64 `json:"hourly_rate"`
	PeakRate   float64 `json:"peak_rate"`
	SortOrder  int64   `json:"sort_order"`
	IsActive   bool    `json:"is_active"`
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

// GET /api/v1/courts
func HandleCourtsList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	courts, err := q.ListActiveCourts(ctx, ownerID)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list courts")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load courts")
		return
	}

	response := make([]courtResponse, 0, len(courts))
	for _, c := range courts {
		response = append(response, toCourtResponse(c))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write courts response")
	}
}

// POST /api/v1/courts
func HandleCourtCreate(w http.ResponseWriter, r *http.Request) {
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

	req, err := decodeCourtRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	court, err := q.CreateCourt(ctx, db.CreateCourtParams{
		OwnerID:    ownerID,
		Name:       req.Name,
		CourtType:  req.CourtType,
		HourlyRate: req.HourlyRate,
		PeakRate:   req.PeakRate,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to create court")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create court")
		return
	}

	logger.Info().Int64("court_id", court.ID).Str("name", court.Name).Msg("Court created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, toCourtResponse(court)); err != nil {
		logger.Error().Err(err).Msg("Failed to write court response")
	}
}

// PUT /api/v1/courts/{id}
func HandleCourtUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.IDFromPath(r, courtIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID, ok := apiutil.OwnerScope(w, r)
	if !ok {
		return
	}

	req, err := decodeCourtRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	court, err := q.UpdateCourt(ctx, db.UpdateCourtParams{
		ID:         courtID,
		OwnerID:    ownerID,
		Name:       req.Name,
		CourtType:  req.CourtType,
		HourlyRate: req.HourlyRate,
		PeakRate:   req.PeakRate,
		SortOrder:  req.SortOrder,
		IsActive:   isActive,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "Court not found")
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to update court")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update court")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toCourtResponse(court)); err != nil {
		logger.Error().Err(err).Msg("Failed to write court response")
	}
}

func decodeCourtRequest(r *http.Request) (courtRequest, error) {
	var req courtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		return courtRequest{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return courtRequest{}, err
	}
	return req, nil
}

func toCourtResponse(c db.Court) courtResponse {
	return courtResponse{
		ID:         c.ID,
		Name:       c.Name,
		CourtType:  c.CourtType,
		HourlyRate: c.HourlyRate,
		PeakRate:   c.PeakRate,
		SortOrder:  c.SortOrder,
		IsActive:   c.IsActive,
	}
}

func loadQueries() *db.Queries {
	return queries
}
