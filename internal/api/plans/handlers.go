// internal/api/plans/handlers.go
package plans

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/db"
)

const planQueryTimeout = 5 * time.Second

var (
	queries     *db.Queries
	queriesOnce sync.Once

	validate = validator.New()
)

type planRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=80"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	MonthlyFee      float64 `json:"monthly_fee" validate:"gte=0"`
}

type planResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	DiscountPercent float64 `json:"discount_percent"`
	MonthlyFee      float64 `json:"monthly_fee"`
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

// GET /api/v1/plans
func HandlePlansList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), planQueryTimeout)
	defer cancel()

	rows, err := q.ListPlans(ctx, ownerID)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list plans")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to list plans")
		return
	}

	response := make([]planResponse, 0, len(rows))
	for _, p := range rows {
		response = append(response, toPlanResponse(p))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write plans response")
	}
}

// POST /api/v1/plans
func HandlePlanCreate(w http.ResponseWriter, r *http.Request) {
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

	var req planRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid plan payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), planQueryTimeout)
	defer cancel()

	plan, err := q.CreatePlan(ctx, db.CreatePlanParams{
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(req.Name),
		DiscountPercent: req.DiscountPercent,
		MonthlyFee:      req.MonthlyFee,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to create plan")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create plan")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, toPlanResponse(plan)); err != nil {
		logger.Error().Err(err).Msg("Failed to write plan response")
	}
}

func toPlanResponse(p db.Plan) planResponse {
	return planResponse{
		ID:              p.ID,
		Name:            p.Name,
		DiscountPercent: p.DiscountPercent,
		MonthlyFee:      p.MonthlyFee,
	}
}

func loadQueries() *db.Queries {
	return queries
}
