// internal/api/members/handlers.go
package members

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/db"
	memberdb "github.com/tmcruz/padeldesk/internal/members"
)

const (
	memberQueryTimeout = 5 * time.Second

	defaultListLimit = 50
	maxListLimit     = 200
	searchLimit      = 20
)

var (
	queries     *db.Queries
	phoneRegion string
	matcher     *memberdb.Matcher
	queriesOnce sync.Once

	validate = validator.New()
)

type memberRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=120"`
	Phone  string `json:"phone" validate:"omitempty,min=6,max=32"`
	Email  string `json:"email" validate:"omitempty,email"`
	PlanID int64  `json:"plan_id" validate:"gte=0"`
}

type memberResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone,omitempty"`
	Email           string  `json:"email,omitempty"`
	PlanID          int64   `json:"plan_id,omitempty"`
	PlanName        string  `json:"plan_name,omitempty"`
	DiscountPercent float64 `json:"discount_percent"`
	CreatedAt       string  `json:"created_at"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries, region string) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		phoneRegion = region
		matcher = memberdb.NewMatcher(q)
	})
}

// GET /api/v1/members?limit=&offset=
func HandleMembersList(w http.ResponseWriter, r *http.Request) {
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

	limit, err := apiutil.ParseNonNegativeInt64Field(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := apiutil.ParseNonNegativeInt64Field(r.URL.Query().Get("offset"), "offset")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	rows, err := q.ListMembers(ctx, db.ListMembersParams{
		OwnerID: ownerID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to list members")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to list members")
		return
	}

	response := make([]memberResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toMemberResponse(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write members response")
	}
}

// POST /api/v1/members
func HandleMemberCreate(w http.ResponseWriter, r *http.Request) {
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

	var req memberRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid member payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	params := db.CreateMemberParams{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(req.Name),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		// Stored in canonical form so phone lookups stay exact.
		canonical := memberdb.FormatE164(memberdb.NormalizePhone(phone), phoneRegion)
		params.Phone = sql.NullString{String: canonical, Valid: true}
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		params.Email = sql.NullString{String: email, Valid: true}
	}
	if req.PlanID > 0 {
		if _, err := q.GetPlanByID(ctx, req.PlanID); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, "Plan not found")
			return
		}
		params.PlanID = sql.NullInt64{Int64: req.PlanID, Valid: true}
	}

	member, err := q.CreateMember(ctx, params)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to create member")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create member")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, toMemberResponse(db.MemberWithPlan{Member: member})); err != nil {
		logger.Error().Err(err).Msg("Failed to write member response")
	}
}

// GET /api/v1/members/search?q=
//
// A digit-heavy query searches phones, anything else searches names.
func HandleMembersSearch(w http.ResponseWriter, r *http.Request) {
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

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	var rows []db.MemberWithPlan
	var err error
	if normalized := memberdb.NormalizePhone(query); looksLikePhone(normalized) {
		rows, err = q.SearchMembersByPhone(ctx, db.SearchMembersByPhoneParams{
			OwnerID: ownerID,
			Phone:   normalized,
			Limit:   searchLimit,
		})
	} else {
		rows, err = q.SearchMembersByName(ctx, db.SearchMembersByNameParams{
			OwnerID: ownerID,
			Name:    query,
			Limit:   searchLimit,
		})
	}
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to search members")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to search members")
		return
	}

	response := make([]memberResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toMemberResponse(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write members response")
	}
}

// GET /api/v1/members/match?name=&phone=
//
// Resolves a booking form player slot to a member suggestion. Responds 204
// when the inputs are below the matching gates or nothing matches, so the
// form can clear any stale suggestion.
func HandleMemberMatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if loadQueries() == nil || matcher == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ownerID, ok := apiutil.OwnerScope(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))

	match, err := matcher.Find(ctx, ownerID, name, phone)
	if err != nil {
		logger.Error().Err(err).Int64("owner_id", ownerID).Msg("Failed to match member")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to match member")
		return
	}
	if match == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Msg("Failed to write match response")
	}
}

// looksLikePhone reports whether a normalized query is digit-heavy enough to
// run against the phone column instead of names.
func looksLikePhone(normalized string) bool {
	if len(normalized) < 4 {
		return false
	}
	digits := 0
	for _, r := range normalized {
		if r >= '0' && r <= '9' {
			digits++
		} else if r != '+' {
			return false
		}
	}
	return digits >= 4
}

func toMemberResponse(m db.MemberWithPlan) memberResponse {
	out := memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.Phone.Valid {
		out.Phone = m.Phone.String
	}
	if m.Email.Valid {
		out.Email = m.Email.String
	}
	if m.PlanID.Valid {
		out.PlanID = m.PlanID.Int64
	}
	if m.PlanName.Valid {
		out.PlanName = m.PlanName.String
	}
	if m.PlanDiscount.Valid {
		out.DiscountPercent = m.PlanDiscount.Float64
	}
	return out
}

func loadQueries() *db.Queries {
	return queries
}
