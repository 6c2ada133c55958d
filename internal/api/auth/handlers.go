package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tmcruz/padeldesk/internal/api/apiutil"
	"github.com/tmcruz/padeldesk/internal/api/authz"
	"github.com/tmcruz/padeldesk/internal/config"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/ratelimit"
)

var (
	queries      *db.Queries
	appConfig    *config.Config
	limiter      *rate.Limiter
	loginLimiter *ratelimit.Limiter
)

func InitHandlers(q *db.Queries, cfg *config.Config) {
	queries = q
	appConfig = cfg
	limiter = rate.NewLimiter(rate.Limit(100), 10) // More restrictive for auth
	loginLimiter = ratelimit.New(nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleLogin authenticates an owner or staff account against the stored
// bcrypt hash and issues both session cookies. Wrong email and wrong
// password return the same 401 so the endpoint does not leak which
// accounts exist.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !limiter.Allow() {
		apiutil.WriteError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ip := ratelimit.GetClientIP(r, appConfig != nil && appConfig.App.Environment == "production")
	if result := loginLimiter.CheckLogin(email, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded(email, ip, result.Reason)
		apiutil.WriteError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	owner, err := queries.GetOwnerByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			loginLimiter.RecordLoginFailure(email, ip)
			apiutil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logger.Error().Err(err).Msg("Failed to look up account")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !VerifyPassword(owner.PasswordHash, req.Password) {
		if lockedOut := loginLimiter.RecordLoginFailure(email, ip); lockedOut {
			logger.Warn().Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Account login locked out")
		}
		apiutil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	loginLimiter.ResetLoginAttempts(email)

	var clubOwnerID *int64
	if owner.ClubOwnerID.Valid {
		id := owner.ClubOwnerID.Int64
		clubOwnerID = &id
	}
	user := &authz.AuthUser{
		ID:          owner.ID,
		Name:        owner.Name,
		Email:       owner.Email,
		Role:        owner.Role,
		ClubOwnerID: clubOwnerID,
	}

	if err := CreateSession(w, owner.ID); err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if err := SetAuthCookie(w, r, user); err != nil && !errors.Is(err, errAuthConfigMissing) {
		logger.Error().Err(err).Msg("Failed to set auth cookie")
	}

	logger.Info().Int64("user_id", owner.ID).Str("role", owner.Role).Msg("Login succeeded")

	_ = apiutil.WriteJSON(w, http.StatusOK, userResponse{
		ID:    owner.ID,
		Name:  owner.Name,
		Email: owner.Email,
		Role:  owner.Role,
	})
}

func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w, r)
	ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCurrentUser returns the account attached to the request, for the
// front end to restore its session on reload.
func HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := authz.UserFromContext(r.Context())
	if user == nil {
		apiutil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}
