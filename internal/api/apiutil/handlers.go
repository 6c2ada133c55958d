package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError emits the standard error envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, map[string]string{"error": message})
}

// RequireOwnerAccess authorizes the request against the given owner scope,
// writing the response itself on failure. Handlers bail out when it
// returns false.
func RequireOwnerAccess(w http.ResponseWriter, r *http.Request, ownerID int64) bool {
	logger := log.Ctx(r.Context())
	user := authz.UserFromContext(r.Context())
	if err := authz.RequireOwnerAccess(r.Context(), ownerID); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logEvent := logger.Warn().Int64("owner_id", ownerID)
			if user != nil {
				logEvent = logEvent.Int64("user_id", user.ID)
			}
			logEvent.Msg("Owner access denied: unauthenticated")
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, authz.ErrForbidden):
			logEvent := logger.Warn().Int64("owner_id", ownerID)
			if user != nil {
				logEvent = logEvent.Int64("user_id", user.ID)
			}
			logEvent.Msg("Owner access denied: forbidden")
			WriteError(w, http.StatusForbidden, "Forbidden")
		default:
			logEvent := logger.Error().Int64("owner_id", ownerID).Err(err)
			if user != nil {
				logEvent = logEvent.Int64("user_id", user.ID)
			}
			logEvent.Msg("Owner access denied: error")
			WriteError(w, http.StatusInternalServerError, "Failed to authorize request")
		}
		return false
	}
	return true
}

// OwnerScope resolves the effective owner id for the request, writing a 401
// when the request carries no user.
func OwnerScope(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ownerID, err := authz.EffectiveOwnerFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return ownerID, true
}

// OwnerScopeFromQuery resolves the owner scope like OwnerScope, but lets the
// caller name a scope explicitly with ?owner_id=. An explicit id outside the
// caller's scope is a 403, unlike resource ids which read as missing.
func OwnerScopeFromQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("owner_id")
	if raw == "" {
		return OwnerScope(w, r)
	}

	requested, err := ParsePositiveInt64Field(raw, "owner_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	if !RequireOwnerAccess(w, r, requested) {
		return 0, false
	}
	return requested, true
}
