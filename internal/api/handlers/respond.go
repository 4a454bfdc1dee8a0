package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/student-records/internal/auth"
	"github.com/isdelr/student-records/internal/services"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps a service error to its HTTP status. Anything not in
// the taxonomy, storage failures included, is a 500.
func writeServiceError(w http.ResponseWriter, err error, forbiddenMsg string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Missing or invalid auth token")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, forbiddenMsg)
	case errors.Is(err, services.ErrIDCollision):
		writeError(w, http.StatusConflict, "Student id already in use, retry")
	default:
		log.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// identity returns the authenticated username, writing a 401 when absent.
func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.IdentityFromContext(r.Context())
	if !ok || user == "" {
		writeError(w, http.StatusUnauthorized, "Missing or invalid auth token")
		return "", false
	}
	return user, true
}

// RequireAdmin allows only the admin identity through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := identity(w, r)
		if !ok {
			return
		}
		if !services.IsAdmin(user) {
			log.Warn().Str("username", user).Str("path", r.URL.Path).Msg("Non-admin request to admin endpoint")
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
