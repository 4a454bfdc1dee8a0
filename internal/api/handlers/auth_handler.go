package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/student-records/internal/auth"
	"github.com/isdelr/student-records/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service       services.UserServiceProvider
	cookieTTL     time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. A zero cookieTTL issues a
// session cookie.
func NewAuthHandler(service services.UserServiceProvider, cookieTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: service, cookieTTL: cookieTTL, secureCookies: secureCookies}
}

// CredentialsPayload is the body of register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.service.Register(r.Context(), payload.Username, payload.Password); err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeServiceError(w, err, "")
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	token, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		writeServiceError(w, err, "")
		return
	}

	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	}
	if h.cookieTTL > 0 {
		cookie.Expires = time.Now().Add(h.cookieTTL)
	}
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}
