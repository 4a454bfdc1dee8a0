package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/student-records/internal/api/handlers"
	"github.com/isdelr/student-records/internal/auth"
	"github.com/isdelr/student-records/internal/services"
	"github.com/isdelr/student-records/internal/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Options controls the cross-cutting HTTP behaviour of the router.
type Options struct {
	CORSOrigins   []string
	SecureCookies bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	opts Options,
	tokens *auth.TokenManager,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	studentService services.StudentServiceProvider,
	eventService services.EventServiceProvider,
	backupService services.BackupServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens.TTL(), opts.SecureCookies)
	studentHandler := handlers.NewStudentHandler(studentService)
	eventHandler := handlers.NewEventHandler(eventService)
	backupHandler := handlers.NewBackupHandler(backupService)
	wsHandler := handlers.NewWebSocketHandler(hub, opts.CORSOrigins)

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(tokens.JWTMiddleware())

		r.Route("/students", func(r chi.Router) {
			r.Get("/", studentHandler.GetAll)
			r.Post("/", studentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", studentHandler.Get)
				r.Put("/", studentHandler.Update)
				r.Delete("/", studentHandler.Delete)
			})
		})

		// Live feed of record changes
		r.Get("/ws", wsHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAdmin)
			r.Get("/events", eventHandler.GetRecent)
			r.Route("/backups", func(r chi.Router) {
				r.Get("/", backupHandler.GetAll)
				r.Post("/", backupHandler.Create)
			})
		})
	})

	return r
}
