package server

import (
	"database/sql"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/fetehq/fete/internal/auth"
	"github.com/fetehq/fete/internal/email"
	"github.com/fetehq/fete/internal/handler"
	"github.com/fetehq/fete/internal/middleware"
	"github.com/fetehq/fete/internal/store"
	ws "github.com/fetehq/fete/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	eventH       *handler.EventHandler
	rsvpH        *handler.RSVPHandler
	dashboardH   *handler.DashboardHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, sessionTTL time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	templates := template.Must(template.ParseGlob("web/templates/*.html"))

	hostStore := store.NewHostStore(db)
	sessionStore := store.NewSessionStore(db, sessionTTL)
	eventStore := store.NewEventStore(db)
	rsvpStore := store.NewRSVPStore(db)

	loginSvc := auth.NewService(hostStore, sessionStore, eventStore, logger.With("component", "login"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(loginSvc, sessionStore, templates, logger.With("component", "auth")),
		eventH:       handler.NewEventHandler(eventStore, hostStore, emailClient, templates, logger.With("component", "event")),
		rsvpH:        handler.NewRSVPHandler(eventStore, rsvpStore, hub, templates, logger.With("component", "rsvp")),
		dashboardH:   handler.NewDashboardHandler(eventStore, rsvpStore, hub, templates, logger.With("component", "dashboard")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /{$}", s.eventH.NewEventPage)
	outerMux.HandleFunc("POST /events", s.rateLimited(s.eventH.Create))
	outerMux.HandleFunc("GET /login", s.authH.LoginPage)
	outerMux.HandleFunc("POST /login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /rsvp/{slug}", s.rsvpH.Page)
	outerMux.HandleFunc("POST /rsvp/{slug}", s.rateLimited(s.rsvpH.Submit))
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Host routes behind the session check
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /logout", s.authH.Logout)
	protectedMux.HandleFunc("GET /dashboard", s.dashboardH.Index)
	protectedMux.HandleFunc("GET /dashboard/{slug}", s.dashboardH.Event)
	protectedMux.HandleFunc("POST /dashboard/{slug}/active", s.dashboardH.SetActive)
	protectedMux.HandleFunc("GET /api/events/{slug}/rsvps", s.dashboardH.RSVPList)
	protectedMux.HandleFunc("GET /ws/{slug}", s.dashboardH.Socket)

	requireHost := middleware.RequireHost(s.sessionStore)
	outerMux.Handle("/", requireHost(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ClientIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
