package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fetehq/fete/internal/email"
	"github.com/fetehq/fete/internal/store"
	"github.com/fetehq/fete/internal/token"
)

// startsAtLayout matches the value format of <input type="datetime-local">.
const startsAtLayout = "2006-01-02T15:04"

type EventHandler struct {
	events      *store.EventStore
	hosts       *store.HostStore
	emailClient *email.Client
	templates   *template.Template
	logger      *slog.Logger
}

func NewEventHandler(es *store.EventStore, hs *store.HostStore, ec *email.Client, templates *template.Template, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events:      es,
		hosts:       hs,
		emailClient: ec,
		templates:   templates,
		logger:      logger,
	}
}

func (h *EventHandler) NewEventPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "event_new.html", nil)
}

// Create makes a new event. First-time hosts are provisioned with a
// one-time access token, shown once on the confirmation page and also
// sent by email when the mail client is configured.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostEmail := store.NormalizeEmail(r.FormValue("host_email"))
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	eventType := strings.TrimSpace(r.FormValue("event_type"))
	location := strings.TrimSpace(r.FormValue("location"))
	startsAtRaw := strings.TrimSpace(r.FormValue("starts_at"))

	renderErr := func(msg string) {
		h.templates.ExecuteTemplate(w, "event_new.html", map[string]any{
			"Error":       msg,
			"Title":       title,
			"HostEmail":   hostEmail,
			"Description": description,
			"EventType":   eventType,
			"Location":    location,
		})
	}

	if hostEmail == "" || title == "" {
		renderErr("Title and host email are required")
		return
	}

	startsAt, err := time.Parse(startsAtLayout, startsAtRaw)
	if err != nil {
		renderErr("Please provide a valid date and time")
		return
	}

	host, err := h.hosts.GetByEmail(hostEmail)
	if err != nil {
		h.logger.Error("host lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Provision first-time hosts with an access token. The plaintext
	// exists only for this request; we store the hash.
	var plainToken string
	if host == nil {
		pair, err := token.Generate()
		if err != nil {
			h.logger.Error("generate access token", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if _, err := h.hosts.Create(hostEmail, pair.Hash); err != nil {
			h.logger.Error("create host", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		plainToken = pair.Plain
	}

	event, err := h.events.Create(hostEmail, title, description, eventType, location, startsAt)
	if err != nil {
		h.logger.Error("create event", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if plainToken != "" && h.emailClient.Configured() {
		if err := h.emailClient.SendAccessToken(hostEmail, plainToken, event.Title); err != nil {
			h.logger.Error("send access token", "error", err)
		}
	}

	h.templates.ExecuteTemplate(w, "event_created.html", map[string]any{
		"Event":       event,
		"AccessToken": plainToken,
	})
}
