package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fetehq/fete/internal/model"
	"github.com/fetehq/fete/internal/store"
	"github.com/fetehq/fete/internal/websocket"
)

const maxPartySize = 20

type RSVPHandler struct {
	events    *store.EventStore
	rsvps     *store.RSVPStore
	hub       *websocket.Hub
	templates *template.Template
	logger    *slog.Logger
}

func NewRSVPHandler(es *store.EventStore, rs *store.RSVPStore, hub *websocket.Hub, templates *template.Template, logger *slog.Logger) *RSVPHandler {
	return &RSVPHandler{
		events:    es,
		rsvps:     rs,
		hub:       hub,
		templates: templates,
		logger:    logger,
	}
}

// activeEvent loads the event for the request's slug. Missing and
// deactivated events are both answered with the same closed page so
// guests can't probe which slugs exist.
func (h *RSVPHandler) activeEvent(w http.ResponseWriter, r *http.Request) *model.Event {
	event, err := h.events.GetBySlug(r.PathValue("slug"))
	if err != nil {
		h.logger.Error("event lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil
	}
	if event == nil || !event.IsActive {
		w.WriteHeader(http.StatusNotFound)
		h.templates.ExecuteTemplate(w, "rsvp_closed.html", nil)
		return nil
	}
	return event
}

func (h *RSVPHandler) Page(w http.ResponseWriter, r *http.Request) {
	event := h.activeEvent(w, r)
	if event == nil {
		return
	}
	h.templates.ExecuteTemplate(w, "rsvp.html", map[string]any{"Event": event})
}

func (h *RSVPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	event := h.activeEvent(w, r)
	if event == nil {
		return
	}

	guestName := strings.TrimSpace(r.FormValue("guest_name"))
	guestEmail := strings.TrimSpace(r.FormValue("guest_email"))
	guestPhone := strings.TrimSpace(r.FormValue("guest_phone"))
	status := r.FormValue("attendance_status")
	message := strings.TrimSpace(r.FormValue("message"))

	renderErr := func(msg string) {
		h.templates.ExecuteTemplate(w, "rsvp.html", map[string]any{
			"Event":      event,
			"Error":      msg,
			"GuestName":  guestName,
			"GuestEmail": guestEmail,
			"Message":    message,
		})
	}

	if guestName == "" {
		renderErr("Please tell us your name")
		return
	}
	switch status {
	case model.StatusAttending, model.StatusNotAttending, model.StatusMaybe:
	default:
		renderErr("Please choose whether you're attending")
		return
	}

	numberOfGuests := 1
	if raw := r.FormValue("number_of_guests"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPartySize {
			renderErr("Party size must be between 1 and 20")
			return
		}
		numberOfGuests = n
	}
	if status == model.StatusNotAttending {
		numberOfGuests = 0
	}

	rsvp, err := h.rsvps.Create(event.ID, guestName, guestEmail, guestPhone, status, numberOfGuests, message)
	if err != nil {
		h.logger.Error("create rsvp", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(event.Slug, websocket.NewMessage("rsvp", "created", rsvp.ID, map[string]any{
		"guest_name":       rsvp.GuestName,
		"status":           rsvp.Status,
		"number_of_guests": rsvp.NumberOfGuests,
	}))

	h.templates.ExecuteTemplate(w, "rsvp_thanks.html", map[string]any{
		"Event":     event,
		"GuestName": guestName,
		"Status":    status,
	})
}
