package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fetehq/fete/internal/auth"
	"github.com/fetehq/fete/internal/model"
	"github.com/fetehq/fete/internal/store"
	"github.com/fetehq/fete/internal/websocket"
)

type DashboardHandler struct {
	events    *store.EventStore
	rsvps     *store.RSVPStore
	hub       *websocket.Hub
	templates *template.Template
	logger    *slog.Logger
}

func NewDashboardHandler(es *store.EventStore, rs *store.RSVPStore, hub *websocket.Hub, templates *template.Template, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		events:    es,
		rsvps:     rs,
		hub:       hub,
		templates: templates,
		logger:    logger,
	}
}

type eventRow struct {
	Event     model.Event
	Responses int
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	hostEmail := auth.Email(r.Context())

	events, err := h.events.ListByHost(hostEmail)
	if err != nil {
		h.logger.Error("list events", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	rows := make([]eventRow, 0, len(events))
	for _, ev := range events {
		n, err := h.rsvps.CountResponses(ev.ID)
		if err != nil {
			h.logger.Error("count responses", "event_id", ev.ID, "error", err)
		}
		rows = append(rows, eventRow{Event: ev, Responses: n})
	}

	h.templates.ExecuteTemplate(w, "dashboard.html", map[string]any{
		"HostEmail": hostEmail,
		"Events":    rows,
	})
}

// ownedEvent loads the slug's event and checks it belongs to the
// authenticated host. Events owned by someone else and unknown slugs get
// the same 404 answer.
func (h *DashboardHandler) ownedEvent(w http.ResponseWriter, r *http.Request) *model.Event {
	event, err := h.events.GetBySlug(r.PathValue("slug"))
	if err != nil {
		h.logger.Error("event lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil
	}
	if event == nil || event.HostEmail != auth.Email(r.Context()) {
		http.NotFound(w, r)
		return nil
	}
	return event
}

func (h *DashboardHandler) Event(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	stats, err := h.rsvps.Stats(event.ID)
	if err != nil {
		h.logger.Error("rsvp stats", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	rsvps, err := h.rsvps.ListByEvent(event.ID)
	if err != nil {
		h.logger.Error("list rsvps", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "dashboard_event.html", map[string]any{
		"Event": event,
		"Stats": stats,
		"RSVPs": rsvps,
	})
}

func (h *DashboardHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	active, err := strconv.ParseBool(r.FormValue("active"))
	if err != nil {
		http.Error(w, "invalid active value", http.StatusBadRequest)
		return
	}

	if err := h.events.SetActive(event.ID, active); err != nil {
		h.logger.Error("set active", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard/"+event.Slug, http.StatusSeeOther)
}

// RSVPList serves the event's responses as JSON for dashboard refreshes.
func (h *DashboardHandler) RSVPList(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	rsvps, err := h.rsvps.ListByEvent(event.ID)
	if err != nil {
		h.logger.Error("list rsvps", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list rsvps"})
		return
	}

	stats, err := h.rsvps.Stats(event.ID)
	if err != nil {
		h.logger.Error("rsvp stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rsvps": rsvps,
		"stats": stats,
	})
}

// Socket upgrades the connection for live RSVP updates, scoped to the
// event's room. Ownership is checked before the upgrade.
func (h *DashboardHandler) Socket(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}
	websocket.Serve(h.hub, event.Slug, h.logger, w, r)
}
