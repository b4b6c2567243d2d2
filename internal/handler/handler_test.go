package handler

import (
	"database/sql"
	"html/template"
	"log/slog"
	"testing"
	"time"

	"github.com/fetehq/fete/internal/database"
	"github.com/fetehq/fete/internal/model"
	"github.com/fetehq/fete/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testTemplates defines every template the handlers render, with bodies
// small enough to assert on.
func testTemplates(t *testing.T) *template.Template {
	t.Helper()
	const defs = `
{{define "login.html"}}login{{if .Error}} error={{.Error}}{{end}}{{if .TokenRequired}} token-required{{end}}{{if .NoEvents}} no-events{{end}}{{end}}
{{define "event_new.html"}}event-new{{if .Error}} error={{.Error}}{{end}}{{end}}
{{define "event_created.html"}}created slug={{.Event.Slug}}{{if .AccessToken}} token={{.AccessToken}}{{end}}{{end}}
{{define "rsvp.html"}}rsvp {{.Event.Title}}{{if .Error}} error={{.Error}}{{end}}{{end}}
{{define "rsvp_thanks.html"}}thanks {{.GuestName}}{{end}}
{{define "rsvp_closed.html"}}closed{{end}}
{{define "dashboard.html"}}dashboard {{.HostEmail}} events={{len .Events}}{{end}}
{{define "dashboard_event.html"}}event {{.Event.Slug}} attending={{.Stats.AttendingGuests}}{{end}}
`
	tmpl, err := template.New("test").Parse(defs)
	if err != nil {
		t.Fatalf("parse test templates: %v", err)
	}
	return tmpl
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func createTestEvent(t *testing.T, es *store.EventStore, hostEmail, title string) *model.Event {
	t.Helper()
	ev, err := es.Create(hostEmail, title, "", "party", "The Hall", time.Now().Add(48*time.Hour))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}
