package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/fetehq/fete/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.Slug, &e.HostEmail, &e.Title, &e.Description, &e.EventType,
		&e.Location, &e.StartsAt, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, slug, host_email, title, description, event_type, location, starts_at, is_active, created_at, updated_at`

// Slugify reduces a title to a URL-safe slug: lowercase, alphanumerics and
// hyphens only, runs of other characters collapsed to a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// uniqueSlug returns the slugified title, appending a short random suffix
// whenever the base slug is taken.
func (s *EventStore) uniqueSlug(title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "event"
	}

	slug := base
	for {
		var n int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE slug = ?`, slug).Scan(&n)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if n == 0 {
			return slug, nil
		}

		suffix := make([]byte, 3)
		if _, err := rand.Read(suffix); err != nil {
			return "", fmt.Errorf("slug suffix: %w", err)
		}
		slug = base + "-" + hex.EncodeToString(suffix)
	}
}

func (s *EventStore) Create(hostEmail, title, description, eventType, location string, startsAt time.Time) (*model.Event, error) {
	slug, err := s.uniqueSlug(title)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO events (slug, host_email, title, description, event_type, location, starts_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		slug, NormalizeEmail(hostEmail), title, description, eventType, location, startsAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *EventStore) GetBySlug(slug string) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE slug = ?`, slug)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return e, nil
}

// ListByHost returns all of a host's events, newest first.
func (s *EventStore) ListByHost(hostEmail string) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE host_email = ? ORDER BY created_at DESC`,
		NormalizeEmail(hostEmail),
	)
	if err != nil {
		return nil, fmt.Errorf("list events by host: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListActiveByHost returns the host's active events in creation order.
// This is the view the login flow uses to pick a redirect target.
func (s *EventStore) ListActiveByHost(hostEmail string) ([]model.EventRef, error) {
	rows, err := s.db.Query(
		`SELECT id, slug FROM events WHERE host_email = ? AND is_active = 1 ORDER BY created_at`,
		NormalizeEmail(hostEmail),
	)
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	defer rows.Close()

	var refs []model.EventRef
	for rows.Next() {
		var ref model.EventRef
		if err := rows.Scan(&ref.ID, &ref.Slug); err != nil {
			return nil, fmt.Errorf("scan event ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (s *EventStore) Update(id int64, title, description, eventType, location string, startsAt time.Time) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events SET title = ?, description = ?, event_type = ?, location = ?, starts_at = ?, updated_at = datetime('now') WHERE id = ?`,
		title, description, eventType, location, startsAt.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

// SetActive toggles whether the event accepts RSVPs and appears in login
// redirect targeting.
func (s *EventStore) SetActive(id int64, active bool) error {
	_, err := s.db.Exec(
		`UPDATE events SET is_active = ?, updated_at = datetime('now') WHERE id = ?`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("set event active: %w", err)
	}
	return nil
}
