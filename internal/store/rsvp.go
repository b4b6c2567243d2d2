package store

import (
	"database/sql"
	"fmt"

	"github.com/fetehq/fete/internal/model"
)

type RSVPStore struct {
	db *sql.DB
}

func NewRSVPStore(db *sql.DB) *RSVPStore {
	return &RSVPStore{db: db}
}

func scanRSVP(scanner interface{ Scan(...any) error }) (*model.RSVP, error) {
	var r model.RSVP
	err := scanner.Scan(
		&r.ID, &r.EventID, &r.GuestName, &r.GuestEmail, &r.GuestPhone,
		&r.Status, &r.NumberOfGuests, &r.Message, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const rsvpCols = `id, event_id, guest_name, guest_email, guest_phone, attendance_status, number_of_guests, message, created_at`

func (s *RSVPStore) Create(eventID int64, guestName, guestEmail, guestPhone, status string, numberOfGuests int, message string) (*model.RSVP, error) {
	result, err := s.db.Exec(
		`INSERT INTO rsvps (event_id, guest_name, guest_email, guest_phone, attendance_status, number_of_guests, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		eventID, guestName, guestEmail, guestPhone, status, numberOfGuests, message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert rsvp: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+rsvpCols+` FROM rsvps WHERE id = ?`, id)
	return scanRSVP(row)
}

// ListByEvent returns all responses for an event, newest first.
func (s *RSVPStore) ListByEvent(eventID int64) ([]model.RSVP, error) {
	rows, err := s.db.Query(
		`SELECT `+rsvpCols+` FROM rsvps WHERE event_id = ? ORDER BY created_at DESC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	defer rows.Close()

	var rsvps []model.RSVP
	for rows.Next() {
		r, err := scanRSVP(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		rsvps = append(rsvps, *r)
	}
	return rsvps, rows.Err()
}

// Stats aggregates an event's responses for the dashboard. Only attending
// and not_attending rows count as responses; guest totals sum party sizes.
func (s *RSVPStore) Stats(eventID int64) (model.RSVPStats, error) {
	var st model.RSVPStats
	err := s.db.QueryRow(
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN attendance_status = 'attending' THEN number_of_guests ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN attendance_status = 'not_attending' THEN number_of_guests ELSE 0 END), 0)
		FROM rsvps
		WHERE event_id = ? AND attendance_status IN ('attending', 'not_attending')`,
		eventID,
	).Scan(&st.TotalResponses, &st.AttendingGuests, &st.NotAttendingGuests)
	if err != nil {
		return model.RSVPStats{}, fmt.Errorf("rsvp stats: %w", err)
	}
	st.TotalGuests = st.AttendingGuests + st.NotAttendingGuests
	return st, nil
}

// CountResponses returns the number of valid responses for an event, used
// by the multi-event dashboard listing.
func (s *RSVPStore) CountResponses(eventID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM rsvps WHERE event_id = ? AND attendance_status IN ('attending', 'not_attending')`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rsvps: %w", err)
	}
	return n, nil
}
