package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fetehq/fete/internal/model"
	"github.com/fetehq/fete/internal/token"
)

type HostStore struct {
	db *sql.DB
}

func NewHostStore(db *sql.DB) *HostStore {
	return &HostStore{db: db}
}

func scanHost(scanner interface{ Scan(...any) error }) (*model.Host, error) {
	var h model.Host
	var tokenUsedAt sql.NullTime

	err := scanner.Scan(&h.ID, &h.Email, &h.AccessTokenHash, &h.TokenUsed, &tokenUsedAt, &h.CreatedAt)
	if err != nil {
		return nil, err
	}

	if tokenUsedAt.Valid {
		h.TokenUsedAt = &tokenUsedAt.Time
	}
	return &h, nil
}

const hostCols = `id, email, access_token_hash, token_used, token_used_at, created_at`

// NormalizeEmail canonicalizes a host email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new host with the given access token hash.
func (s *HostStore) Create(email, accessTokenHash string) (*model.Host, error) {
	result, err := s.db.Exec(
		`INSERT INTO hosts (email, access_token_hash) VALUES (?, ?)`,
		NormalizeEmail(email), accessTokenHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert host: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+hostCols+` FROM hosts WHERE id = ?`, id)
	return scanHost(row)
}

// GetByEmail returns the host for the given email, or nil if not found.
func (s *HostStore) GetByEmail(email string) (*model.Host, error) {
	row := s.db.QueryRow(`SELECT `+hostCols+` FROM hosts WHERE email = ?`, NormalizeEmail(email))
	h, err := scanHost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get host by email: %w", err)
	}
	return h, nil
}

// CheckStatus reports whether a host exists and whether its access token has
// been consumed. Callers map the not-exists case to the same user-facing
// error as a bad token so registered emails cannot be enumerated.
func (s *HostStore) CheckStatus(email string) (model.HostStatus, error) {
	var tokenUsed bool
	err := s.db.QueryRow(
		`SELECT token_used FROM hosts WHERE email = ?`, NormalizeEmail(email),
	).Scan(&tokenUsed)
	if err == sql.ErrNoRows {
		return model.HostStatus{}, nil
	}
	if err != nil {
		return model.HostStatus{}, fmt.Errorf("check host status: %w", err)
	}
	return model.HostStatus{Exists: true, TokenUsed: tokenUsed}, nil
}

// VerifyAndConsumeToken checks the supplied access token for the host and,
// on a match, marks it consumed. The consumption is a single conditional
// update, so the used flag transitions false→true exactly once no matter how
// many concurrent verifications race; a verification that loses the race but
// carried the correct token still succeeds. Returns false (never an error)
// for unknown emails, blank tokens, and mismatches.
func (s *HostStore) VerifyAndConsumeToken(email, supplied string) (bool, error) {
	if strings.TrimSpace(supplied) == "" {
		return false, nil
	}

	var hash string
	err := s.db.QueryRow(
		`SELECT access_token_hash FROM hosts WHERE email = ?`, NormalizeEmail(email),
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load access token: %w", err)
	}

	if !token.Verify(supplied, hash) {
		return false, nil
	}

	_, err = s.db.Exec(
		`UPDATE hosts SET token_used = 1, token_used_at = datetime('now') WHERE email = ? AND token_used = 0`,
		NormalizeEmail(email),
	)
	if err != nil {
		return false, fmt.Errorf("consume access token: %w", err)
	}
	return true, nil
}
