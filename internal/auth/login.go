// Package auth implements host login: first-time access-token verification,
// returning-host session reuse, and dashboard redirect targeting.
package auth

import (
	"log/slog"
	"strings"

	"github.com/fetehq/fete/internal/model"
	"github.com/fetehq/fete/internal/store"
)

// HostDirectory resolves host existence and verifies one-time access tokens.
// Satisfied by store.HostStore.
type HostDirectory interface {
	CheckStatus(email string) (model.HostStatus, error)
	VerifyAndConsumeToken(email, token string) (bool, error)
}

// SessionIssuer creates sessions bound to a verified host email.
// Satisfied by store.SessionStore.
type SessionIssuer interface {
	Create(hostEmail string) (*model.HostSession, error)
}

// EventLookup lists a host's active events for redirect targeting.
// Satisfied by store.EventStore.
type EventLookup interface {
	ListActiveByHost(hostEmail string) ([]model.EventRef, error)
}

type Outcome int

const (
	// OutcomeFailure rejects the attempt; Message and TokenRequired are set.
	OutcomeFailure Outcome = iota
	// OutcomeRedirect authenticates and routes to RedirectTo.
	OutcomeRedirect
	// OutcomeNoEvents authenticates a host with nothing to route to.
	OutcomeNoEvents
)

// Result is the explicit login outcome. Redirects are data, not control
// flow: the HTTP layer performs them, and must write Session (when non-nil)
// to the response before redirecting.
type Result struct {
	Outcome    Outcome
	RedirectTo string

	// Session is the newly issued session, nil when the attempt failed or
	// was satisfied by an already-active session.
	Session *model.HostSession

	Message       string
	TokenRequired bool
}

// User-facing messages. Unknown emails and wrong tokens share one message so
// responses cannot be used to probe which emails are registered.
const (
	msgInvalidCredentials = "Invalid email or token. Please check your credentials."
	msgTokenRequired      = "Access token is required for first-time login."
	msgTransient          = "An error occurred during login. Please try again."
)

// Service is the login orchestrator.
type Service struct {
	hosts    HostDirectory
	sessions SessionIssuer
	events   EventLookup
	logger   *slog.Logger
}

func NewService(hosts HostDirectory, sessions SessionIssuer, events EventLookup, logger *slog.Logger) *Service {
	return &Service{hosts: hosts, sessions: sessions, events: events, logger: logger}
}

// Login decides whether the host may obtain a session and where they land.
//
// current is the session already bound to the request, if any; passing it
// explicitly keeps the core independent of the request pipeline. A current
// session for the same email short-circuits verification entirely. Otherwise
// a host whose token was already consumed gets a fresh session without any
// token check, and a first-time host must present their one-time token.
//
// Collaborator faults never escape: they are logged and collapsed into a
// generic retryable failure.
func (s *Service) Login(current *model.HostSession, email, accessToken string) Result {
	email = store.NormalizeEmail(email)
	if email == "" {
		return Result{Outcome: OutcomeFailure, Message: msgInvalidCredentials}
	}

	if current != nil && store.NormalizeEmail(current.HostEmail) == email {
		return s.route(email, nil)
	}

	status, err := s.hosts.CheckStatus(email)
	if err != nil {
		s.logger.Error("host status check", "error", err)
		return Result{Outcome: OutcomeFailure, Message: msgTransient}
	}
	if !status.Exists {
		return Result{Outcome: OutcomeFailure, Message: msgInvalidCredentials}
	}

	if !status.TokenUsed {
		accessToken = strings.TrimSpace(accessToken)
		if accessToken == "" {
			return Result{Outcome: OutcomeFailure, Message: msgTokenRequired, TokenRequired: true}
		}

		ok, err := s.hosts.VerifyAndConsumeToken(email, accessToken)
		if err != nil {
			s.logger.Error("access token verification", "error", err)
			return Result{Outcome: OutcomeFailure, Message: msgTransient}
		}
		if !ok {
			return Result{Outcome: OutcomeFailure, Message: msgInvalidCredentials}
		}
	}

	sess, err := s.sessions.Create(email)
	if err != nil {
		s.logger.Error("create host session", "error", err)
		return Result{Outcome: OutcomeFailure, Message: msgTransient}
	}

	return s.route(email, sess)
}

// route picks the post-login destination from the host's active events.
func (s *Service) route(email string, sess *model.HostSession) Result {
	events, err := s.events.ListActiveByHost(email)
	if err != nil {
		s.logger.Error("list active events", "error", err)
		return Result{Outcome: OutcomeFailure, Message: msgTransient}
	}

	switch len(events) {
	case 0:
		return Result{Outcome: OutcomeNoEvents, Session: sess}
	case 1:
		return Result{Outcome: OutcomeRedirect, RedirectTo: "/dashboard/" + events[0].Slug, Session: sess}
	default:
		return Result{Outcome: OutcomeRedirect, RedirectTo: "/dashboard", Session: sess}
	}
}
