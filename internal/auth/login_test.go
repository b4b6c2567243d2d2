package auth

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fetehq/fete/internal/model"
)

type fakeDirectory struct {
	status      model.HostStatus
	statusErr   error
	validToken  string
	verifyErr   error
	statusCalls int
	verifyCalls int
	consumed    bool
}

func (f *fakeDirectory) CheckStatus(email string) (model.HostStatus, error) {
	f.statusCalls++
	return f.status, f.statusErr
}

func (f *fakeDirectory) VerifyAndConsumeToken(email, token string) (bool, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	if token == f.validToken && token != "" {
		f.consumed = true
		return true, nil
	}
	return false, nil
}

type fakeSessions struct {
	err     error
	created []string
}

func (f *fakeSessions) Create(hostEmail string) (*model.HostSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, hostEmail)
	return &model.HostSession{
		ID:        int64(len(f.created)),
		Token:     "session-token",
		HostEmail: hostEmail,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type fakeEvents struct {
	refs  []model.EventRef
	err   error
	calls int
}

func (f *fakeEvents) ListActiveByHost(hostEmail string) ([]model.EventRef, error) {
	f.calls++
	return f.refs, f.err
}

func newTestService(d *fakeDirectory, s *fakeSessions, e *fakeEvents) *Service {
	return NewService(d, s, e, slog.New(slog.DiscardHandler))
}

func TestLoginUnknownHost(t *testing.T) {
	dir := &fakeDirectory{}
	sessions := &fakeSessions{}
	svc := newTestService(dir, sessions, &fakeEvents{})

	res := svc.Login(nil, "nobody@example.com", "whatever")

	if res.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %v, want failure", res.Outcome)
	}
	if res.Message != msgInvalidCredentials {
		t.Errorf("message = %q, want %q", res.Message, msgInvalidCredentials)
	}
	if res.TokenRequired {
		t.Error("unknown host must not be told a token is required")
	}
	if len(sessions.created) != 0 {
		t.Error("no session should be created")
	}
}

func TestLoginWrongTokenMatchesUnknownHostMessage(t *testing.T) {
	// Enumeration defense: a known email with a wrong token and an unknown
	// email must produce byte-identical messages.
	unknownDir := &fakeDirectory{}
	unknownRes := newTestService(unknownDir, &fakeSessions{}, &fakeEvents{}).
		Login(nil, "nobody@example.com", "tok")

	knownDir := &fakeDirectory{status: model.HostStatus{Exists: true}, validToken: "right"}
	knownRes := newTestService(knownDir, &fakeSessions{}, &fakeEvents{}).
		Login(nil, "host@example.com", "wrong")

	if unknownRes.Outcome != OutcomeFailure || knownRes.Outcome != OutcomeFailure {
		t.Fatal("both attempts should fail")
	}
	if unknownRes.Message != knownRes.Message {
		t.Errorf("messages differ: %q vs %q", unknownRes.Message, knownRes.Message)
	}
}

func TestLoginTokenRequired(t *testing.T) {
	for _, tok := range []string{"", "   "} {
		dir := &fakeDirectory{status: model.HostStatus{Exists: true}, validToken: "right"}
		sessions := &fakeSessions{}
		svc := newTestService(dir, sessions, &fakeEvents{})

		res := svc.Login(nil, "host@example.com", tok)

		if res.Outcome != OutcomeFailure {
			t.Fatalf("token %q: outcome = %v, want failure", tok, res.Outcome)
		}
		if !res.TokenRequired {
			t.Errorf("token %q: expected TokenRequired", tok)
		}
		if res.Message != msgTokenRequired {
			t.Errorf("token %q: message = %q, want %q", tok, res.Message, msgTokenRequired)
		}
		if dir.verifyCalls != 0 {
			t.Errorf("token %q: verify called %d times, want 0", tok, dir.verifyCalls)
		}
		if len(sessions.created) != 0 {
			t.Errorf("token %q: no session should be created", tok)
		}
	}
}

func TestLoginFirstTimeValidToken(t *testing.T) {
	dir := &fakeDirectory{status: model.HostStatus{Exists: true}, validToken: "secret"}
	sessions := &fakeSessions{}
	events := &fakeEvents{refs: []model.EventRef{{ID: 1, Slug: "beach-party"}}}
	svc := newTestService(dir, sessions, events)

	res := svc.Login(nil, "Host@Example.com", "  secret  ")

	if res.Outcome != OutcomeRedirect {
		t.Fatalf("outcome = %v, want redirect (message %q)", res.Outcome, res.Message)
	}
	if res.RedirectTo != "/dashboard/beach-party" {
		t.Errorf("redirect = %q, want %q", res.RedirectTo, "/dashboard/beach-party")
	}
	if !dir.consumed {
		t.Error("token should be consumed")
	}
	if dir.verifyCalls != 1 {
		t.Errorf("verify calls = %d, want 1", dir.verifyCalls)
	}
	if res.Session == nil {
		t.Fatal("expected a new session on the result")
	}
	if res.Session.HostEmail != "host@example.com" {
		t.Errorf("session email = %q, want normalized", res.Session.HostEmail)
	}
}

func TestLoginReturningHostSkipsTokenCheck(t *testing.T) {
	// Once the token is consumed, any supplied token value is ignored.
	for _, tok := range []string{"", "garbage", "the-original-token"} {
		dir := &fakeDirectory{status: model.HostStatus{Exists: true, TokenUsed: true}}
		sessions := &fakeSessions{}
		events := &fakeEvents{refs: []model.EventRef{{ID: 1, Slug: "beach-party"}}}
		svc := newTestService(dir, sessions, events)

		res := svc.Login(nil, "host@example.com", tok)

		if res.Outcome != OutcomeRedirect {
			t.Fatalf("token %q: outcome = %v, want redirect", tok, res.Outcome)
		}
		if dir.verifyCalls != 0 {
			t.Errorf("token %q: token store consulted %d times, want 0", tok, dir.verifyCalls)
		}
		if len(sessions.created) != 1 {
			t.Errorf("token %q: sessions created = %d, want 1", tok, len(sessions.created))
		}
	}
}

func TestLoginRedirectTargeting(t *testing.T) {
	cases := []struct {
		name        string
		refs        []model.EventRef
		wantOutcome Outcome
		wantTarget  string
	}{
		{"no events", nil, OutcomeNoEvents, ""},
		{"one event", []model.EventRef{{ID: 1, Slug: "beach-party"}}, OutcomeRedirect, "/dashboard/beach-party"},
		{"two events", []model.EventRef{{ID: 1, Slug: "beach-party"}, {ID: 2, Slug: "game-night"}}, OutcomeRedirect, "/dashboard"},
		{"three events", []model.EventRef{{Slug: "a"}, {Slug: "b"}, {Slug: "c"}}, OutcomeRedirect, "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := &fakeDirectory{status: model.HostStatus{Exists: true, TokenUsed: true}}
			svc := newTestService(dir, &fakeSessions{}, &fakeEvents{refs: tc.refs})

			res := svc.Login(nil, "host@example.com", "")

			if res.Outcome != tc.wantOutcome {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tc.wantOutcome)
			}
			if res.RedirectTo != tc.wantTarget {
				t.Errorf("redirect = %q, want %q", res.RedirectTo, tc.wantTarget)
			}
		})
	}
}

func TestLoginActiveSessionShortCircuit(t *testing.T) {
	dir := &fakeDirectory{} // would report not-exists if consulted
	sessions := &fakeSessions{}
	events := &fakeEvents{refs: []model.EventRef{{ID: 1, Slug: "beach-party"}}}
	svc := newTestService(dir, sessions, events)

	current := &model.HostSession{ID: 7, HostEmail: "a@x.com"}
	res := svc.Login(current, "  A@X.com ", "complete-garbage")

	if res.Outcome != OutcomeRedirect {
		t.Fatalf("outcome = %v, want redirect", res.Outcome)
	}
	if res.RedirectTo != "/dashboard/beach-party" {
		t.Errorf("redirect = %q, want %q", res.RedirectTo, "/dashboard/beach-party")
	}
	if dir.statusCalls != 0 || dir.verifyCalls != 0 {
		t.Errorf("short-circuit consulted the directory (status %d, verify %d)", dir.statusCalls, dir.verifyCalls)
	}
	if res.Session != nil {
		t.Error("short-circuit must not issue a new session")
	}
	if len(sessions.created) != 0 {
		t.Error("short-circuit must not create a session row")
	}
}

func TestLoginSessionForDifferentEmailIgnored(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(dir, &fakeSessions{}, &fakeEvents{})

	current := &model.HostSession{HostEmail: "other@x.com"}
	res := svc.Login(current, "a@x.com", "")

	if res.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %v, want failure (host unknown)", res.Outcome)
	}
	if dir.statusCalls != 1 {
		t.Errorf("status calls = %d, want 1 (no short-circuit for other email)", dir.statusCalls)
	}
}

func TestLoginNoEventsAfterFreshVerification(t *testing.T) {
	dir := &fakeDirectory{status: model.HostStatus{Exists: true}, validToken: "secret"}
	sessions := &fakeSessions{}
	svc := newTestService(dir, sessions, &fakeEvents{})

	res := svc.Login(nil, "host@example.com", "secret")

	if res.Outcome != OutcomeNoEvents {
		t.Fatalf("outcome = %v, want no-events", res.Outcome)
	}
	if res.Session == nil {
		t.Error("authentication succeeded, session should be issued")
	}
}

func TestLoginEmptyEmail(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(dir, &fakeSessions{}, &fakeEvents{})

	res := svc.Login(nil, "   ", "tok")

	if res.Outcome != OutcomeFailure || res.Message != msgInvalidCredentials {
		t.Errorf("result = %+v, want generic failure", res)
	}
	if dir.statusCalls != 0 {
		t.Error("blank email should not hit the directory")
	}
}

func TestLoginCollaboratorFaults(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name string
		dir  *fakeDirectory
		sess *fakeSessions
		ev   *fakeEvents
	}{
		{
			"status fault",
			&fakeDirectory{statusErr: boom},
			&fakeSessions{}, &fakeEvents{},
		},
		{
			"verify fault",
			&fakeDirectory{status: model.HostStatus{Exists: true}, verifyErr: boom},
			&fakeSessions{}, &fakeEvents{},
		},
		{
			"session fault",
			&fakeDirectory{status: model.HostStatus{Exists: true, TokenUsed: true}},
			&fakeSessions{err: boom}, &fakeEvents{},
		},
		{
			"event lookup fault",
			&fakeDirectory{status: model.HostStatus{Exists: true, TokenUsed: true}},
			&fakeSessions{}, &fakeEvents{err: boom},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(tc.dir, tc.sess, tc.ev)

			res := svc.Login(nil, "host@example.com", "secret")

			if res.Outcome != OutcomeFailure {
				t.Fatalf("outcome = %v, want failure", res.Outcome)
			}
			if res.Message != msgTransient {
				t.Errorf("message = %q, want generic transient message", res.Message)
			}
			if res.TokenRequired {
				t.Error("transient failures must not request a token")
			}
			if res.Session != nil {
				t.Error("failed attempts must not surface a session")
			}
		})
	}
}
