package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/fetehq/fete/internal/auth"
	"github.com/fetehq/fete/internal/middleware"
	"github.com/fetehq/fete/internal/model"
	"github.com/fetehq/fete/internal/store"
)

type AuthHandler struct {
	loginSvc  *auth.Service
	sessions  *store.SessionStore
	templates *template.Template
	logger    *slog.Logger
}

func NewAuthHandler(svc *auth.Service, ss *store.SessionStore, templates *template.Template, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		loginSvc:  svc,
		sessions:  ss,
		templates: templates,
		logger:    logger,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "login.html", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	emailAddr := r.FormValue("email")
	accessToken := r.FormValue("access_token")

	res := h.loginSvc.Login(h.currentSession(r), emailAddr, accessToken)

	if res.Session != nil {
		h.setSessionCookie(w, r, res.Session)
	}

	switch res.Outcome {
	case auth.OutcomeRedirect:
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
	case auth.OutcomeNoEvents:
		h.templates.ExecuteTemplate(w, "login.html", map[string]any{
			"Email":    emailAddr,
			"NoEvents": true,
		})
	default:
		h.templates.ExecuteTemplate(w, "login.html", map[string]any{
			"Email":         emailAddr,
			"Error":         res.Message,
			"TokenRequired": res.TokenRequired,
		})
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessions.GetByToken(cookie.Value); err == nil && sess != nil {
			h.sessions.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// currentSession resolves the caller's session cookie, if any. Lookup
// failures are treated as no session rather than surfaced to the user.
func (h *AuthHandler) currentSession(r *http.Request) *model.HostSession {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := h.sessions.GetByToken(cookie.Value)
	if err != nil {
		h.logger.Error("session lookup", "error", err)
		return nil
	}
	return sess
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *model.HostSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
