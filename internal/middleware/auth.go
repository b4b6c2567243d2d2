package middleware

import (
	"net/http"

	"github.com/fetehq/fete/internal/auth"
	"github.com/fetehq/fete/internal/store"
)

// SessionCookieName is the cookie carrying the opaque host session token.
const SessionCookieName = "fete_host_session"

// RequireHost validates the session cookie and stores the host identity in
// the request context. Requests without a live session are sent to the
// login page.
func RequireHost(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := auth.WithHost(r.Context(), auth.HostContext{
				Email:     sess.HostEmail,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
