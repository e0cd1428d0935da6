package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "console_session"
	SessionHeaderName = "X-Console-Session"

	sessionContextKey contextKey = "session"
)

// Session makes sure every request carries a console session id. Advance
// confirmations are scoped to it, so two operators never share an armed gate.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sessionFromRequest(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeaderName, id)
		ctx := context.WithValue(r.Context(), sessionContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromRequest(r *http.Request) string {
	if v := r.Header.Get(SessionHeaderName); v != "" {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	return ""
}

// SessionFromContext returns the id set by Session.
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}
