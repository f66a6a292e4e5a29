package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/benpsk/weather-gate/internal/user"
)

type authContextKey string

const currentUserContextKey authContextKey = "current_user"

// loadSession reads the browser's stored session once per request and puts it
// in the request context for the handlers below.
func (h handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipSessionLoad(r) {
			next.ServeHTTP(w, r)
			return
		}

		sess, ok := h.sessionStore(w, r).Load(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey, &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func skipSessionLoad(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	path := strings.TrimSpace(r.URL.Path)
	if path == "/healthz" || path == "/api/health" {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

func (h handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUserFromContext(r) == nil {
			switch {
			case strings.HasPrefix(r.URL.Path, "/api/"):
				writeErrorJSON(w, http.StatusUnauthorized, "not signed in")
			case isHtmx(r):
				w.Header().Set("HX-Redirect", "/auth/login")
				w.WriteHeader(http.StatusUnauthorized)
			default:
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h handler) requireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUserFromContext(r) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUserFromContext(r *http.Request) *user.Session {
	if r == nil {
		return nil
	}
	if u, ok := r.Context().Value(currentUserContextKey).(*user.Session); ok {
		return u
	}
	return nil
}

func (h handler) sessionCookieSecure(r *http.Request) bool {
	if h.cookieSecure {
		return true
	}
	if strings.EqualFold(h.appEnv, "production") {
		return true
	}
	if r != nil && r.TLS != nil {
		return true
	}
	return r != nil && strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
