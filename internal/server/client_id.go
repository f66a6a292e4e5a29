package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const clientIDCookieName = "wg_client"

type clientIDContextKey struct{}

// ensureClientID gives every browser a stable random id. Server-side storage
// and the weather registry are keyed by it.
func (h handler) ensureClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(clientIDCookieName); err == nil {
			if parsed, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientIDCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   h.sessionCookieSecure(r),
				MaxAge:   int(h.sessionTTL.Seconds()),
			})
		}
		ctx := context.WithValue(r.Context(), clientIDContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDContextKey{}).(string); ok {
		return id
	}
	return ""
}
