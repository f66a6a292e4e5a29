package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/benpsk/weather-gate/internal/auth"
	"github.com/benpsk/weather-gate/internal/config"
	"github.com/benpsk/weather-gate/internal/session"
	"github.com/benpsk/weather-gate/internal/weather"
)

// Dependencies are the collaborators the HTTP layer drives.
type Dependencies struct {
	// Backend keeps storage items server side. When nil the browser holds its
	// own session record in a signed cookie.
	Backend  session.Backend
	Decoder  auth.TokenDecoder
	Registry *weather.Registry
}

type handler struct {
	appName        string
	appURL         string
	appEnv         string
	googleClientID string
	cookieSecure   bool
	sessionSecret  []byte
	sessionTTL     time.Duration
	loginDelay     time.Duration
	defaultCity    string
	backend        session.Backend
	decoder        auth.TokenDecoder
	registry       *weather.Registry
	now            func() time.Time
}

func newHandler(cfg config.Config, deps Dependencies) handler {
	h := handler{
		appName:        strings.TrimSpace(cfg.AppName),
		appURL:         strings.TrimSpace(cfg.AppURL),
		appEnv:         strings.TrimSpace(cfg.AppEnv),
		googleClientID: strings.TrimSpace(cfg.Auth.GoogleClientID),
		cookieSecure:   cfg.Auth.CookieSecure,
		sessionSecret:  []byte(cfg.Auth.SessionSecret),
		sessionTTL:     cfg.Auth.SessionTTL,
		loginDelay:     cfg.Auth.LocalLoginDelay,
		defaultCity:    strings.TrimSpace(cfg.Weather.DefaultCity),
		backend:        deps.Backend,
		decoder:        deps.Decoder,
		registry:       deps.Registry,
		now:            time.Now,
	}
	if h.decoder == nil {
		h.decoder = auth.UnverifiedDecoder{}
	}
	if h.sessionTTL <= 0 {
		h.sessionTTL = 30 * 24 * time.Hour
	}
	return h
}

// sessionStore returns the Session Store of the browser behind r.
func (h handler) sessionStore(w http.ResponseWriter, r *http.Request) *session.Store {
	if h.backend != nil {
		return session.NewStore(session.Scope(h.backend, clientIDFromContext(r.Context())))
	}
	return session.NewStore(h.newCookieStorage(w, r))
}

func (h handler) workflow(r *http.Request) *weather.Workflow {
	return h.registry.Get(clientIDFromContext(r.Context()), h.now())
}

func (h handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	payload := map[string]any{"status": "ok", "storage": "up"}
	status := http.StatusOK

	if h.backend != nil {
		if err := h.backend.Ping(ctx); err != nil {
			log.Printf("healthz: storage ping: %v", err)
			payload["status"] = "degraded"
			payload["storage"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	} else {
		payload["storage"] = "cookie"
	}

	writeJSON(w, status, payload)
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h handler) renderPage(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		log.Printf("render %s: %v", r.URL.Path, err)
	}
}

// triggerAlert asks the page to show message through the showAlert htmx event.
func triggerAlert(w http.ResponseWriter, message string) {
	payload, err := json.Marshal(map[string]any{"showAlert": map[string]string{"message": message}})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
