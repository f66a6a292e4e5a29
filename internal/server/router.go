package server

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/benpsk/weather-gate/internal/config"
	webstatic "github.com/benpsk/weather-gate/static"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg config.Config, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appOrigins(cfg.AppURL),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	staticFS := webstatic.FileSystem()
	if _, err := os.Stat("static"); err == nil {
		staticFS = http.Dir("static")
	}

	h := newHandler(cfg, deps)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticFS)))
	r.Get("/healthz", h.healthz)
	r.Get("/api/health", h.healthz)

	r.Group(func(r chi.Router) {
		r.Use(h.ensureClientID)
		r.Use(csrfProtection)
		r.Use(h.loadSession)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/", h.weatherPage)
			r.Get("/weather/search", h.weatherSearch)
			r.Get("/api/weather", h.apiWeather)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireGuest)
			r.Get("/auth/login", h.loginPage)
			r.Post("/auth/login", h.loginSubmit)
			r.Post("/auth/google", h.googleLogin)
		})

		r.Post("/auth/logout", h.logout)
		r.Get("/api/session", h.apiSession)
	})

	return r
}

func appOrigins(appURL string) []string {
	appURL = strings.TrimSpace(appURL)
	if appURL == "" {
		return nil
	}
	parsed, err := url.Parse(appURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}
	return []string{parsed.Scheme + "://" + parsed.Host}
}
