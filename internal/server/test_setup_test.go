package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benpsk/weather-gate/internal/config"
	"github.com/benpsk/weather-gate/internal/session"
	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/golang-jwt/jwt/v5"
)

const testCSRFToken = "test-csrf-token"

type fakeSearcher struct {
	mu     sync.Mutex
	err    error
	cities []string
}

func (f *fakeSearcher) Current(_ context.Context, city string) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append(f.cities, city)
	if f.err != nil {
		return weather.Snapshot{}, f.err
	}
	return weather.Snapshot{
		Temperature:  18,
		Humidity:     72,
		WindSpeedKmh: 12.6,
		Location:     city,
		Icon:         weather.IconRain,
	}, nil
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cities...)
}

type failingBackend struct {
	session.Backend
}

func (failingBackend) Ping(context.Context) error {
	return errors.New("storage unreachable")
}

func testConfig() config.Config {
	return config.Config{
		AppName: "Weather Gate",
		AppEnv:  "test",
		AppURL:  "http://127.0.0.1:8080",
		Auth: config.AuthConfig{
			SessionSecret:  "test-secret",
			SessionTTL:     time.Hour,
			GoogleClientID: "client-123.apps.googleusercontent.com",
		},
		Weather: config.WeatherConfig{DefaultCity: "Bangalore"},
	}
}

func testDeps(searcher weather.Searcher, backend session.Backend) Dependencies {
	return Dependencies{
		Backend:  backend,
		Registry: weather.NewRegistry(searcher, time.Hour),
	}
}

// browser replays the cookies it was given, like a real user agent.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	t.Helper()
	return &browser{
		t:       t,
		handler: handler,
		cookies: map[string]*http.Cookie{
			csrfCookieName: {Name: csrfCookieName, Value: testCSRFToken},
		},
	}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string, headers ...string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if _, ok := form["csrf_token"]; !ok {
		form.Set("csrf_token", testCSRFToken)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signIn(email string) {
	b.t.Helper()
	rec := b.post("/auth/login", url.Values{
		"mode":     {"signin"},
		"email":    {email},
		"password": {"secret1"},
	})
	if rec.Code != http.StatusSeeOther {
		b.t.Fatalf("sign in: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func googleCredential(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-key"))
	if err != nil {
		t.Fatalf("sign credential: %v", err)
	}
	return token
}

func assertCookieCleared(t *testing.T, rec *httptest.ResponseRecorder, name string) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return
		}
	}
	t.Fatalf("expected cookie %q to be cleared", name)
}

func assertNoCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			t.Fatalf("did not expect cookie %q to be set", name)
		}
	}
}
