package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/benpsk/weather-gate/internal/session"
	"github.com/benpsk/weather-gate/internal/weather"
)

func TestWeatherSearchHtmxRendersCard(t *testing.T) {
	searcher := &fakeSearcher{}
	b := newBrowser(t, NewRouter(testConfig(), testDeps(searcher, nil)))
	b.signIn("ada@example.com")

	rec := b.get("/weather/search?city=Paris", "HX-Request", "true")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Fatal("htmx search must return the card partial only")
	}
	for _, want := range []string{`id="weather-card"`, "/static/icons/rain.svg", `<p class="location">Paris</p>`, "18&deg;", "72%", "12.6 km/h"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in card, got %s", want, body)
		}
	}
	if got := searcher.calls(); len(got) != 1 || got[0] != "Paris" {
		t.Fatalf("unexpected searches: %v", got)
	}
}

func TestWeatherSearchBlankCityAlertsWithoutCall(t *testing.T) {
	searcher := &fakeSearcher{}
	b := newBrowser(t, NewRouter(testConfig(), testDeps(searcher, nil)))
	b.signIn("ada@example.com")

	rec := b.get("/weather/search?city=++", "HX-Request", "true")
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Fatal("blank search must leave the card untouched")
	}
	assertAlert(t, rec.Header().Get("HX-Trigger"), "Please enter a city name")
	if len(searcher.calls()) != 0 {
		t.Fatal("blank search must not reach the provider")
	}
}

func TestWeatherSearchFailureClearsCardAndAlerts(t *testing.T) {
	searcher := &fakeSearcher{}
	b := newBrowser(t, NewRouter(testConfig(), testDeps(searcher, nil)))
	b.signIn("ada@example.com")

	if rec := b.get("/weather/search?city=Paris", "HX-Request", "true"); !strings.Contains(rec.Body.String(), "Paris") {
		t.Fatal("expected first search to render")
	}

	searcher.err = &weather.RequestError{Message: "city not found", Status: http.StatusNotFound}
	rec := b.get("/weather/search?city=Atlantis", "HX-Request", "true")
	assertAlert(t, rec.Header().Get("HX-Trigger"), "city not found")
	if strings.Contains(rec.Body.String(), "temperature") {
		t.Fatalf("failed search must clear the snapshot, got %s", rec.Body.String())
	}
}

func TestWeatherSearchWithoutHtmxRendersPage(t *testing.T) {
	searcher := &fakeSearcher{err: &weather.RequestError{Message: "Failed to fetch weather data. Please try again."}}
	b := newBrowser(t, NewRouter(testConfig(), testDeps(searcher, nil)))
	b.signIn("ada@example.com")

	rec := b.get("/weather/search?city=Oslo")
	body := rec.Body.String()
	if !strings.Contains(body, "<html") || !strings.Contains(body, `class="alert"`) {
		t.Fatalf("expected full page with alert, got %s", body)
	}
	if !strings.Contains(body, `value="Oslo"`) {
		t.Fatal("expected the searched city kept in the input")
	}
}

func TestAPIWeather(t *testing.T) {
	searcher := &fakeSearcher{}
	b := newBrowser(t, NewRouter(testConfig(), testDeps(searcher, nil)))

	if rec := b.get("/api/weather?city=Paris"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest, got %d", rec.Code)
	}

	b.signIn("ada@example.com")
	rec := b.get("/api/weather?city=Paris")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var snap weather.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Location != "Paris" || snap.Icon != weather.IconRain || snap.WindSpeedKmh != 12.6 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if rec := b.get("/api/weather?city="); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank city, got %d", rec.Code)
	}

	searcher.err = &weather.RequestError{Message: "city not found", Status: http.StatusNotFound}
	if rec := b.get("/api/weather?city=Atlantis"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	searcher.err = &weather.RequestError{Message: "Failed to fetch weather data. Please try again.", Status: http.StatusInternalServerError}
	if rec := b.get("/api/weather?city=Paris"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	b := newBrowser(t, NewRouter(testConfig(), testDeps(&fakeSearcher{}, session.NewMemoryBackend(time.Hour))))
	if rec := b.get("/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	b = newBrowser(t, NewRouter(testConfig(), testDeps(&fakeSearcher{}, failingBackend{})))
	rec := b.get("/api/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storage unreachable") {
		t.Fatalf("expected ping error in body, got %s", rec.Body.String())
	}
}

func assertAlert(t *testing.T, header, want string) {
	t.Helper()
	var payload struct {
		ShowAlert struct {
			Message string `json:"message"`
		} `json:"showAlert"`
	}
	if err := json.Unmarshal([]byte(header), &payload); err != nil {
		t.Fatalf("decode HX-Trigger %q: %v", header, err)
	}
	if payload.ShowAlert.Message != want {
		t.Fatalf("unexpected alert: got %q want %q", payload.ShowAlert.Message, want)
	}
}
