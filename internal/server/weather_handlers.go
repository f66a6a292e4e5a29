package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/benpsk/weather-gate/internal/web/pages"
)

const msgSearchFailed = "Failed to fetch weather data. Please try again."

// weatherPage shows the weather screen and has the card load the default city.
func (h handler) weatherPage(w http.ResponseWriter, r *http.Request) {
	u := currentUserFromContext(r)
	h.renderPage(w, r, http.StatusOK, pages.WeatherPage(pages.WeatherPageModel{
		AppName:    h.appName,
		AppURL:     h.appURL,
		User:       *u,
		City:       h.defaultCity,
		View:       h.workflow(r).View(),
		AutoSearch: true,
	}))
}

// weatherSearch answers htmx with the card partial and alerts through
// HX-Trigger. Other clients get the whole page.
func (h handler) weatherSearch(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	view, err := h.workflow(r).Search(r.Context(), city)
	alert, swap := searchOutcome(city, err)

	if isHtmx(r) {
		if alert != "" {
			triggerAlert(w, alert)
		}
		if !swap {
			w.Header().Set("HX-Reswap", "none")
			w.WriteHeader(http.StatusOK)
			return
		}
		h.renderPage(w, r, http.StatusOK, pages.WeatherCard(view))
		return
	}

	u := currentUserFromContext(r)
	h.renderPage(w, r, http.StatusOK, pages.WeatherPage(pages.WeatherPageModel{
		AppName: h.appName,
		AppURL:  h.appURL,
		User:    *u,
		City:    strings.TrimSpace(city),
		View:    view,
		Alert:   alert,
	}))
}

// searchOutcome maps a search result to the alert to show and whether the card
// should be replaced.
func searchOutcome(city string, err error) (string, bool) {
	var validationErr *weather.ValidationError
	var requestErr *weather.RequestError
	switch {
	case err == nil:
		return "", true
	case errors.Is(err, weather.ErrSuperseded):
		return "", false
	case errors.As(err, &validationErr):
		return validationErr.Message, false
	case errors.As(err, &requestErr):
		log.Printf("weather: search %q: %v", city, err)
		return requestErr.Message, true
	default:
		log.Printf("weather: search %q: %v", city, err)
		return msgSearchFailed, true
	}
}

func (h handler) apiWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	view, err := h.workflow(r).Search(r.Context(), city)

	var validationErr *weather.ValidationError
	var requestErr *weather.RequestError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view.Snapshot)
	case errors.Is(err, weather.ErrSuperseded):
		writeErrorJSON(w, http.StatusConflict, "search superseded by a newer one")
	case errors.As(err, &validationErr):
		writeErrorJSON(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &requestErr):
		log.Printf("weather: api search %q: %v", city, err)
		status := http.StatusBadGateway
		if requestErr.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		writeErrorJSON(w, status, requestErr.Message)
	default:
		log.Printf("weather: api search %q: %v", city, err)
		writeErrorJSON(w, http.StatusBadGateway, msgSearchFailed)
	}
}

func (h handler) apiSession(w http.ResponseWriter, r *http.Request) {
	u := currentUserFromContext(r)
	if u == nil {
		writeErrorJSON(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
