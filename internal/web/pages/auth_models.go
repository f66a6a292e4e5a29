package pages

import (
	"net/url"

	"github.com/benpsk/weather-gate/internal/auth"
	"github.com/benpsk/weather-gate/internal/user"
	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/benpsk/weather-gate/internal/web/components"
)

type AuthPageModel struct {
	AppName        string
	AppURL         string
	GoogleClientID string
	Mode           auth.Mode
	Form           auth.Form
	Errors         auth.FieldErrors
	Alert          string
}

func (m AuthPageModel) layoutOptions() components.LayoutOptions {
	return components.LayoutOptions{AppName: m.AppName, AppURL: m.AppURL, GoogleClientID: m.GoogleClientID}
}

type WeatherPageModel struct {
	AppName string
	AppURL  string
	User    user.Session
	City    string
	View    weather.View
	Alert   string
	// AutoSearch makes the card load City as soon as the page is shown.
	AutoSearch bool
}

func (m WeatherPageModel) layoutOptions() components.LayoutOptions {
	return components.LayoutOptions{AppName: m.AppName, AppURL: m.AppURL}
}

var weatherMeta = components.PageMeta{
	Title:       "Weather",
	Description: "Current temperature, humidity and wind for any city.",
	Path:        "/",
}

func authMeta(mode auth.Mode) components.PageMeta {
	title := "Sign In"
	if mode == auth.ModeSignUp {
		title = "Sign Up"
	}
	return components.PageMeta{
		Title:       title,
		Description: "Sign in to check the current weather in any city.",
		Path:        "/auth/login",
	}
}

func searchURL(city string) string {
	return "/weather/search?city=" + url.QueryEscape(city)
}
