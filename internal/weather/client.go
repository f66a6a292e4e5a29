package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	maxBodyBytes   = 1 << 20
)

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// BreakerFailures is the number of consecutive transport or 5xx failures
	// that open the circuit. Zero disables the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client fetches current conditions from OpenWeatherMap. It makes exactly one
// request per lookup.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		apiKey:     strings.TrimSpace(cfg.APIKey),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if cfg.BreakerFailures > 0 {
		cooldown := cfg.BreakerCooldown
		if cooldown <= 0 {
			cooldown = 30 * time.Second
		}
		failures := cfg.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		})
	}
	return c
}

type providerResponse struct {
	status int
	body   []byte
}

// Current looks up the weather for a city.
func (c *Client) Current(ctx context.Context, city string) (Snapshot, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return Snapshot{}, &RequestError{Message: msgRequestFailed, Err: err}
	}
	req.Header.Set("accept", "application/json")

	res, err := c.execute(req)
	if res == nil {
		return Snapshot{}, &RequestError{Message: msgRequestFailed, Err: err}
	}
	if res.status < 200 || res.status >= 300 {
		return Snapshot{}, providerFailure(res, err)
	}
	snap, err := parseSnapshot(res.body)
	if err != nil {
		return Snapshot{}, &RequestError{Message: msgRequestFailed, Status: res.status, Err: err}
	}
	return snap, nil
}

func (c *Client) execute(req *http.Request) (*providerResponse, error) {
	do := func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		out := &providerResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= 500 {
			return out, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		return out, nil
	}

	var (
		result interface{}
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(do)
	} else {
		result, err = do()
	}
	res, _ := result.(*providerResponse)
	return res, err
}

// providerFailure surfaces the provider's own message for non-2xx replies.
func providerFailure(res *providerResponse, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("provider status %d", res.status)
	}
	var payload struct {
		Message string `json:"message"`
	}
	message := msgRequestFailed
	if err := json.Unmarshal(res.body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		message = strings.TrimSpace(payload.Message)
	}
	return &RequestError{Message: message, Status: res.status, Err: cause}
}

func parseSnapshot(body []byte) (Snapshot, error) {
	var payload struct {
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind *struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", errMalformedPayload, err)
	}
	if payload.Main == nil || payload.Main.Temp == nil || payload.Main.Humidity == nil {
		return Snapshot{}, errors.Join(errMalformedPayload, errors.New("main.temp and main.humidity are required"))
	}
	if payload.Wind == nil || payload.Wind.Speed == nil {
		return Snapshot{}, errors.Join(errMalformedPayload, errors.New("wind.speed is required"))
	}

	icon := IconClear
	if len(payload.Weather) > 0 {
		icon = LookupIcon(payload.Weather[0].Icon)
	}
	return Snapshot{
		Temperature:  int(math.Floor(*payload.Main.Temp)),
		Humidity:     int(math.Round(*payload.Main.Humidity)),
		WindSpeedKmh: metersPerSecondToKmh(*payload.Wind.Speed),
		Location:     payload.Name,
		Icon:         icon,
	}, nil
}
