package weather

import "errors"

const (
	msgEmptyCity     = "Please enter a city name"
	msgRequestFailed = "Failed to fetch weather data. Please try again."
)

var (
	// ErrSuperseded is returned when a newer search started while this one was
	// in flight; its result was discarded.
	ErrSuperseded = errors.New("weather: search superseded")

	errMalformedPayload = errors.New("weather: malformed provider payload")
	errServerError      = errors.New("weather: provider server error")
)

// ValidationError is raised before any request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RequestError is a failed lookup. Message is safe to show to the user.
type RequestError struct {
	Message string
	Status  int
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }
