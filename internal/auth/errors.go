package auth

import (
	"errors"
	"fmt"
)

const (
	msgTokenRejected  = "Failed to login with Google. Please try again."
	msgProviderFailed = "Google login failed. Please try again."
)

var (
	ErrMalformedToken = errors.New("malformed identity token")
	ErrTokenRejected  = errors.New("identity token rejected")
)

// ValidationError blocks a local submit; each field carries its own message.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("auth: %d invalid field(s)", len(e.Fields))
}

// ProviderError is a federated login failure. Message is safe to show to the user.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
