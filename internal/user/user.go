package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("user session not found")
	ErrInvalidRecord = errors.New("invalid user session record")
)

// LoginMethod records how a session was established.
type LoginMethod int

const (
	LoginLocal LoginMethod = iota + 1
	LoginFederated
)

// Wire values match what earlier builds of the app persisted.
const (
	loginLocalWire     = "email"
	loginFederatedWire = "google"
)

func (m LoginMethod) String() string {
	switch m {
	case LoginLocal:
		return loginLocalWire
	case LoginFederated:
		return loginFederatedWire
	default:
		return "unknown"
	}
}

func (m LoginMethod) MarshalText() ([]byte, error) {
	switch m {
	case LoginLocal, LoginFederated:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("marshal login method %d: %w", int(m), ErrInvalidRecord)
	}
}

func (m *LoginMethod) UnmarshalText(b []byte) error {
	switch strings.TrimSpace(strings.ToLower(string(b))) {
	case loginLocalWire, "local":
		*m = LoginLocal
	case loginFederatedWire, "federated":
		*m = LoginFederated
	default:
		return fmt.Errorf("unmarshal login method %q: %w", string(b), ErrInvalidRecord)
	}
	return nil
}

// Session is the authenticated identity kept for one browser.
type Session struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Picture     string      `json:"picture,omitempty"`
	LoginMethod LoginMethod `json:"loginMethod"`
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("name and email are required: %w", ErrInvalidRecord)
	}
	if s.LoginMethod != LoginLocal && s.LoginMethod != LoginFederated {
		return fmt.Errorf("login method is required: %w", ErrInvalidRecord)
	}
	return nil
}

// Initial is the upper-cased first letter of the display name, used as an avatar.
func (s Session) Initial() string {
	for _, r := range strings.TrimSpace(s.Name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

func (s Session) IsFederated() bool {
	return s.LoginMethod == LoginFederated
}

func Encode(s Session) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return string(raw), nil
}

func Decode(raw string) (Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w: %w", ErrInvalidRecord, err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}
