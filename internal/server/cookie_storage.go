package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benpsk/weather-gate/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

// cookieStorage keeps each item in a cookie named after its key. With a
// secret the value is an HS256 token bound to the key; without one it is
// plain base64.
type cookieStorage struct {
	w       http.ResponseWriter
	r       *http.Request
	secret  []byte
	ttl     time.Duration
	secure  bool
	now     func() time.Time
	written map[string]*string
}

type storedItemClaims struct {
	Value string `json:"v"`
	jwt.RegisteredClaims
}

func (h handler) newCookieStorage(w http.ResponseWriter, r *http.Request) *cookieStorage {
	return &cookieStorage{
		w:       w,
		r:       r,
		secret:  h.sessionSecret,
		ttl:     h.sessionTTL,
		secure:  h.sessionCookieSecure(r),
		now:     h.now,
		written: map[string]*string{},
	}
}

func (s *cookieStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	raw := strings.TrimSpace(c.Value)
	if raw == "" {
		return "", false, nil
	}
	value, err := s.decode(key, raw)
	if err != nil {
		return "", false, fmt.Errorf("cookie %s: %w: %w", key, session.ErrCorrupt, err)
	}
	return value, true, nil
}

func (s *cookieStorage) SetItem(_ context.Context, key, value string) error {
	encoded, err := s.encode(key, value)
	if err != nil {
		return fmt.Errorf("encode cookie %s: %w", key, err)
	}
	now := s.now()
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
		Expires:  now.Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
	})
	s.written[key] = &value
	return nil
}

func (s *cookieStorage) RemoveItem(_ context.Context, key string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
		MaxAge:   -1,
	})
	s.written[key] = nil
	return nil
}

func (s *cookieStorage) encode(key, value string) (string, error) {
	if len(s.secret) == 0 {
		return base64.RawURLEncoding.EncodeToString([]byte(value)), nil
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, storedItemClaims{
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *cookieStorage) decode(key, raw string) (string, error) {
	if len(s.secret) == 0 {
		b, err := base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	claims := &storedItemClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(key),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	return claims.Value, nil
}
