package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// TokeninfoVerifier asks Google's tokeninfo endpoint to validate an ID token
// and then checks the audience, issuer and expiry itself.
type TokeninfoVerifier struct {
	httpClient *http.Client
	endpoint   string
	clientID   string
	now        func() time.Time
}

func NewTokeninfoVerifier(clientID string, httpClient *http.Client, endpoint string) *TokeninfoVerifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultTokeninfoURL
	}
	return &TokeninfoVerifier{
		httpClient: httpClient,
		endpoint:   strings.TrimSpace(endpoint),
		clientID:   strings.TrimSpace(clientID),
		now:        time.Now,
	}
}

func (v *TokeninfoVerifier) Decode(ctx context.Context, credential string) (Claims, error) {
	if v.clientID == "" {
		return Claims{}, fmt.Errorf("%w: client id not configured", ErrTokenRejected)
	}
	if _, err := parseUnverified(credential); err != nil {
		return Claims{}, err
	}

	params := url.Values{}
	params.Set("id_token", strings.TrimSpace(credential))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenRejected, err)
	}
	req.Header.Set("user-agent", "weather-gate")

	var payload struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified any    `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Aud           string `json:"aud"`
		Iss           string `json:"iss"`
		Exp           string `json:"exp"`
	}
	status, err := v.doJSON(req, &payload)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenRejected, err)
	}
	if status != http.StatusOK {
		return Claims{}, fmt.Errorf("%w: tokeninfo status %d", ErrTokenRejected, status)
	}
	if strings.TrimSpace(payload.Sub) == "" || strings.TrimSpace(payload.Aud) != v.clientID {
		return Claims{}, fmt.Errorf("%w: audience mismatch", ErrTokenRejected)
	}
	if payload.Iss != "accounts.google.com" && payload.Iss != "https://accounts.google.com" {
		return Claims{}, fmt.Errorf("%w: unexpected issuer %q", ErrTokenRejected, payload.Iss)
	}
	if exp, err := strconv.ParseInt(strings.TrimSpace(payload.Exp), 10, 64); err != nil || v.now().After(time.Unix(exp, 0)) {
		return Claims{}, fmt.Errorf("%w: token expired", ErrTokenRejected)
	}
	if !parseTruthy(payload.EmailVerified) {
		return Claims{}, fmt.Errorf("%w: email not verified", ErrTokenRejected)
	}
	return claimsFromPayload(payload.Name, payload.Email, payload.Picture)
}

func (v *TokeninfoVerifier) doJSON(req *http.Request, dst any) (int, error) {
	res, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, err
	}
	if len(body) == 0 {
		return res.StatusCode, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return res.StatusCode, fmt.Errorf("decode json: %w", err)
		}
		return res.StatusCode, nil
	}
	return res.StatusCode, nil
}

func parseTruthy(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		value = strings.TrimSpace(strings.ToLower(value))
		return value == "true" || value == "1"
	default:
		return false
	}
}
