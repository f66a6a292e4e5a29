package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the part of an identity token the app keeps.
type Claims struct {
	Name    string
	Email   string
	Picture string
}

type TokenDecoder interface {
	Decode(ctx context.Context, credential string) (Claims, error)
}

type idTokenClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// UnverifiedDecoder reads the token payload without checking its signature or
// expiry. Only suitable for local demos; see TokeninfoVerifier.
type UnverifiedDecoder struct{}

func (UnverifiedDecoder) Decode(_ context.Context, credential string) (Claims, error) {
	parsed, err := parseUnverified(credential)
	if err != nil {
		return Claims{}, err
	}
	return claimsFromPayload(parsed.Name, parsed.Email, parsed.Picture)
}

func parseUnverified(credential string) (idTokenClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return idTokenClaims{}, ErrMalformedToken
	}
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return idTokenClaims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return claims, nil
}

func claimsFromPayload(name, email, picture string) (Claims, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Claims{}, fmt.Errorf("%w: email claim missing", ErrMalformedToken)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return Claims{
		Name:    name,
		Email:   email,
		Picture: strings.TrimSpace(picture),
	}, nil
}
