package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode selects which form the auth screen shows.
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// ParseMode maps a query/form value to a Mode, defaulting to sign-in.
func ParseMode(v string) Mode {
	if Mode(strings.TrimSpace(strings.ToLower(v))) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

func (m Mode) Other() Mode {
	if m == ModeSignUp {
		return ModeSignIn
	}
	return ModeSignUp
}

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

const minPasswordLength = 6

type Form struct {
	Name     string
	Email    string
	Password string
}

// FieldErrors maps a form field to its message. Empty means the form is valid.
type FieldErrors map[string]string

var (
	emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)
	validate   = newValidator()
)

type formInput struct {
	Mode     Mode
	Name     string `validate:"required_if=Mode signup"`
	Email    string `validate:"required,looseemail"`
	Password string `validate:"required,min=6"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a form against the rules of the given mode.
func Validate(f Form, mode Mode) FieldErrors {
	in := formInput{
		Mode:     mode,
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
	out := FieldErrors{}
	err := validate.Struct(in)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[FieldEmail] = "Email is invalid"
		return out
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Name":
			out[FieldName] = "Name is required"
		case "Email":
			if fe.Tag() == "required" {
				out[FieldEmail] = "Email is required"
			} else {
				out[FieldEmail] = "Email is invalid"
			}
		case "Password":
			if fe.Tag() == "required" {
				out[FieldPassword] = "Password is required"
			} else {
				out[FieldPassword] = "Password must be at least 6 characters"
			}
		}
	}
	return out
}
