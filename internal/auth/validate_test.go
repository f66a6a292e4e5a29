package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		form Form
		want FieldErrors
	}{
		{
			name: "valid sign in",
			mode: ModeSignIn,
			form: Form{Email: "a@b.co", Password: "secret"},
			want: FieldErrors{},
		},
		{
			name: "sign in does not need a name",
			mode: ModeSignIn,
			form: Form{Name: "   ", Email: "a@b.co", Password: "123456"},
			want: FieldErrors{},
		},
		{
			name: "sign up needs a name",
			mode: ModeSignUp,
			form: Form{Name: "  ", Email: "a@b.co", Password: "123456"},
			want: FieldErrors{FieldName: "Name is required"},
		},
		{
			name: "valid sign up",
			mode: ModeSignUp,
			form: Form{Name: "Ada", Email: "a@b.co", Password: "123456"},
			want: FieldErrors{},
		},
		{
			name: "empty everything sign up",
			mode: ModeSignUp,
			form: Form{},
			want: FieldErrors{
				FieldName:     "Name is required",
				FieldEmail:    "Email is required",
				FieldPassword: "Password is required",
			},
		},
		{
			name: "blank email",
			mode: ModeSignIn,
			form: Form{Email: "   ", Password: "123456"},
			want: FieldErrors{FieldEmail: "Email is required"},
		},
		{
			name: "email without dot",
			mode: ModeSignIn,
			form: Form{Email: "a@b", Password: "123456"},
			want: FieldErrors{FieldEmail: "Email is invalid"},
		},
		{
			name: "email without at",
			mode: ModeSignIn,
			form: Form{Email: "ab.co", Password: "123456"},
			want: FieldErrors{FieldEmail: "Email is invalid"},
		},
		{
			name: "short password",
			mode: ModeSignIn,
			form: Form{Email: "a@b.co", Password: "12345"},
			want: FieldErrors{FieldPassword: "Password must be at least 6 characters"},
		},
		{
			name: "password of spaces counts",
			mode: ModeSignIn,
			form: Form{Email: "a@b.co", Password: strings.Repeat(" ", 6)},
			want: FieldErrors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Validate(tt.form, tt.mode))
		})
	}
}

func TestValidateSignInFailsOnlyOnEmailOrPassword(t *testing.T) {
	emails := []string{"", " ", "x", "x@y", "x@y.z", "first.last@example.com"}
	passwords := []string{"", "1", "12345", "123456", "long enough password"}
	names := []string{"", "  ", "Ada"}

	for _, email := range emails {
		for _, password := range passwords {
			for _, name := range names {
				errs := Validate(Form{Name: name, Email: email, Password: password}, ModeSignIn)
				emailBad := strings.TrimSpace(email) == "" || !emailShape.MatchString(strings.TrimSpace(email))
				passwordBad := len(password) < minPasswordLength
				require.Equal(t, emailBad || passwordBad, len(errs) > 0, "email=%q password=%q name=%q", email, password, name)
				require.NotContains(t, errs, FieldName)
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModeSignUp, ParseMode(" SignUp "))
	require.Equal(t, ModeSignIn, ParseMode("signin"))
	require.Equal(t, ModeSignIn, ParseMode("anything"))
	require.Equal(t, ModeSignIn, ModeSignUp.Other())
}
