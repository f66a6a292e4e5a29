package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benpsk/weather-gate/internal/session"
	"github.com/benpsk/weather-gate/internal/user"
)

const DefaultLocalDelay = 1500 * time.Millisecond

// Flow is the state of one auth screen: the selected mode, the form and its
// field errors. A successful login is saved to the session store and handed to
// the success callback.
type Flow struct {
	mode      Mode
	form      Form
	errors    FieldErrors
	store     *session.Store
	decoder   TokenDecoder
	delay     time.Duration
	onSuccess func(user.Session)
}

type Option func(*Flow)

func WithDecoder(d TokenDecoder) Option {
	return func(f *Flow) { f.decoder = d }
}

// WithDelay sets the simulated latency of a local login.
func WithDelay(d time.Duration) Option {
	return func(f *Flow) { f.delay = d }
}

func OnSuccess(fn func(user.Session)) Option {
	return func(f *Flow) { f.onSuccess = fn }
}

func NewFlow(store *session.Store, opts ...Option) *Flow {
	f := &Flow{
		mode:    ModeSignIn,
		errors:  FieldErrors{},
		store:   store,
		decoder: UnverifiedDecoder{},
		delay:   DefaultLocalDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Mode() Mode          { return f.mode }
func (f *Flow) Form() Form          { return f.form }
func (f *Flow) Errors() FieldErrors { return f.errors }

// Toggle switches between sign-in and sign-up and resets the form.
func (f *Flow) Toggle() {
	f.mode = f.mode.Other()
	f.reset()
}

// SetField updates one field and drops the error shown for it.
func (f *Flow) SetField(name, value string) {
	switch name {
	case FieldName:
		f.form.Name = value
	case FieldEmail:
		f.form.Email = value
	case FieldPassword:
		f.form.Password = value
	default:
		return
	}
	delete(f.errors, name)
}

// SubmitLocal validates the form and, when it passes, signs the user in after
// the simulated delay. There is no backend behind this path.
func (f *Flow) SubmitLocal(ctx context.Context) (user.Session, error) {
	f.errors = Validate(f.form, f.mode)
	if len(f.errors) > 0 {
		return user.Session{}, &ValidationError{Fields: f.errors}
	}

	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return user.Session{}, ctx.Err()
		case <-timer.C:
		}
	}

	email := strings.TrimSpace(f.form.Email)
	name := strings.TrimSpace(f.form.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if name == "" {
		name = email
	}
	sess := user.Session{
		Name:        name,
		Email:       email,
		LoginMethod: user.LoginLocal,
	}
	if err := f.complete(ctx, sess); err != nil {
		return user.Session{}, err
	}
	f.reset()
	return sess, nil
}

// LoginFederated turns an identity-provider credential into a session.
func (f *Flow) LoginFederated(ctx context.Context, credential string) (user.Session, error) {
	claims, err := f.decoder.Decode(ctx, credential)
	if err != nil {
		return user.Session{}, &ProviderError{Message: msgTokenRejected, Err: err}
	}
	sess := user.Session{
		Name:        claims.Name,
		Email:       claims.Email,
		Picture:     claims.Picture,
		LoginMethod: user.LoginFederated,
	}
	if err := f.complete(ctx, sess); err != nil {
		return user.Session{}, err
	}
	return sess, nil
}

// ProviderFailed reports a failure raised by the identity widget itself.
func (f *Flow) ProviderFailed(reason string) error {
	var err error
	if reason = strings.TrimSpace(reason); reason != "" {
		err = fmt.Errorf("provider: %s", reason)
	}
	return &ProviderError{Message: msgProviderFailed, Err: err}
}

func (f *Flow) complete(ctx context.Context, sess user.Session) error {
	if err := f.store.Save(ctx, sess); err != nil {
		return err
	}
	if f.onSuccess != nil {
		f.onSuccess(sess)
	}
	return nil
}

func (f *Flow) reset() {
	f.form = Form{}
	f.errors = FieldErrors{}
}
