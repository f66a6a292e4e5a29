package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/benpsk/weather-gate/internal/auth"
	"github.com/benpsk/weather-gate/internal/user"
	"github.com/benpsk/weather-gate/internal/web/pages"
)

const msgSignInFailed = "Could not sign you in. Please try again."

// newFlow starts an auth flow in sign-in mode and toggles it when mode asks
// for sign-up. A successful login redirects from the success callback.
func (h handler) newFlow(w http.ResponseWriter, r *http.Request, mode auth.Mode) *auth.Flow {
	flow := auth.NewFlow(h.sessionStore(w, r),
		auth.WithDecoder(h.decoder),
		auth.WithDelay(h.loginDelay),
		auth.OnSuccess(func(sess user.Session) {
			h.finishLogin(w, r, sess)
		}),
	)
	if flow.Mode() != mode {
		flow.Toggle()
	}
	return flow
}

func (h handler) authModel(flow *auth.Flow, alert string) pages.AuthPageModel {
	return pages.AuthPageModel{
		AppName:        h.appName,
		AppURL:         h.appURL,
		GoogleClientID: h.googleClientID,
		Mode:           flow.Mode(),
		Form:           flow.Form(),
		Errors:         flow.Errors(),
		Alert:          alert,
	}
}

// loginPage shows a fresh auth screen. Switching modes is a link to
// ?mode=signup or ?mode=signin, so every switch starts from an empty form.
func (h handler) loginPage(w http.ResponseWriter, r *http.Request) {
	flow := h.newFlow(w, r, auth.ParseMode(r.URL.Query().Get("mode")))
	h.renderPage(w, r, http.StatusOK, pages.AuthPage(h.authModel(flow, "")))
}

func (h handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseFormWithLimit(w, r, defaultRequestBodyLimitBytes); err != nil {
		if isRequestBodyTooLarge(err) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	flow := h.newFlow(w, r, auth.ParseMode(r.PostFormValue("mode")))
	for _, name := range []string{auth.FieldName, auth.FieldEmail, auth.FieldPassword} {
		flow.SetField(name, r.PostFormValue(name))
	}

	_, err := flow.SubmitLocal(r.Context())
	var validationErr *auth.ValidationError
	switch {
	case err == nil:
		// redirected by the success callback
	case errors.As(err, &validationErr):
		h.renderPage(w, r, http.StatusUnprocessableEntity, pages.AuthPage(h.authModel(flow, "")))
	case r.Context().Err() != nil:
		// Client went away during the simulated delay.
	default:
		log.Printf("auth: local login: %v", err)
		h.renderPage(w, r, http.StatusInternalServerError, pages.AuthPage(h.authModel(flow, msgSignInFailed)))
	}
}

// googleLogin receives the Google Identity Services callback: a credential on
// success or an error reason when the widget failed.
func (h handler) googleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseFormWithLimit(w, r, defaultRequestBodyLimitBytes); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	flow := h.newFlow(w, r, auth.ParseMode(r.PostFormValue("mode")))

	var err error
	if reason := strings.TrimSpace(r.PostFormValue("error")); reason != "" {
		err = flow.ProviderFailed(reason)
	} else {
		_, err = flow.LoginFederated(r.Context(), strings.TrimSpace(r.PostFormValue("credential")))
	}

	var providerErr *auth.ProviderError
	switch {
	case err == nil:
		// redirected by the success callback
	case errors.As(err, &providerErr):
		log.Printf("auth: google login: %v", err)
		h.renderPage(w, r, http.StatusUnauthorized, pages.AuthPage(h.authModel(flow, providerErr.Message)))
	default:
		log.Printf("auth: google login: %v", err)
		h.renderPage(w, r, http.StatusInternalServerError, pages.AuthPage(h.authModel(flow, msgSignInFailed)))
	}
}

func (h handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore(w, r).Clear(r.Context()); err != nil {
		log.Printf("auth: logout: %v", err)
	}
	h.registry.Forget(clientIDFromContext(r.Context()))
	redirect(w, r, "/auth/login")
}

func (h handler) finishLogin(w http.ResponseWriter, r *http.Request, sess user.Session) {
	log.Printf("auth: signed in (%s)", sess.LoginMethod)
	redirect(w, r, "/")
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHtmx(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
