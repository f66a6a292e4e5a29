package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benpsk/weather-gate/internal/session"
)

func cookieStorageFor(secret string, now time.Time, cookies ...*http.Cookie) (*cookieStorage, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	return &cookieStorage{
		w:       rec,
		r:       req,
		secret:  []byte(secret),
		ttl:     time.Hour,
		now:     func() time.Time { return now },
		written: map[string]*string{},
	}, rec
}

func TestCookieStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	for _, secret := range []string{"", "s3cret"} {
		writer, rec := cookieStorageFor(secret, now)
		if err := writer.SetItem(ctx, session.Key, `{"name":"Ada"}`); err != nil {
			t.Fatalf("set item: %v", err)
		}
		if v, ok, _ := writer.GetItem(ctx, session.Key); !ok || v != `{"name":"Ada"}` {
			t.Fatalf("value written in this request should be readable, got %q %v", v, ok)
		}

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected one cookie, got %d", len(cookies))
		}
		reader, _ := cookieStorageFor(secret, now, cookies[0])
		v, ok, err := reader.GetItem(ctx, session.Key)
		if err != nil || !ok || v != `{"name":"Ada"}` {
			t.Fatalf("secret %q: got %q %v %v", secret, v, ok, err)
		}
	}
}

func TestCookieStorageRejectsExpiredAndMisboundTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	writer, rec := cookieStorageFor("s3cret", now)
	if err := writer.SetItem(ctx, session.Key, "value"); err != nil {
		t.Fatalf("set item: %v", err)
	}
	issued := rec.Result().Cookies()[0]

	later, _ := cookieStorageFor("s3cret", now.Add(2*time.Hour), issued)
	if _, _, err := later.GetItem(ctx, session.Key); !errors.Is(err, session.ErrCorrupt) {
		t.Fatalf("expected expired token to be corrupt, got %v", err)
	}

	moved := &http.Cookie{Name: "otherKey", Value: issued.Value}
	misbound, _ := cookieStorageFor("s3cret", now, moved)
	if _, _, err := misbound.GetItem(ctx, "otherKey"); !errors.Is(err, session.ErrCorrupt) {
		t.Fatalf("expected token bound to another key to be corrupt, got %v", err)
	}
}

func TestCookieStorageRemoveItem(t *testing.T) {
	ctx := context.Background()
	storage, rec := cookieStorageFor("", time.Now(), &http.Cookie{Name: session.Key, Value: "dmFsdWU"})

	if err := storage.RemoveItem(ctx, session.Key); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if _, ok, _ := storage.GetItem(ctx, session.Key); ok {
		t.Fatal("removed item must not be readable in the same request")
	}
	assertCookieCleared(t, rec, session.Key)
}
