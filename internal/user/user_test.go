package user

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Session{Name: "Ada", Email: "ada@example.com", Picture: "https://example.com/a.png", LoginMethod: LoginFederated}
	raw, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodeAcceptsStoredWireValues(t *testing.T) {
	s, err := Decode(`{"name":"Bo","email":"bo@example.com","loginMethod":"email"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.LoginMethod != LoginLocal || s.IsFederated() {
		t.Fatalf("login method = %v, want local", s.LoginMethod)
	}
}

func TestDecodeRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{nope"},
		{name: "missing name", raw: `{"email":"a@b.co","loginMethod":"email"}`},
		{name: "blank email", raw: `{"name":"A","email":"  ","loginMethod":"email"}`},
		{name: "unknown method", raw: `{"name":"A","email":"a@b.co","loginMethod":"github"}`},
		{name: "missing method", raw: `{"name":"A","email":"a@b.co"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestInitial(t *testing.T) {
	tests := map[string]string{
		"ada":    "A",
		"  zoe ": "Z",
		"élodie": "É",
		"":       "?",
	}
	for name, want := range tests {
		if got := (Session{Name: name}).Initial(); got != want {
			t.Fatalf("Initial(%q) = %q, want %q", name, got, want)
		}
	}
}
