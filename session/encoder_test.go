package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/MrEthical07/goGuard/route"
)

func TestParseUserLoginResponse(t *testing.T) {
	raw := `{"user_id":"42","username":"bs.lan","role":"doctor","full_name":"Lan Nguyen","name":"Lan Nguyen","email":"lan@example.com","created_at":"2024-03-01T08:00:00.123456","access_token":"abc"}`

	u, err := ParseUser(raw)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	if u.Role != route.RoleDoctor || u.ID != "42" || u.Username != "bs.lan" || u.Email != "lan@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.CreatedAt != "2024-03-01T08:00:00.123456" {
		t.Fatalf("created_at not preserved: %q", u.CreatedAt)
	}
	if _, ok := u.Extra["access_token"]; !ok {
		t.Fatal("unknown field not preserved")
	}
}

func TestParseUserNumericID(t *testing.T) {
	u, err := ParseUser(`{"user_id":7,"role":"patient"}`)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	if u.ID != "7" {
		t.Fatalf("expected id 7, got %q", u.ID)
	}
}

func TestParseUserKeepsUnknownRole(t *testing.T) {
	u, err := ParseUser(`{"role":"nurse"}`)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	if u.Role != "nurse" {
		t.Fatalf("role rewritten to %q", u.Role)
	}
}

func TestParseUserMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"corrupt json", "{corrupt-json"},
		{"empty", ""},
		{"null", "null"},
		{"string", `"doctor"`},
		{"array", `[{"role":"doctor"}]`},
		{"missing role", `{"username":"x"}`},
		{"blank role", `{"role":"  "}`},
		{"null role", `{"role":null}`},
		{"numeric role", `{"role":1}`},
		{"object email", `{"role":"patient","email":{}}`},
		{"bool id", `{"role":"patient","user_id":true}`},
		{"undefined", "undefined"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseUser(tc.raw); !errors.Is(err, ErrMalformedUser) {
				t.Fatalf("expected ErrMalformedUser, got %v", err)
			}
		})
	}
}

func TestEncodeUserRoundTrip(t *testing.T) {
	in := &User{
		ID:       "42",
		Username: "bs.lan",
		Role:     route.RoleDoctor,
		Email:    "lan@example.com",
		Extra:    map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)},
	}
	raw, err := EncodeUser(in)
	if err != nil {
		t.Fatalf("EncodeUser: %v", err)
	}
	out, err := ParseUser(raw)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	if out.ID != in.ID || out.Role != in.Role || out.Email != in.Email {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if string(out.Extra["theme"]) != `"dark"` {
		t.Fatalf("extra field lost: %v", out.Extra)
	}
}

func TestEncodeUserRequiresRole(t *testing.T) {
	if _, err := EncodeUser(&User{Username: "x"}); !errors.Is(err, ErrMalformedUser) {
		t.Fatalf("expected ErrMalformedUser, got %v", err)
	}
	if _, err := EncodeUser(nil); !errors.Is(err, ErrMalformedUser) {
		t.Fatalf("expected ErrMalformedUser, got %v", err)
	}
}

func TestFromRaw(t *testing.T) {
	if s := FromRaw("t", `{"role":"doctor"}`); !s.Authenticated() || s.Role() != route.RoleDoctor {
		t.Fatalf("expected authenticated doctor, got %+v", s)
	}
	if s := FromRaw("t", "{corrupt-json"); s.Authenticated() || s.User != nil {
		t.Fatalf("corrupt record must not authenticate: %+v", s)
	}
	if s := FromRaw("", `{"role":"doctor"}`); s.Authenticated() {
		t.Fatal("missing token must not authenticate")
	}
	if s := (Session{Token: "t", User: &User{}}); s.Authenticated() || s.Role() != "" {
		t.Fatal("user without role must not authenticate")
	}
}

// FuzzParseUser exercises the user record parser with arbitrary input.
// Goal: no panics; accepted records always carry a role and re-encode.
func FuzzParseUser(f *testing.F) {
	f.Add(`{"user_id":"1","role":"patient"}`)
	f.Add(`{"role":"doctor","extra":[1,2,3]}`)
	f.Add(`{corrupt-json`)
	f.Add(`null`)
	f.Add(``)
	f.Add(`{"role":"","user_id":1.5e3}`)

	f.Fuzz(func(t *testing.T, raw string) {
		u, err := ParseUser(raw)
		if err != nil {
			return
		}
		if u.Role == "" {
			t.Fatalf("accepted record without role: %q", raw)
		}
		if _, err := EncodeUser(u); err != nil {
			t.Fatalf("re-encode failed for %q: %v", raw, err)
		}
	})
}
