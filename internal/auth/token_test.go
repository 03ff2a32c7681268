package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestStripBearer(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"  abc":        "abc",
		"Bearerabc":    "Bearerabc",
	}
	for in, want := range cases {
		if got := StripBearer(in); got != want {
			t.Errorf("StripBearer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName_Preference(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "u1", "email": "ann@example.com", "name": "Ann"})
	if got := DisplayName(tok); got != "Ann" {
		t.Errorf("expected Ann, got %q", got)
	}
	tok = signed(t, jwt.MapClaims{"sub": "u1", "email": "ann@example.com"})
	if got := DisplayName("Bearer " + tok); got != "ann@example.com" {
		t.Errorf("expected email, got %q", got)
	}
	if got := DisplayName("opaque"); got != "" {
		t.Errorf("expected empty for opaque token, got %q", got)
	}
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"exp": exp.Unix()})
	if got := Expiry(tok); !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
	if !Expiry("opaque").IsZero() {
		t.Error("expected zero expiry for opaque token")
	}
}

func TestPrettyClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "u42"})
	out, err := PrettyClaims(tok)
	if err != nil {
		t.Fatalf("PrettyClaims: %v", err)
	}
	if !strings.Contains(out, `"sub": "u42"`) {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := PrettyClaims("a.b"); !errors.Is(err, ErrOpaqueToken) {
		t.Errorf("expected ErrOpaqueToken, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short"); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Preview("abcdefghijklmnop"); got != "abcdef…mnop" {
		t.Errorf("got %q", got)
	}
}
