package identity

import (
	"net/http/httptest"
	"testing"
)

func TestUserIDHeaderWins(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.Header.Set("User-Id", "user-42")
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := FromRequest(r); got != "user-42" {
		t.Errorf("got %q, want user-42", got)
	}
}

func TestForwardedForFirstHop(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := FromRequest(r); got != "203.0.113.7" {
		t.Errorf("got %q, want 203.0.113.7", got)
	}
}

func TestRemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "192.0.2.9:5412"
	if got := FromRequest(r); got != "192.0.2.9" {
		t.Errorf("got %q, want 192.0.2.9", got)
	}
}

func TestUnknownSentinel(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = ""
	if got := FromRequest(r); got != Unknown {
		t.Errorf("got %q, want %q", got, Unknown)
	}
}

func TestPrefix(t *testing.T) {
	if got := Prefix("abcdefghij", 6); got != "abcdef" {
		t.Errorf("got %q, want abcdef", got)
	}
	if got := Prefix("abc", 6); got != "abc" {
		t.Errorf("got %q, want abc", got)
	}
}
