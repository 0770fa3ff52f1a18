package auth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if !strings.HasPrefix(token, tokenPrefix) || len(token) != len(tokenPrefix)+48 {
		t.Fatalf("unexpected token shape %q", token)
	}
	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyToken(hash, token) {
		t.Fatalf("token does not verify against its own hash")
	}
	if VerifyToken(hash, token+"x") {
		t.Fatalf("wrong token verified")
	}
	if VerifyToken("", token) {
		t.Fatalf("empty hash verified")
	}
}

func TestHashTokenRejectsEmpty(t *testing.T) {
	if _, err := HashToken("  "); err == nil {
		t.Fatalf("expected an error for an empty token")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"Bearer abc":         "abc",
		"bearer  abc ":       "abc",
		"Basic dXNlcjpwdw==": "",
		"Bearer":             "",
	}
	for header, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := BearerToken(r); got != want {
			t.Fatalf("header %q: got %q, want %q", header, got, want)
		}
	}
}
