package core

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssueAndVerify(t *testing.T) {
	m := NewTokenManager("unit-test-secret", time.Hour)
	token, err := m.Issue(Identity{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("subject = %q, want alice", subject)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("unit-test-secret", -time.Minute)
	token, err := m.Issue(Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)
	token, err := issuer.Issue(Identity{Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("unit-test-secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Verify(%q): err = %v, want ErrTokenInvalid", tok, err)
		}
	}
}
