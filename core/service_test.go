package core

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, repo *memUserRepo, username, password string) {
	t.Helper()
	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := repo.Create(context.Background(), username, hash, username+"@example.com", nil); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(t, repo, "alice", "Secret1")
	svc := NewRepositoryAuthService(repo)

	record, err := svc.Authenticate(context.Background(), "alice", "Secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if record.Username != "alice" || record.Email != "alice@example.com" {
		t.Fatalf("record = %+v", record)
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(t, repo, "alice", "Secret1")
	svc := NewRepositoryAuthService(repo)

	cases := []struct{ username, password string }{
		{"alice", "wrong"},
		{"nobody", "Secret1"},
		{"", "Secret1"},
		{"alice", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(context.Background(), tc.username, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Authenticate(%q, %q): err = %v, want ErrInvalidCredentials", tc.username, tc.password, err)
		}
	}
}

func TestAuthenticatePropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewRepositoryAuthService(&flakyUserRepo{memUserRepo: newMemUserRepo(), findErr: storeErr})

	_, err := svc.Authenticate(context.Background(), "alice", "Secret1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want the store error unchanged", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("store failure must not be reported as invalid credentials")
	}
}

func TestDummyLoginHashIsValidBcrypt(t *testing.T) {
	// The absent-user path compares against this hash; a malformed constant
	// would skip the work it is there to do.
	err := bcrypt.CompareHashAndPassword([]byte(dummyLoginHash), []byte("anything"))
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Fatalf("err = %v, want ErrMismatchedHashAndPassword", err)
	}
}

func TestHashPasswordSalts(t *testing.T) {
	h1, err := HashPassword("Secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("Secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical, expected distinct salts")
	}
	for _, h := range []string{h1, h2} {
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Secret1")); err != nil {
			t.Fatalf("hash does not verify: %v", err)
		}
	}
}
