package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc123", "abc123", true},
		{"bearer abc123", "abc123", true},
		{"Bearer  abc123", "abc123", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc123", "", false},
		{"abc123", "", false},
	}
	for _, tc := range cases {
		got, ok := bearerToken(tc.header)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("bearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := serve(env.router, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unknown origin: status = %d, want 403", w.Code)
	}

	// Requests without an Origin header pass through.
	w = serve(env.router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("no origin: status = %d, want 200", w.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	cfg := Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		BcryptCost:     4,
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"https://app.example.com"},
	}
	users := newMemUserRepo()
	movies := newMemMovieRepo()
	actors := newMemActorRepo(movies)
	router := NewRouter(cfg, NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		NewRepositoryAuthService(users), users, movies, actors, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(router, req)
	if w.Code != http.StatusOK {
		t.Fatalf("allowed origin: status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	// Preflight answers without hitting a handler.
	req = httptest.NewRequest(http.MethodOptions, "/movies", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w = serve(router, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: status = %d, want 204", w.Code)
	}
}

func TestAuthRequiredResolvesIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Secret1")
	token := env.login(t, "alice", "Secret1")

	w := env.do(t, http.MethodGet, "/users/alice/movies", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
