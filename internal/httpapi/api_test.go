package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"ironlog.app/internal/auth"
	"ironlog.app/internal/gym"
	"ironlog.app/internal/store/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	auth    *auth.Service
	gym     *gym.Service
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	store := memory.New()
	issuer, err := auth.NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	authSvc, err := auth.NewService(store, issuer)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}
	if err := authSvc.EnsureBuiltins(context.Background()); err != nil {
		t.Fatalf("EnsureBuiltins: %v", err)
	}
	gymSvc, err := gym.NewService(store)
	if err != nil {
		t.Fatalf("gym.NewService: %v", err)
	}
	if opts.Version == "" {
		opts.Version = "test"
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 1000
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 1000
	}
	api := New(authSvc, gymSvc, ReadyProbe{}, opts)
	return &testEnv{handler: api.Handler(), store: store, auth: authSvc, gym: gymSvc}
}

// registerUser creates an account through the service and returns its
// identity.
func (e *testEnv) registerUser(t *testing.T, username, password string) uuid.UUID {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, password, "Test", "User")
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return user.UUID
}

// login exchanges credentials for a bearer token over HTTP.
func (e *testEnv) login(t *testing.T, username, password string, scopes ...string) string {
	t.Helper()
	// The server issues exactly the requested scopes, so the helper asks
	// for "user" unless the test overrides it.
	if len(scopes) == 0 {
		scopes = []string{"user"}
	}
	body := map[string]any{"username": username, "password": password, "scopes": scopes}
	rr := e.do(t, http.MethodPost, "/v1/users/login", "", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rr.Code, rr.Body.String())
	}
	var token auth.Token
	if err := json.Unmarshal(rr.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %q", token.TokenType)
	}
	return token.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestUnknownRouteRequiresAuth(t *testing.T) {
	env := newTestEnv(t, Options{})
	rr := env.do(t, http.MethodGet, "/v1/nope", "", nil)
	if rr.Code != http.StatusUnauthorized {
		// /v1/nope is not public, so the auth middleware rejects it
		// before routing.
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
