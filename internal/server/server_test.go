package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/config"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.store.Close() })
	return srv
}

func TestHealthz_NoDatabase(t *testing.T) {
	srv := newTestServer(t, &config.Config{Port: 0})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string `json:"status"`
		Database bool   `json:"database"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Database)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, &config.Config{
		Port:      0,
		JWTSecret: "test-secret-at-least-16-chars!!",
	})

	for _, path := range []string{"/api/trees", "/api/trees/1", "/api/members/abc"} {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLoginWithoutConfiguration(t *testing.T) {
	// No verifier, no secret: login must fail server-side, not crash.
	srv := newTestServer(t, &config.Config{Port: 0})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(`{"token":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFullStackCRUDAgainstSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")
	srv := newTestServer(t, &config.Config{
		Port:         0,
		DatabasePath: dbPath,
		JWTSecret:    "test-secret-at-least-16-chars!!",
	})

	// No identity provider is configured, so mint a session token directly
	// with the same secret the server validates against.
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	session, err := tokens.Generate("someone", "someone@example.com")
	require.NoError(t, err)

	// Trees list for a fresh user must be empty but authorized.
	req := httptest.NewRequest(http.MethodGet, "/api/trees", nil)
	req.Header.Set("Authorization", "Bearer "+session)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
