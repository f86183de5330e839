package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/repository"
	"github.com/sakif/family-tree/internal/service"
)

// memUserRepo is a minimal in-memory user repository for handler tests.
type memUserRepo struct {
	byEmail map[string]*model.User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*model.User), nextID: 1}
}

func (m *memUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if existing, ok := m.byEmail[user.Email]; ok {
		if user.Name == "" {
			user.Name = existing.Name
		}
		if user.AvatarURL == "" {
			user.AvatarURL = existing.AvatarURL
		}
		if user.GoogleID == "" {
			user.GoogleID = existing.GoogleID
		}
		user.ID = existing.ID
		*existing = *user
		return nil
	}
	user.ID = "user-" + strconv.Itoa(m.nextID)
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.byEmail[user.Email] = &copied
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return u, nil
}

// stubVerifier accepts exactly one raw token string and maps it to a fixed
// identity; anything else fails verification.
type stubVerifier struct {
	accept   string
	identity *auth.Identity
}

func (s *stubVerifier) Verify(ctx context.Context, rawToken string) (*auth.Identity, error) {
	if rawToken != s.accept {
		return nil, errors.New("stub: token rejected")
	}
	if s.identity.Email == "" {
		return nil, errors.New("stub: token has no email claim")
	}
	return s.identity, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestAuthHandler(t *testing.T, users repository.UserRepository, verifier auth.IdentityVerifier) (*AuthHandler, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	svc := service.NewAuthService(users, tokens, verifier, quietLogger())
	return NewAuthHandler(svc, nil, quietLogger()), tokens
}

func postGoogleLogin(h *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, req)
	return rec
}

func TestGoogleLogin_HappyPathThenVerify(t *testing.T) {
	users := newMemUserRepo()
	h, _ := newTestAuthHandler(t, users, &stubVerifier{
		accept: "valid-google-token",
		identity: &auth.Identity{
			Email:   "alice@example.com",
			Name:    "Alice",
			Subject: "sub-1",
		},
	})

	rec := postGoogleLogin(h, `{"token":"valid-google-token"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string         `json:"token"`
		User  model.UserView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	require.NotEmpty(t, resp.User.ID)

	// The issued token must verify back to the same user.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	vrec := httptest.NewRecorder()
	h.HandleVerify(vrec, req)

	require.Equal(t, http.StatusOK, vrec.Code)
	var verifyResp struct {
		User model.UserView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(vrec.Body.Bytes(), &verifyResp))
	assert.Equal(t, resp.User.ID, verifyResp.User.ID)
}

func TestGoogleLogin_RejectedToken(t *testing.T) {
	h, _ := newTestAuthHandler(t, newMemUserRepo(), &stubVerifier{
		accept:   "valid-google-token",
		identity: &auth.Identity{Email: "alice@example.com"},
	})

	rec := postGoogleLogin(h, `{"token":"forged"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid token", resp.Error)
}

func TestGoogleLogin_TokenWithoutEmailClaim(t *testing.T) {
	h, _ := newTestAuthHandler(t, newMemUserRepo(), &stubVerifier{
		accept:   "no-email-token",
		identity: &auth.Identity{Name: "Anonymous"},
	})

	rec := postGoogleLogin(h, `{"token":"no-email-token"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid token", resp.Error)
}

func TestGoogleLogin_MalformedBody(t *testing.T) {
	h, _ := newTestAuthHandler(t, newMemUserRepo(), &stubVerifier{})

	rec := postGoogleLogin(h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleLogin_StoreUnavailable(t *testing.T) {
	// The Unavailable store stands in when no database path is configured;
	// the login must surface a 500, not a panic.
	h, _ := newTestAuthHandler(t, repository.Unavailable{}.Users(), &stubVerifier{
		accept:   "valid-google-token",
		identity: &auth.Identity{Email: "alice@example.com"},
	})

	rec := postGoogleLogin(h, `{"token":"valid-google-token"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGoogleLogin_MissingSecret(t *testing.T) {
	svc := service.NewAuthService(newMemUserRepo(), nil, &stubVerifier{
		accept:   "valid-google-token",
		identity: &auth.Identity{Email: "alice@example.com"},
	}, quietLogger())
	h := NewAuthHandler(svc, nil, quietLogger())

	rec := postGoogleLogin(h, `{"token":"valid-google-token"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVerify_MissingHeader(t *testing.T) {
	h, _ := newTestAuthHandler(t, newMemUserRepo(), &stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerify_ExpiredToken(t *testing.T) {
	users := newMemUserRepo()
	h, tokens := newTestAuthHandler(t, users, &stubVerifier{})

	expired, err := tokens.GenerateWithDuration("user-x", "x@example.com", -time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerify_UserRowGone(t *testing.T) {
	users := newMemUserRepo()
	h, tokens := newTestAuthHandler(t, users, &stubVerifier{})

	// Valid signature, but no such user row.
	orphan, err := tokens.Generate("deleted-user", "gone@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+orphan)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogout(t *testing.T) {
	h, _ := newTestAuthHandler(t, newMemUserRepo(), &stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["success"])
}
