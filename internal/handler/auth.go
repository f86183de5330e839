package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/service"
)

// AuthHandler exposes the authentication endpoints.
//
//	POST /api/auth/google   → verify a Google ID token, issue a session
//	GET  /api/auth/verify   → resolve the bearer session to a user
//	POST /api/auth/logout   → stateless acknowledgement
//	GET  /auth/google/login    → redirect-flow entry (state cookie)
//	GET  /auth/google/callback → redirect-flow completion
//
// google may be nil when the OAuth client secret is not configured; the
// redirect-flow routes then respond 500 while the token-post flow keeps
// working.
type AuthHandler struct {
	auths  *service.AuthService
	google *auth.GoogleProvider
	logger *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, google *auth.GoogleProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, google: google, logger: logger}
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  model.UserView `json:"user"`
}

// HandleGoogleLogin verifies a posted Google ID token and issues a session.
//
// HTTP: POST /api/auth/google, body {"token": "<google id token>"}
//
// A token Google rejects (malformed, expired, wrong audience, or missing
// the email claim) is the caller's fault and answers 400 with
// error "Invalid token". Missing server configuration answers 500.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid token",
			Message: "request body must be JSON with a token field",
		})
		return
	}

	result, err := h.auths.LoginWithGoogle(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidToken) || errors.Is(err, apperror.ErrValidation) {
			var appErr *apperror.AppError
			message := "the provided token could not be verified"
			if errors.As(err, &appErr) {
				message = appErr.Message
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid token",
				Message: message,
			})
			return
		}
		h.logger.Error("google login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// HandleVerify resolves the Authorization header back to a user.
//
// HTTP: GET /api/auth/verify
//
// 401 for a missing/malformed header or a bad token, 404 when the session is
// valid but the user row no longer exists, 500 when the secret is not
// configured.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	user, err := h.auths.ResolveBearer(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.UserView{"user": user})
}

// HandleLogout acknowledges a logout. Sessions are stateless JWTs, so there
// is nothing to invalidate server-side; the client discards its token.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

const (
	stateCookie   = "oauth_state"
	sessionCookie = "session"
)

// HandleGoogleRedirect starts the server-side OAuth flow for plain browser
// clients: store an anti-CSRF state in a short-lived cookie and send the
// user to Google's consent screen.
//
// HTTP: GET /auth/google/login
func (h *AuthHandler) HandleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apperror.Configuration("Google OAuth credentials are not configured"))
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow: check the state, exchange
// the code for a verified identity, issue the same session a token-post
// login gets, and hand it to the browser as an HttpOnly cookie.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apperror.Configuration("Google OAuth credentials are not configured"))
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "OAuth state is missing or does not match",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "missing_code",
			Message: "authorization code is required",
		})
		return
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid token",
			Message: "the authorization code could not be exchanged",
		})
		return
	}

	result, err := h.auths.LoginWithIdentity(r.Context(), identity)
	if err != nil {
		h.logger.Error("oauth callback: login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
