// Package service contains the business logic layer: handlers parse HTTP,
// services enforce the rules, repositories talk to the database.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/family-tree/internal/apperror"
	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/model"
	"github.com/sakif/family-tree/internal/repository"
)

// AuthService orchestrates login and session resolution.
//
// Both tokens and verifier may be nil when the corresponding setting
// (JWT_SECRET, GOOGLE_CLIENT_ID) is absent. The service then fails with
// apperror.ErrConfiguration instead of issuing unsigned or unverified
// credentials.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	verifier auth.IdentityVerifier
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	verifier auth.IdentityVerifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
	}
}

// AuthResult bundles the issued session token with the public view of the
// user it belongs to, so the handler can respond in one step.
type AuthResult struct {
	Token string
	User  model.UserView
}

// LoginWithGoogle verifies a Google ID token and issues a session.
//
// FLOW:
//  1. Verify the provider token (signature, expiry, audience, email claim).
//  2. Upsert the user by email: first login creates the row, later logins
//     refresh name/avatar/subject id without overwriting stored values with
//     blanks. A user with no display name gets the local part of their email.
//  3. Re-read the persisted row, so the returned view is the just-written
//     state and not an in-memory guess.
//  4. Mint the 7-day session token bound to the user's internal id.
func (s *AuthService) LoginWithGoogle(ctx context.Context, rawToken string) (*AuthResult, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperror.ValidationFailed("token", "token is required")
	}
	if s.verifier == nil {
		return nil, apperror.Configuration("Google client ID is not configured")
	}
	if s.tokens == nil {
		return nil, apperror.Configuration("session signing secret is not configured")
	}

	identity, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		s.logger.Warn("google token rejected", slog.String("error", err.Error()))
		return nil, apperror.InvalidToken("the provided Google token could not be verified")
	}

	return s.LoginWithIdentity(ctx, identity)
}

// LoginWithIdentity issues a session for an identity that was verified out of
// band; the OAuth redirect callback lands here after exchanging its code.
// Shares the upsert-and-issue path with LoginWithGoogle.
func (s *AuthService) LoginWithIdentity(ctx context.Context, identity *auth.Identity) (*AuthResult, error) {
	if identity == nil || identity.Email == "" {
		return nil, apperror.ValidationFailed("email", "verified identity has no email")
	}
	if s.tokens == nil {
		return nil, apperror.Configuration("session signing secret is not configured")
	}

	user := &model.User{
		Email:     identity.Email,
		Name:      identity.Name,
		GoogleID:  identity.Subject,
		AvatarURL: identity.AvatarURL,
	}
	if user.Name == "" {
		user.Name = emailLocalPart(identity.Email)
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", identity.Email, err)
	}

	persisted, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: reading back user %s: %w", identity.Email, err)
	}

	token, err := s.tokens.Generate(persisted.ID, persisted.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating session for user %s: %w", persisted.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", persisted.ID),
		slog.String("email", persisted.Email),
	)

	return &AuthResult{Token: token, User: persisted.View()}, nil
}

// ResolveBearer validates an Authorization header and resolves it to the
// user it identifies.
//
// Failure modes, in order: header absent or not "Bearer <token>" →
// ErrUnauthenticated (signature verification is never attempted); secret
// unconfigured → ErrConfiguration; bad signature or expired → ErrInvalidToken;
// token valid but user row gone → ErrNotFound (a session can outlive its
// user).
func (s *AuthService) ResolveBearer(ctx context.Context, header string) (model.UserView, error) {
	raw, ok := auth.BearerToken(header)
	if !ok {
		return model.UserView{}, apperror.Unauthenticated("authorization header missing or malformed")
	}
	if s.tokens == nil {
		return model.UserView{}, apperror.Configuration("session signing secret is not configured")
	}

	userID, _, err := s.tokens.Validate(raw)
	if err != nil {
		// An expired session is a normal event for the client (sign in
		// again); anything else about the token is not.
		if errors.Is(err, auth.ErrTokenExpired) {
			return model.UserView{}, apperror.InvalidToken("session expired, sign in again")
		}
		return model.UserView{}, apperror.InvalidToken("session token is invalid")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserView{}, fmt.Errorf("service/auth: resolving user %s: %w", userID, err)
	}

	return user.View(), nil
}

// emailLocalPart returns everything before the "@", used as the default
// display name for users whose provider profile has none.
func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
