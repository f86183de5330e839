// Package auth provides session token issuance/validation and Google
// identity verification.
//
// AUTHENTICATION FLOW:
//  1. The web client signs the user in with Google and receives an ID token.
//  2. It POSTs the ID token to /api/auth/google.
//  3. The server verifies the token against Google's public keys, upserts the
//     user by email, and issues its own signed session token (7-day JWT).
//  4. Later requests carry "Authorization: Bearer <session token>"; the
//     server validates the signature and expiry without any provider call.
//
// The session token is stateless: {userId, email} plus standard claims,
// HMAC-SHA256 signed with a server-held secret. Logout is purely client-side.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionDuration is the fixed validity window of an issued session token.
const SessionDuration = 7 * 24 * time.Hour

const issuer = "family-tree"

// TokenService mints and validates session tokens. It holds the HMAC secret
// used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// SessionClaims is the session token payload. The user id rides in the
// standard "sub" claim; the email is a private claim so the client can show
// who is signed in without another round trip.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given user.
// The token is valid for SessionDuration from now.
func (s *TokenService) Generate(userID, email string) (string, error) {
	return s.GenerateWithDuration(userID, email, SessionDuration)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests to
// produce already-expired tokens; production code always goes through
// Generate.
func (s *TokenService) GenerateWithDuration(userID, email string, d time.Duration) (string, error) {
	now := time.Now()

	c := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// ErrTokenExpired is returned by Validate for structurally valid tokens whose
// expiry has passed, so callers can distinguish "log in again" from tampering.
var ErrTokenExpired = errors.New("auth: token expired")

// Validate parses and verifies a session token string. Returns the embedded
// userID and email if the token is valid.
//
// Checks performed: HS256 signature (WithValidMethods blocks algorithm
// confusion), expiry, issuer, and a non-empty subject.
func (s *TokenService) Validate(tokenStr string) (userID, email string, err error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrTokenExpired
		}
		return "", "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", "", errors.New("auth: token has no subject")
	}

	return c.Subject, c.Email, nil
}
