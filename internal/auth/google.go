package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Identity is the verified subject extracted from a provider token.
// Email is the only field guaranteed to be present.
type Identity struct {
	Email     string
	Name      string
	AvatarURL string
	Subject   string // provider's stable subject id
}

// IdentityVerifier validates an externally issued identity token and returns
// the verified subject. Implementations hold no local state.
//
// The error contract matters to callers: a failed verification must be
// distinguishable from an infrastructure fault, because the HTTP boundary
// maps the former to 400 and the latter to 500. Implementations return plain
// errors; the service layer wraps them in the apperror taxonomy.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against Google's published
// signing keys. The audience is the OAuth client id the web app uses with
// Google Sign-In; tokens minted for any other client are rejected.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier for tokens issued to clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify checks the token's signature, expiry, issuer, and audience, then
// extracts the profile claims. Key retrieval and caching is handled inside
// the idtoken package.
//
// Fails when the token is malformed, expired, signed by an untrusted issuer,
// or carries no email claim.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("auth: validating Google ID token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("auth: Google token has no email claim")
	}

	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &Identity{
		Email:     email,
		Name:      name,
		AvatarURL: picture,
		Subject:   payload.Subject,
	}, nil
}
