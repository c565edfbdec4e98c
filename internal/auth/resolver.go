package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityFinder loads the sanitized identity for a user id, returning an
// apperr not-found error when the user no longer exists.
type IdentityFinder interface {
	FindIdentity(ctx context.Context, id string) (Identity, error)
}

type Resolver struct {
	tokens TokenVerifier
	users  IdentityFinder
}

func NewResolver(tokens TokenVerifier, users IdentityFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve turns a bearer credential into an identity.
func (r *Resolver) Resolve(ctx context.Context, credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, apperr.Unauthenticated("missing token")
	}

	subject, err := r.tokens.Verify(credential)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Identity{}, apperr.Unauthenticated("token expired")
		}
		return Identity{}, apperr.Unauthenticated("invalid token")
	}

	id, err := r.users.FindIdentity(ctx, subject)
	if err != nil {
		if apperr.IsNotFound(err) {
			return Identity{}, apperr.Unauthenticated("invalid token")
		}
		return Identity{}, err
	}
	return id, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
