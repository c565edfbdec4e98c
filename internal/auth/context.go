package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the resolved actor.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the actor stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.ID != ""
}

// CurrentIdentity reads the actor resolved by the bearer middleware for
// this request. Handlers pass its ID explicitly into service calls.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	return IdentityFrom(c.Request.Context())
}
