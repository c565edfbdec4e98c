package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (auth.Identity, error)
}

// RequireUser validates the bearer token and stores the resolved identity
// in the request context.
func RequireUser(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			httpapi.AbortWithError(c, apperr.Unauthenticated("missing authorization token"))
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			httpapi.AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Set("user_id", identity.ID)

		c.Next()
	}
}
