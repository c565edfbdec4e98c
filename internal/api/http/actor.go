package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
)

// ConnectionIDHeader names the realtime connection a mutation came from.
const ConnectionIDHeader = "X-Connection-Id"

// ActorID returns the id of the authenticated caller. When there is none
// it answers 401 and reports false.
func ActorID(c *gin.Context) (string, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		WriteError(c, apperr.Unauthenticated("user not authenticated"))
		return "", false
	}
	return identity.ID, true
}

// ConnectionID returns the X-Connection-Id the client claims. It is only a
// claim: the broadcaster honors it for connections owned by the actor.
func ConnectionID(c *gin.Context) string {
	return c.GetHeader(ConnectionIDHeader)
}
