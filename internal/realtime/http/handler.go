package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/realtime"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (auth.Identity, error)
}

type Handler struct {
	hub      *realtime.Hub
	resolver IdentityResolver
	joins    realtime.JoinAuthorizer
	upgrader websocket.Upgrader
}

// New builds the websocket endpoint. Browser connections are accepted only
// from allowedOrigin; requests without an Origin header are accepted.
func New(hub *realtime.Hub, resolver IdentityResolver, joins realtime.JoinAuthorizer, allowedOrigin string) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		joins:    joins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || strings.EqualFold(origin, allowedOrigin)
			},
		},
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/ws", h.serveWS)
}

// serveWS authenticates before upgrading, so credential failures are plain
// HTTP errors.
func (h *Handler) serveWS(c *gin.Context) {
	token, ok := auth.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		httpapi.WriteError(c, apperr.Unauthenticated("missing authorization token"))
		return
	}

	identity, err := h.resolver.Resolve(c.Request.Context(), token)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		return
	}
	h.hub.Serve(c.Request.Context(), conn, identity.ID, h.joins)
}
