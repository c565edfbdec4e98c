package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// JoinAuthorizer decides whether userID may join the room of projectID.
type JoinAuthorizer interface {
	AuthorizeJoin(ctx context.Context, userID, projectID string) error
}

type JoinFunc func(ctx context.Context, userID, projectID string) error

func (f JoinFunc) AuthorizeJoin(ctx context.Context, userID, projectID string) error {
	return f(ctx, userID, projectID)
}

// Serve runs one websocket connection for userID until either side closes
// it. Rooms are joined only by explicit join frames.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID string, auth JoinAuthorizer) {
	c := NewClient(userID, defaultSendBuffer)
	h.Register(c)
	h.reply(c.ID, frame{Type: "welcome", ConnectionID: c.ID})

	log := logging.FromContext(ctx)
	log.Infof("realtime.connect", "connection_id=%s user_id=%s", c.ID, userID)

	go h.writePump(conn, c)
	h.readPump(ctx, conn, c, auth)

	h.Disconnect(c.ID)
	log.Infof("realtime.disconnect", "connection_id=%s user_id=%s", c.ID, userID)
}

func (h *Hub) readPump(ctx context.Context, conn *websocket.Conn, c *Client, auth JoinAuthorizer) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.FromContext(ctx).Warnf("realtime.read", "connection_id=%s error=%v", c.ID, err)
			}
			return
		}

		var in frame
		if err := json.Unmarshal(data, &in); err != nil {
			h.reply(c.ID, frame{Type: "error", Error: "invalid frame"})
			continue
		}
		h.handle(ctx, c, in, auth)
	}
}

func (h *Hub) handle(ctx context.Context, c *Client, in frame, auth JoinAuthorizer) {
	if in.Project == "" && (in.Type == "join" || in.Type == "leave") {
		h.reply(c.ID, frame{Type: "error", Error: "project is required"})
		return
	}

	switch in.Type {
	case "join":
		if err := auth.AuthorizeJoin(ctx, c.UserID, in.Project); err != nil {
			h.reply(c.ID, frame{Type: "error", Project: in.Project, Error: apperr.Message(err)})
			return
		}
		if err := h.Join(c.ID, in.Project); err != nil {
			return
		}
		h.reply(c.ID, frame{Type: "joined", Project: in.Project})
	case "leave":
		h.Leave(c.ID, in.Project)
		h.reply(c.ID, frame{Type: "left", Project: in.Project})
	default:
		h.reply(c.ID, frame{Type: "error", Error: "unknown frame type"})
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
