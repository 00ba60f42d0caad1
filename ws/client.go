package ws

import (
	"log/slog"

	"ged_backend/internal/realtime"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection of one user.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan realtime.Event

	Manager *Manager
}

// readPump drains the connection. The notification stream is one-way; the
// read loop only exists to detect the close.
func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read error", "user_id", c.UserID, "conn_id", c.ID, "err", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	for event := range c.Send {
		if err := c.Conn.WriteJSON(event); err != nil {
			slog.Debug("ws write error", "user_id", c.UserID, "conn_id", c.ID, "err", err)
			break
		}
	}
	c.Conn.Close()
}
