package websocket

import (
	"github.com/gorilla/websocket"

	"rentline/pkg/logger"
)

// Client represents one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ReadPump reads control frames from the connection until it closes, then
// unregisters the client.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket: read error for %s: %v", c.UserID, err)
			}
			break
		}
		m.HandleClientFrame(c, raw)
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("websocket: write error for %s: %v", c.UserID, err)
			return
		}
	}
}
