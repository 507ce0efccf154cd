package kiosk

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the display.
	writeWait = 10 * time.Second

	// Send pings to the display with this period.
	pingPeriod = 5 * time.Second

	// Time allowed to read the next pong message from the display.
	pongWait = pingPeriod * 5 / 2

	// Displays only ever send control frames.
	maxMessageSize = 512
)

// displayConn is a middleman between one websocket display and the hub.
type displayConn struct {
	id   string
	conn *websocket.Conn

	// Buffered channel of outbound snapshot messages.
	send chan []byte

	hub    *Hub
	logger *zap.SugaredLogger
}

func newDisplayConn(conn *websocket.Conn, hub *Hub, logger *zap.SugaredLogger) *displayConn {
	return &displayConn{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 64),
		hub:    hub,
		logger: logger,
	}
}

func (c *displayConn) run() {
	go c.writePump()
	go c.readPump()
}

// readPump drains inbound frames. Displays don't speak; this exists to
// process control frames and to notice the close.
func (c *displayConn) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debugf("display id[%v] read error: %v", c.id, err)
			}
			return
		}
	}
}

func (c *displayConn) writePump() {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		pingTicker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				c.logger.Debugf("display id[%v] write error: %v", c.id, err)
				return
			}

		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
