package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/wordbomb/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Pings are sent with this period, which must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest inbound message accepted
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection. Its connection ID is also its player
// ID in whatever room it joins.
type Client struct {
	id          model.ConnID
	conn        *websocket.Conn
	send        chan []byte
	typing      *rate.Limiter
	connectedAt time.Time
}

// NewClient wraps an upgraded connection
func NewClient(id model.ConnID, conn *websocket.Conn, typing *rate.Limiter) *Client {
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		typing:      typing,
		connectedAt: time.Now(),
	}
}

// ID returns the connection ID
func (c *Client) ID() model.ConnID {
	return c.id
}

// allowTyping reports whether a typing update fits in the client's budget
func (c *Client) allowTyping() bool {
	return c.typing == nil || c.typing.Allow()
}

// readPump reads messages until the connection fails and hands each one to
// handle. Runs on the handler's goroutine.
func (c *Client) readPump(handle func(data []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		handle(data)
	}
}

// writePump drains the send buffer to the socket and keeps the connection
// alive with pings. It exits when the buffer is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
