package stream

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"kanbanflow/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection attached to the hub. Outbound
// delivery goes through a buffered send channel, which gives each
// subscriber FIFO ordering for a single publisher's messages.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *log.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *log.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

// readPump consumes inbound messages until the connection drops, then
// detaches the client from the hub. Malformed messages are ignored; a bad
// payload must never take the relay down.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Debug("websocket read")
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.logger.WithError(err).Debug("invalid channel message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Event {
	case domain.EventJoinBoard:
		var boardID string
		if err := sonic.Unmarshal(msg.Data, &boardID); err != nil {
			c.logger.WithError(err).Debug("invalid join-board payload")
			return
		}
		c.hub.Join(c, boardID)

	case domain.EventTaskUpdated:
		// Only the board id is extracted for routing; the payload itself
		// is relayed untouched and unvalidated.
		var routing struct {
			BoardID string `json:"boardId"`
		}
		if err := sonic.Unmarshal(msg.Data, &routing); err != nil || routing.BoardID == "" {
			c.logger.Debug("task-updated payload without board id, ignoring")
			return
		}
		c.hub.Relay(routing.BoardID, msg.Data, c)

	default:
		c.logger.WithFields(log.Fields{"event": msg.Event}).Debug("unknown channel event, ignoring")
	}
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
