package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// Client is one live websocket connection for an authenticated user.
// It is the connection handle registered in the presence registry.
type Client struct {
	Username string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. The context is cancelled on
// disconnect and bounds every operation issued over this connection.
func NewClient(hub *Hub, conn *websocket.Conn, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, domain.SendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Context is cancelled when the connection goes away; it bounds every
// operation issued on behalf of this connection.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Enqueue queues msg for delivery without blocking. False means the
// message was dropped because the client's buffer is full.
func (c *Client) Enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// more than once; the read pump observes the closed transport and runs
// the normal disconnect path.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// ReadPump reads operations from the connection and dispatches them to
// the hub. It owns disconnect cleanup: whatever ends the read loop,
// including abnormal transport termination, deregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(domain.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var op domain.Op
		if err := json.Unmarshal(raw, &op); err != nil {
			continue
		}

		c.dispatch(op)
	}
}

func (c *Client) dispatch(op domain.Op) {
	switch op.Type {
	case domain.OpSendMessage:
		var p domain.SendMessagePayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return
		}
		if _, err := c.hub.SendMessage(c.ctx, c, p.Receiver, p.Content); err != nil {
			c.Enqueue(domain.NewEvent(domain.EventError, domain.ErrorPayload{
				Op:     string(op.Type),
				Reason: "message could not be stored",
			}))
		}

	case domain.OpLoadMessages:
		var p domain.LoadMessagesPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return
		}
		if err := c.hub.LoadMessages(c.ctx, c, p.Peer, p.Page); err != nil {
			c.Enqueue(domain.NewEvent(domain.EventError, domain.ErrorPayload{
				Op:     string(op.Type),
				Reason: "history could not be loaded",
			}))
		}

	case domain.OpTyping:
		var p domain.TypingPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return
		}
		c.hub.NotifyTyping(c, p.Recipient)
	}
}

// WritePump pumps queued events to the connection and keeps it alive
// with pings. The send channel is never closed; the pump exits when
// the connection context is cancelled or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush whatever else queued up into the same frame batch
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
