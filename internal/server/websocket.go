package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
)

// Message types exchanged with the viewers.
const (
	TypeHello  = "hello"
	TypeFrame  = "frame"
	TypePause  = "pause"
	TypeResume = "resume"
	TypeError  = "error"
)

// Message is the JSON envelope of every websocket message.
// Viewers only send pause and resume, with the boid id.
type Message struct {
	Type     string       `json:"type"`
	ID       string       `json:"id,omitempty"`
	ClientID string       `json:"clientId,omitempty"`
	Canvas   *Canvas      `json:"canvas,omitempty"`
	Boids    []BoidInfo   `json:"boids,omitempty"`
	Frame    *flock.Frame `json:"frame,omitempty"`
	Changed  *bool        `json:"changed,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// BoidInfo carries what does not change between frames.
type BoidInfo struct {
	ID      string   `json:"id"`
	Group   string   `json:"group"`
	Color   string   `json:"color"`
	Radius  float64  `json:"radius"`
	Tooltip []string `json:"tooltip"`
}

func frameMessage(fr flock.Frame) *Message {
	return &Message{Type: TypeFrame, Frame: &fr}
}

// Client is one connected viewer.
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan []byte
	server *FlockServer

	// boids this viewer hovers, released when it goes away; only read pump touches it
	paused map[string]bool

	mu     sync.Mutex
	closed bool
}

func (c *Client) readPump() {
	defer func() {
		c.releaseAll()
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.server.logger.Warnf("websocket error: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendMessage(&Message{Type: TypeError, Error: fmt.Sprintf("invalid message: %v", err)})
			continue
		}
		c.handleMessage(context.Background(), &msg)
	}
}

func (c *Client) handleMessage(ctx context.Context, msg *Message) {
	var (
		changed bool
		err     error
	)
	switch msg.Type {
	case TypePause:
		if c.paused[msg.ID] {
			break
		}
		changed, err = c.server.hold(ctx, msg.ID)
		if err == nil {
			c.paused[msg.ID] = true
		}
	case TypeResume:
		changed, err = c.server.release(ctx, msg.ID, c.paused[msg.ID])
		delete(c.paused, msg.ID)
	default:
		err = fmt.Errorf("unsupported message type %q", msg.Type)
	}

	if err != nil {
		c.sendMessage(&Message{Type: TypeError, ID: msg.ID, Error: err.Error()})
		return
	}
	c.sendMessage(&Message{Type: msg.Type, ID: msg.ID, Changed: &changed})
}

// releaseAll drops the hovers this viewer never ended.
func (c *Client) releaseAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for id := range c.paused {
		if _, err := c.server.release(ctx, id, true); err != nil {
			c.server.logger.Warnf("resume %s after disconnect: %v", id, err)
		}
	}
	clear(c.paused)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.logger.Errorf("error marshaling %s message: %v", msg.Type, err)
		return
	}
	c.send(data)
}

// send never blocks: a viewer too slow to keep up loses frames.
func (c *Client) send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// close stops the write pump once the pending messages are flushed.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
