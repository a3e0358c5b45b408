package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	pongTimeout  = 90 * time.Second
	sendBuffer   = 128
)

var errClientClosed = errors.New("client connection closed")

// Client wraps one websocket connection. All outbound traffic goes through a
// buffered channel drained by a single write loop, so Send is safe from any
// goroutine and a slow reader cannot block a publish: when the buffer fills,
// the connection is dropped instead.
type Client struct {
	ID           string
	UserID       uint
	SupportsGzip bool

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(userID uint, conn *websocket.Conn, supportsGzip bool) *Client {
	return &Client{
		ID:           uuid.NewString(),
		UserID:       userID,
		SupportsGzip: supportsGzip,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
	}
}

// Start launches the write loop and arms the pong deadline. Call exactly once.
func (c *Client) Start() {
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	go c.writeLoop()
}

// Send enqueues a payload for delivery. Returns an error if the client is
// closed or its buffer is full; in the latter case the connection is torn down
// to keep backpressure bounded.
func (c *Client) Send(payload []byte) error {
	// Checked on its own first: a combined select would pick pseudorandomly
	// between a closed done channel and a free buffer slot, letting payloads
	// slip into a dead buffer.
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case <-c.done:
		return errClientClosed
	case c.send <- payload:
		return nil
	default:
		c.Close()
		return errors.New("client send buffer full")
	}
}

// Close stops the write loop and closes the underlying socket. Idempotent.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn == nil {
			return
		}
		deadline := time.Now().Add(writeWait)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), deadline)
		_ = c.conn.Close()
	})
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.write(payload); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Client) write(payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	// Large frames go out gzip-wrapped as binary when the client negotiated it.
	if c.SupportsGzip && len(payload) > gzipThreshold {
		if compressed, err := CompressPayload(payload); err == nil && len(compressed) < len(payload) {
			return c.conn.WriteMessage(websocket.BinaryMessage, compressed)
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
