// Package client speaks the flourish protocol over one TCP connection.
// Requests are strictly sequential: one request, then its response.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/flourish/internal/protocol"
)

// ResponseError is a failed response returned by the server.
type ResponseError struct {
	Type protocol.MessageType
	Code protocol.ErrorCode
	Text string
}

func (e *ResponseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s failed: %s", e.Type, e.Code)
	}
	return fmt.Sprintf("%s failed: %s (%s)", e.Type, e.Text, e.Code)
}

// IsCode reports whether err is a ResponseError with the given code.
func IsCode(err error, code protocol.ErrorCode) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Code == code
}

var ErrClosed = errors.New("client is closed")

type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	enc    *protocol.Encoder
	dec    *protocol.Decoder
	closed bool
}

// Dial connects to addr. The dial respects ctx.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		enc:  protocol.NewEncoder(conn, 0),
		dec:  protocol.NewDecoder(conn, 0),
	}
}

// Do sends req and waits for its response. The ctx deadline bounds the
// whole round trip. A transport error leaves the client unusable.
func (c *Client) Do(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	// A zero deadline clears the one left by a previous request.
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetDeadline(time.Now()) })
	defer stop()

	if err := c.enc.Encode(req); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("send %s: %w", req.Type, err)
	}
	resp, err := c.dec.Decode()
	if err != nil {
		c.closeLocked()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("receive %s: %w", req.Type, err)
	}
	return resp, nil
}

// Call is Do that turns failed responses into *ResponseError.
func (c *Client) Call(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, &ResponseError{Type: resp.Type, Code: resp.Error, Text: resp.Text}
	}
	return resp, nil
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
