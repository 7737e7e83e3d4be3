// Package client implements the strata client protocol engine: it matches
// outbound commands to inbound frames over a single multiplexed connection,
// buffers push notifications received out of band, and reassembles result
// sets that arrive in multiple batches.
//
// A Client is a single logical connection and is not safe for concurrent
// use; callers needing parallelism run one Client per goroutine.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/stratadb/strata-go/internal/proto/envelope"
)

// pushID tags unsolicited frames pushed by the server. Request ids start
// at 1 and skip 0 on wraparound, so the value never collides with a
// command's answer.
const pushID uint32 = 0

// closeCommand is sent best-effort on Disconnect so the server can drop
// session state early.
const closeCommand = "close"

// Client is the protocol engine for one connection to a strata server.
type Client struct {
	conf Config

	tr   Transport
	dial func(addr string, conf Config) (Transport, error)

	reqID   uint32
	env     *envelope.Envelope
	raw     []byte
	colIdx  map[string]int
	cursor  int
	backlog [][]byte
	lastErr error

	metrics *Metrics
	l       *slog.Logger
}

// New creates a disconnected engine. The same engine is reused across many
// commands and reconnects; the request id counter lives for the life of
// the engine and is not reset by Connect.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		dial:   dialTCP,
		cursor: -1,
		l:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.conf.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// Connect opens a connection to host:port, tearing down any prior session
// first. Reports false with ErrInvalidAddress on a malformed address (no
// I/O attempted) or ErrConnection when the dial fails.
func (c *Client) Connect(addr string) bool {
	c.lastErr = nil

	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return c.fail(fmt.Errorf("%w: %q", ErrInvalidAddress, addr))
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return c.fail(fmt.Errorf("%w: port %q", ErrInvalidAddress, port))
	}

	c.Disconnect()

	tr, err := c.dial(addr, c.conf)
	if err != nil {
		return c.fail(fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err))
	}

	c.tr = tr
	c.lastErr = nil
	c.l.Debug("connected", "addr", addr)
	return true
}

// Disconnect sends a best-effort close notice, clears the push backlog,
// resets session state and closes the transport. Idempotent.
func (c *Client) Disconnect() {
	if c.IsConnected() {
		// the connection is going away regardless
		_ = c.tr.WriteFrame(c.nextID(), []byte(closeCommand))
	}

	c.teardown()
}

// IsConnected reports whether the transport is currently usable. A hard
// disconnect flips this to false even without an explicit Disconnect.
func (c *Client) IsConnected() bool {
	return c.tr != nil && c.tr.IsValid()
}

// OK reports whether the last operation succeeded.
func (c *Client) OK() bool {
	return c.lastErr == nil
}

// Failed reports whether the last operation failed.
func (c *Client) Failed() bool {
	return c.lastErr != nil
}

// Err is the text of the last failure, empty when the last operation
// succeeded.
func (c *Client) Err() string {
	if c.lastErr == nil {
		return ""
	}
	return c.lastErr.Error()
}

// LastError exposes the last failure for errors.Is matching against the
// package sentinels. Nil when the last operation succeeded.
func (c *Client) LastError() error {
	return c.lastErr
}

// nextID assigns the next outbound request id. The counter wraps at the
// uint32 width and skips 0, which is reserved for push frames.
func (c *Client) nextID() uint32 {
	c.reqID++
	if c.reqID == pushID {
		c.reqID++
	}
	return c.reqID
}

// teardown is the hard-disconnect path: backlog gone, session reset,
// transport closed. Every operation fails fast afterwards until Connect.
func (c *Client) teardown() {
	c.backlog = nil
	c.resetSession()
	if c.tr != nil {
		_ = c.tr.Close()
		c.tr = nil
	}
}

// resetSession clears the response state of the current command. The push
// backlog survives; only teardown drops it.
func (c *Client) resetSession() {
	c.env = nil
	c.raw = nil
	c.colIdx = nil
	c.cursor = -1
	c.lastErr = nil
}

// accept installs a decoded envelope as the current response: the column
// index is rebuilt and the row cursor moves before the first row.
func (c *Client) accept(env *envelope.Envelope, raw []byte) {
	c.env = env
	c.raw = raw

	c.colIdx = make(map[string]int, len(env.Columns))
	for i, name := range env.Columns {
		c.colIdx[name] = i
	}

	c.cursor = -1
}

// acceptPayload decodes a frame payload and installs it. A payload that
// does not decode, or that carries a non-ok status, fails with ErrServer.
func (c *Client) acceptPayload(payload []byte) bool {
	env, err := envelope.Decode(payload)
	if err != nil {
		return c.fail(fmt.Errorf("%w: %v", ErrServer, err))
	}
	if !env.OK() {
		return c.fail(fmt.Errorf("%w: %s", ErrServer, env.Msg))
	}

	c.accept(env, payload)
	return true
}

func (c *Client) fail(err error) bool {
	c.lastErr = err
	c.metrics.failure(err)
	c.l.Debug("operation failed", "err", err)
	return false
}

func (c *Client) failNotConnected() bool {
	return c.fail(fmt.Errorf("%w: not connected", ErrConnection))
}
