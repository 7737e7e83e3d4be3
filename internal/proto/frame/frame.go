// Package frame provides length-delimited framing of request/response
// payloads over a single TCP connection. Each frame is a 4-byte big-endian
// request id, a 4-byte big-endian payload length, and the payload.
package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"
)

const (
	// HeaderLen is the fixed frame header size: request id + payload length.
	HeaderLen = 8

	// MaxPayloadLen bounds a single frame payload. A length prefix beyond
	// this is treated as stream corruption rather than a giant allocation.
	MaxPayloadLen = 64 << 20

	DefaultReadBufferSize = 4096
)

var (
	ErrTimeout = errors.New("frame: read timeout")
	ErrClosed  = errors.New("frame: connection closed")
)

// Conn frames payloads over an established network connection. Reads are
// bounded by a per-call deadline. A Conn is not safe for concurrent use.
type Conn struct {
	c            net.Conn
	br           *bufio.Reader
	writeTimeout time.Duration

	hdr [HeaderLen]byte

	broken atomic.Bool
	closed atomic.Bool
}

// Open binds an established connection for framed use.
func Open(c net.Conn, readBufSize int, writeTimeout time.Duration) *Conn {
	if readBufSize <= 0 {
		readBufSize = DefaultReadBufferSize
	}
	return &Conn{
		c:            c,
		br:           bufio.NewReaderSize(c, readBufSize),
		writeTimeout: writeTimeout,
	}
}

// WriteFrame sends one frame carrying the request id and payload.
func (c *Conn) WriteFrame(id uint32, payload []byte) error {
	if !c.IsValid() {
		return ErrClosed
	}

	buf := make([]byte, 0, HeaderLen+len(payload))
	buf = binary.BigEndian.AppendUint32(buf, id)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)

	if c.writeTimeout > 0 {
		if err := c.c.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			c.broken.Store(true)
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := c.c.Write(buf); err != nil {
		c.broken.Store(true)
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// ReadFrame blocks up to timeout for the next frame. A clean timeout (no
// frame bytes arrived at all) returns ErrTimeout and leaves the connection
// usable; a deadline expiring mid-frame desyncs the stream and is a hard
// failure, as is any other I/O error.
func (c *Conn) ReadFrame(timeout time.Duration) (uint32, []byte, error) {
	if !c.IsValid() {
		return 0, nil, ErrClosed
	}

	if err := c.c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		c.broken.Store(true)
		return 0, nil, fmt.Errorf("set read deadline: %w", err)
	}

	n, err := io.ReadFull(c.br, c.hdr[:])
	if err != nil {
		if isTimeout(err) && n == 0 {
			return 0, nil, ErrTimeout
		}
		c.broken.Store(true)
		return 0, nil, fmt.Errorf("read frame header: %w", err)
	}

	id := binary.BigEndian.Uint32(c.hdr[0:4])
	length := binary.BigEndian.Uint32(c.hdr[4:8])
	if length > MaxPayloadLen {
		c.broken.Store(true)
		return 0, nil, fmt.Errorf("frame payload length %d exceeds limit", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.br, payload); err != nil {
		c.broken.Store(true)
		return 0, nil, fmt.Errorf("read frame payload: %w", err)
	}

	return id, payload, nil
}

// IsValid reports whether the underlying connection is still usable.
func (c *Conn) IsValid() bool {
	return !c.closed.Load() && !c.broken.Load()
}

// Close releases the connection. Idempotent.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.c.Close()
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
