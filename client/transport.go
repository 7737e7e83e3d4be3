package client

import (
	"net"
	"time"

	"github.com/stratadb/strata-go/internal/proto/frame"
)

// Transport carries framed requests and responses over one established
// connection. frame.Conn is the production implementation.
type Transport interface {
	WriteFrame(id uint32, payload []byte) error

	// ReadFrame blocks up to timeout for the next frame. A clean timeout
	// is reported as frame.ErrTimeout; anything else is a hard I/O
	// failure.
	ReadFrame(timeout time.Duration) (id uint32, payload []byte, err error)

	IsValid() bool
	Close() error
}

func dialTCP(addr string, conf Config) (Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, conf.DialTimeout)
	if err != nil {
		return nil, err
	}
	return frame.Open(conn, conf.ReadBufferSize, conf.WriteTimeout), nil
}
