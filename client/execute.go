package client

import (
	"errors"
	"fmt"

	"github.com/stratadb/strata-go/internal/proto/frame"
)

// Execute sends a command and blocks until its answer arrives. Frames for
// other request ids encountered on the way are routed: pushes are queued
// for WaitForPush, leftovers of abandoned result sets are discarded, and a
// frame from the future is a fatal protocol violation.
//
// Reports false on failure; OK, Err and LastError describe the reason.
func (c *Client) Execute(command string) bool {
	c.resetSession()

	if !c.IsConnected() {
		return c.failNotConnected()
	}

	id := c.nextID()
	if err := c.tr.WriteFrame(id, []byte(command)); err != nil {
		c.teardown()
		return c.fail(fmt.Errorf("%w: write: %v", ErrTransport, err))
	}

	c.metrics.command()

	return c.awaitResponse(id)
}

// SendOnly writes a command without waiting for its answer. The request id
// is consumed as usual, so whatever the server answers later is absorbed
// as a stale frame by the next Execute. Failed reports whether the write
// went through.
func (c *Client) SendOnly(command string) {
	c.resetSession()

	if !c.IsConnected() {
		c.failNotConnected()
		return
	}

	if err := c.tr.WriteFrame(c.nextID(), []byte(command)); err != nil {
		c.teardown()
		c.fail(fmt.Errorf("%w: write: %v", ErrTransport, err))
		return
	}

	c.metrics.command()
}

func (c *Client) awaitResponse(id uint32) bool {
	for {
		fid, payload, err := c.tr.ReadFrame(c.conf.CommandTimeout)
		if err != nil {
			if errors.Is(err, frame.ErrTimeout) {
				return c.fail(fmt.Errorf("%w: no answer within %s", ErrReadTimeout, c.conf.CommandTimeout))
			}
			c.teardown()
			return c.fail(fmt.Errorf("%w: read: %v", ErrTransport, err))
		}

		if fid == pushID {
			c.backlog = append(c.backlog, payload)
			c.metrics.pushBuffered()
			continue
		}

		// Serial comparison keeps stale/future classification correct
		// across counter wraparound.
		switch delta := int32(fid - id); {
		case delta == 0:
			return c.acceptPayload(payload)
		case delta < 0:
			// leftover batch of a result set the caller stopped iterating
			c.l.Debug("discarding stale frame", "id", fid, "outstanding", id)
		default:
			c.teardown()
			return c.fail(fmt.Errorf("%w: frame id %d ahead of outstanding %d", ErrProtocol, fid, id))
		}
	}
}
