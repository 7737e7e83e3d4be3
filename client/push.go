package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/stratadb/strata-go/internal/proto/frame"
)

// WaitForPush blocks until a push notification is available and installs
// it as the current response, exactly like a command's answer. Pushes
// buffered during earlier commands are delivered first, in receipt order,
// without touching the network.
//
// A non-positive timeout returns false immediately. A genuine timeout
// returns false with OK still true. Frames carrying a non-zero id here are
// continuation batches of result sets the caller abandoned; they are
// dropped and the wait continues. By default each retried read gets the
// full timeout again (see Config.DeadlineWait for the wall-clock variant).
func (c *Client) WaitForPush(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}

	c.resetSession()

	if len(c.backlog) > 0 {
		payload := c.backlog[0]
		c.backlog = c.backlog[1:]
		if !c.acceptPayload(payload) {
			return false
		}
		c.metrics.pushDelivered()
		return true
	}

	if !c.IsConnected() {
		return c.failNotConnected()
	}

	deadline := time.Now().Add(timeout)

	for {
		wait := timeout
		if c.conf.DeadlineWait {
			wait = time.Until(deadline)
			if wait <= 0 {
				return false
			}
		}

		fid, payload, err := c.tr.ReadFrame(wait)
		if err != nil {
			if errors.Is(err, frame.ErrTimeout) {
				return false
			}
			c.teardown()
			return c.fail(fmt.Errorf("%w: read: %v", ErrTransport, err))
		}

		if fid == pushID {
			if !c.acceptPayload(payload) {
				return false
			}
			c.metrics.pushDelivered()
			return true
		}

		c.l.Debug("discarding abandoned batch frame", "id", fid)
	}
}
