package client

import (
	"errors"
	"fmt"

	"github.com/stratadb/strata-go/internal/proto/frame"
)

// NextRow advances the cursor over the current result set. When the
// current batch is exhausted but more rows remain, the next batch is
// fetched from the server transparently, so the caller iterates one
// forward-only sequence bounded by RowCount regardless of how many frames
// carry it.
//
// A false return means either the set is done (OK still true) or the
// continuation fetch failed (Failed reports why).
func (c *Client) NextRow() bool {
	c.lastErr = nil

	for {
		if c.env == nil || !c.env.HasResultSet() {
			return false
		}

		c.cursor++
		if c.cursor < c.env.BatchLen() {
			return true
		}

		if c.env.Last() {
			c.cursor--
			return false
		}

		if !c.fetchBatch() {
			return false
		}
	}
}

// fetchBatch reads the next continuation frame of the current result set.
// Only the outstanding request id is legal here: the server sends the
// remaining batches of a set back to back on the same id.
func (c *Client) fetchBatch() bool {
	if !c.IsConnected() {
		return c.failNotConnected()
	}

	fid, payload, err := c.tr.ReadFrame(c.conf.CommandTimeout)
	if err != nil {
		if errors.Is(err, frame.ErrTimeout) {
			return c.fail(fmt.Errorf("%w: no batch within %s", ErrReadTimeout, c.conf.CommandTimeout))
		}
		c.teardown()
		return c.fail(fmt.Errorf("%w: read: %v", ErrTransport, err))
	}

	if fid != c.reqID {
		c.teardown()
		return c.fail(fmt.Errorf("%w: frame id %d during batch continuation of %d", ErrProtocol, fid, c.reqID))
	}

	if !c.acceptPayload(payload) {
		return false
	}

	c.metrics.batch()
	return true
}

// Value returns the named column's cell in the current row, or "" when the
// cursor is out of range, the column is unknown, or there is no result
// set. Never fails.
func (c *Client) Value(name string) string {
	idx, ok := c.colIdx[name]
	if !ok {
		return ""
	}
	return c.ValueByOrdinal(idx)
}

// ValueByOrdinal returns the i-th cell of the current row, "" when out of
// range on any axis.
func (c *Client) ValueByOrdinal(i int) string {
	if c.env == nil || c.cursor < 0 || c.cursor >= len(c.env.Data) {
		return ""
	}

	row := c.env.Data[c.cursor]
	if i < 0 || i >= len(row) {
		return ""
	}

	return row[i]
}

// HasColumn reports whether the current response carries the named column.
func (c *Client) HasColumn(name string) bool {
	_, ok := c.colIdx[name]
	return ok
}

// ColumnCount is the number of columns in the current response, 0 when
// columns are absent.
func (c *Client) ColumnCount() int {
	if c.env == nil {
		return 0
	}
	return len(c.env.Columns)
}

// Columns lists the current response's column names in display order. The
// returned slice is shared with the engine and must not be modified.
func (c *Client) Columns() []string {
	if c.env == nil {
		return nil
	}
	return c.env.Columns
}

// Action echoes the operation the current response reports on.
func (c *Client) Action() string {
	if c.env == nil {
		return ""
	}
	return c.env.Action
}

// PubSubID is the subscription identifier assigned by a successful
// subscribe command, empty otherwise.
func (c *Client) PubSubID() string {
	if c.env == nil {
		return ""
	}
	return c.env.PubSubID
}

// RowCount is the total number of rows in the full result set, which may
// exceed what the current batch carries.
func (c *Client) RowCount() int {
	if c.env == nil {
		return 0
	}
	return c.env.Rows
}

// RawJSON is the undecoded wire form of the current response.
func (c *Client) RawJSON() string {
	return string(c.raw)
}
