// Package envelope implements the JSON response envelope of the strata wire
// protocol. Field names are part of the wire contract and must not change.
package envelope

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// StatusOK is the status value of a successful command.
const StatusOK = "ok"

// Envelope is the decoded logical response to one command. Large result
// sets span several envelopes sharing one request id; FromRow/ToRow locate
// this batch within the full set.
type Envelope struct {
	Status   string     `json:"status"`
	Msg      string     `json:"msg"`
	Action   string     `json:"action"`
	PubSubID string     `json:"pubsubid"`
	Rows     int        `json:"rows"`
	FromRow  int        `json:"fromrow"`
	ToRow    int        `json:"torow"`
	Columns  []string   `json:"columns"`
	Data     [][]string `json:"data"`
}

// Decode parses a frame payload into an envelope.
func Decode(payload []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := sonic.Unmarshal(payload, e); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return e, nil
}

// Encode serializes an envelope back to its wire form. The client never
// sends envelopes; this exists for test servers and tooling.
func Encode(e *Envelope) ([]byte, error) {
	b, err := sonic.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, nil
}

// OK reports whether the server accepted the command.
func (e *Envelope) OK() bool {
	return e.Status == StatusOK
}

// HasResultSet reports whether this envelope carries a batch of rows.
// Rows, FromRow and ToRow are all zero when a command produced no result
// set at all.
func (e *Envelope) HasResultSet() bool {
	return e.Rows > 0 && e.FromRow > 0 && e.ToRow > 0
}

// BatchLen is the number of rows carried by this envelope alone.
func (e *Envelope) BatchLen() int {
	if !e.HasResultSet() {
		return 0
	}
	return e.ToRow - e.FromRow + 1
}

// Last reports whether this batch completes the result set.
func (e *Envelope) Last() bool {
	return e.ToRow >= e.Rows
}
