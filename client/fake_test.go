package client

import (
	"errors"
	"testing"
	"time"

	"github.com/stratadb/strata-go/internal/proto/envelope"
	"github.com/stratadb/strata-go/internal/proto/frame"
)

// step scripts one ReadFrame result.
type step struct {
	id      uint32
	payload []byte
	err     error
	sleep   time.Duration
}

type writtenFrame struct {
	id      uint32
	payload string
}

// fakeTransport replays a scripted frame sequence and records every write
// and every requested read timeout. An exhausted script reads as a clean
// timeout.
type fakeTransport struct {
	steps    []step
	waits    []time.Duration
	writes   []writtenFrame
	writeErr error
	valid    bool
	closes   int
}

func newFakeTransport(steps ...step) *fakeTransport {
	return &fakeTransport{steps: steps, valid: true}
}

func (f *fakeTransport) WriteFrame(id uint32, payload []byte) error {
	if f.writeErr != nil {
		f.valid = false
		return f.writeErr
	}
	f.writes = append(f.writes, writtenFrame{id: id, payload: string(payload)})
	return nil
}

func (f *fakeTransport) ReadFrame(timeout time.Duration) (uint32, []byte, error) {
	f.waits = append(f.waits, timeout)

	if len(f.steps) == 0 {
		return 0, nil, frame.ErrTimeout
	}

	s := f.steps[0]
	f.steps = f.steps[1:]

	if s.sleep > 0 {
		time.Sleep(s.sleep)
	}

	if s.err != nil {
		if !errors.Is(s.err, frame.ErrTimeout) {
			f.valid = false
		}
		return 0, nil, s.err
	}

	return s.id, s.payload, nil
}

func (f *fakeTransport) IsValid() bool { return f.valid }

func (f *fakeTransport) Close() error {
	f.closes++
	f.valid = false
	return nil
}

func (f *fakeTransport) reads() int { return len(f.waits) }

func newTestClient(t *testing.T, tr Transport) *Client {
	t.Helper()

	c, err := New()
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.tr = tr
	return c
}

func encode(t *testing.T, e *envelope.Envelope) []byte {
	t.Helper()

	b, err := envelope.Encode(e)
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	return b
}

func okEnv(action string) *envelope.Envelope {
	return &envelope.Envelope{Status: envelope.StatusOK, Action: action}
}

func batchEnv(rows, from, to int, cols []string, data [][]string) *envelope.Envelope {
	return &envelope.Envelope{
		Status:  envelope.StatusOK,
		Action:  "select",
		Rows:    rows,
		FromRow: from,
		ToRow:   to,
		Columns: cols,
		Data:    data,
	}
}
