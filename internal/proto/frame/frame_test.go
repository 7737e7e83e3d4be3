package frame

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipePair(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return Open(a, 0, time.Second), b
}

func TestWriteReadFrame(t *testing.T) {
	fc, peer := pipePair(t)

	go func() {
		fc.WriteFrame(42, []byte(`{"status":"ok"}`))
	}()

	hdr := make([]byte, HeaderLen)
	_, err := peer.Read(hdr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 42, 0, 0, 0, 15}, hdr)

	payload := make([]byte, 15)
	_, err = peer.Read(payload)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok"}`, string(payload))

	go func() {
		peer.Write(hdr)
		peer.Write(payload)
	}()

	id, got, err := fc.ReadFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), id)
	assert.Equal(t, payload, got)
	assert.True(t, fc.IsValid())
}

func TestReadFrameEmptyPayload(t *testing.T) {
	fc, peer := pipePair(t)

	go func() {
		peer.Write([]byte{0, 0, 0, 7, 0, 0, 0, 0})
	}()

	id, payload, err := fc.ReadFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)
	assert.Empty(t, payload)
}

func TestReadFrameTimeout(t *testing.T) {
	fc, _ := pipePair(t)

	_, _, err := fc.ReadFrame(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)

	// a clean timeout must not invalidate the connection
	assert.True(t, fc.IsValid())
}

func TestReadFrameMidFrameTimeoutIsFatal(t *testing.T) {
	fc, peer := pipePair(t)

	go func() {
		peer.Write([]byte{0, 0, 0}) // partial header, then silence
	}()

	_, _, err := fc.ReadFrame(50 * time.Millisecond)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.False(t, fc.IsValid())
}

func TestReadFramePeerClosed(t *testing.T) {
	fc, peer := pipePair(t)

	peer.Close()

	_, _, err := fc.ReadFrame(time.Second)
	require.Error(t, err)
	assert.False(t, fc.IsValid())
}

func TestReadFrameLengthLimit(t *testing.T) {
	fc, peer := pipePair(t)

	go func() {
		peer.Write([]byte{0, 0, 0, 1, 0xFF, 0xFF, 0xFF, 0xFF})
	}()

	_, _, err := fc.ReadFrame(time.Second)
	require.Error(t, err)
	assert.False(t, fc.IsValid())
}

func TestCloseIdempotent(t *testing.T) {
	fc, _ := pipePair(t)

	require.NoError(t, fc.Close())
	require.NoError(t, fc.Close())
	assert.False(t, fc.IsValid())

	err := fc.WriteFrame(1, []byte("x"))
	assert.ErrorIs(t, err, ErrClosed)

	_, _, err = fc.ReadFrame(time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}
