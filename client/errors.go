package client

import "errors"

// Failure sentinels. Every failing operation records one of these (wrapped
// with detail) as the engine's error state; callers match with errors.Is
// via LastError, or read the text via Err.
var (
	// ErrInvalidAddress: malformed host:port. Local validation, no I/O.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrConnection: the transport could not be established, or an
	// operation ran on a disconnected engine.
	ErrConnection = errors.New("connection failed")

	// ErrTransport: write or read I/O failure on an established
	// connection. Escalates to a hard disconnect.
	ErrTransport = errors.New("transport failure")

	// ErrReadTimeout: no response within the command timeout. The
	// connection stays usable.
	ErrReadTimeout = errors.New("read timeout")

	// ErrServer: the envelope decoded with a non-ok status, or did not
	// decode at all. Carries the server's message. The connection stays
	// usable.
	ErrServer = errors.New("server error")

	// ErrProtocol: a frame arrived with a request id greater than any id
	// yet sent. Escalates to a hard disconnect.
	ErrProtocol = errors.New("protocol violation")
)

func errKindLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrReadTimeout):
		return "read_timeout"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	default:
		return "other"
	}
}
