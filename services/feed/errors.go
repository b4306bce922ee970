package feed

import "errors"

var (
	// ErrMalformedRecord marks an upstream record missing its id, name, or
	// coordinate. Such records are dropped during normalization and never
	// surface to the client.
	ErrMalformedRecord = errors.New("malformed place record")

	// ErrNoSession means the caller has no active feed session; the client
	// recovers by starting one.
	ErrNoSession = errors.New("no active feed session")

	// errSessionClosed aborts an in-flight fetch cycle after the session was
	// torn down; the response is discarded without mutating state.
	errSessionClosed = errors.New("feed session closed")
)
