package handler

import (
	"errors"

	"github.com/philipp01105/syslogconsole/core"
)

// ErrClosed is returned by Emit after Close
var ErrClosed = errors.New("handler closed")

// Handler is the transport boundary. Emit is called once per fragment,
// in fragment order, with the fragment's framed text.
type Handler interface {
	// Emit hands one framed fragment to the transport
	Emit(severity core.Severity, text string) error

	// Close closes the handler and releases resources
	Close() error
}

// StatsProvider is implemented by handlers that count their traffic
type StatsProvider interface {
	Stats() Snapshot
}
