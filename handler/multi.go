package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/syslogconsole/core"
)

// MultiHandler sends every fragment to multiple handlers
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Emit hands the fragment to every handler. A failing handler does not
// stop the others; all failures are combined into the returned error.
func (h *MultiHandler) Emit(severity core.Severity, text string) error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Emit(severity, text))
	}
	return err
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	return err
}
