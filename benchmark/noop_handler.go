package benchmark

import (
	"sync/atomic"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
)

// noopHandler counts fragments and bytes without writing anywhere
type noopHandler struct {
	fragments atomic.Uint64
	bytes     atomic.Uint64
}

func newNoopHandler() *noopHandler {
	return &noopHandler{}
}

var _ handler.Handler = (*noopHandler)(nil)

func (h *noopHandler) Emit(_ core.Severity, text string) error {
	h.fragments.Add(1)
	h.bytes.Add(uint64(len(text)))
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}
