package handler

import (
	"sync"

	"github.com/philipp01105/syslogconsole/core"
)

// Record is one fragment captured by a MemoryHandler
type Record struct {
	Severity core.Severity
	Text     string
}

// MemoryHandler keeps every emitted fragment in memory. It can be told
// to fail after a number of successful emits.
type MemoryHandler struct {
	mu      sync.Mutex
	records []Record
	failAt  int
	failErr error
	closed  bool
}

// NewMemoryHandler creates an empty memory handler
func NewMemoryHandler() *MemoryHandler {
	return &MemoryHandler{failAt: -1}
}

// FailAfter makes every Emit after the first n successful ones return err
func (h *MemoryHandler) FailAfter(n int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failAt = n
	h.failErr = err
}

// Emit implements Handler
func (h *MemoryHandler) Emit(severity core.Severity, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.failAt >= 0 && len(h.records) >= h.failAt {
		return h.failErr
	}
	h.records = append(h.records, Record{Severity: severity, Text: text})
	return nil
}

// Records returns a copy of everything emitted so far
func (h *MemoryHandler) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Texts returns the emitted fragment texts in order
func (h *MemoryHandler) Texts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.records))
	for i, r := range h.records {
		out[i] = r.Text
	}
	return out
}

// Reset forgets all records
func (h *MemoryHandler) Reset() {
	h.mu.Lock()
	h.records = nil
	h.mu.Unlock()
}

// Close implements Handler
func (h *MemoryHandler) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
