// Package journaldhandler delivers fragments to the systemd journal
// through its native protocol.
package journaldhandler

import (
	"strconv"
	"sync"

	"github.com/ssgreg/journald"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
)

// Config holds configuration for the journald handler
type Config struct {
	// Identifier is written as SYSLOG_IDENTIFIER, usually the logger domain
	Identifier string
	// Facility is written as SYSLOG_FACILITY
	Facility core.Facility
	// Fields are attached to every journal entry
	Fields map[string]interface{}
}

type sendFunc func(msg string, p journald.Priority, fields map[string]interface{}) error

// JournaldHandler sends each fragment as one journal entry
type JournaldHandler struct {
	send   sendFunc
	fields map[string]interface{}
	stats  *handler.Stats
	mu     sync.RWMutex
	closed bool
}

// New creates a handler writing to the default journal socket
func New(cfg Config) *JournaldHandler {
	return newWithSender(cfg, journald.Send)
}

func newWithSender(cfg Config, send sendFunc) *JournaldHandler {
	fields := make(map[string]interface{}, len(cfg.Fields)+2)
	for k, v := range cfg.Fields {
		fields[k] = v
	}
	if cfg.Identifier != "" {
		fields["SYSLOG_IDENTIFIER"] = cfg.Identifier
	}
	fields["SYSLOG_FACILITY"] = strconv.Itoa(int(cfg.Facility))

	return &JournaldHandler{
		send:   send,
		fields: fields,
		stats:  handler.NewStats(),
	}
}

// priority maps a severity onto the journal priority. Codes line up
// one to one, out-of-range severities become debug.
func priority(s core.Severity) journald.Priority {
	if !s.Valid() {
		return journald.PriorityDebug
	}
	return journald.Priority(s.Code())
}

// Emit sends text as MESSAGE with the matching PRIORITY
func (h *JournaldHandler) Emit(severity core.Severity, text string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return handler.ErrClosed
	}

	if err := h.send(text, priority(severity), h.fields); err != nil {
		h.stats.IncrementFailed()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Stats returns a snapshot of the current statistics
func (h *JournaldHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close marks the handler closed. The journal socket is shared and
// stays open.
func (h *JournaldHandler) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
