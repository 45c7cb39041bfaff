//go:build !windows && !plan9

package sysloghandler

import (
	"fmt"
	"log/syslog"
	"sync"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
)

// Config holds configuration for the syslog handler
type Config struct {
	// Network is "udp", "tcp", "unix" or empty for the local daemon
	Network string
	// Addr is the remote address, ignored when Network is empty
	Addr string
	// Tag is the syslog identifier, usually the logger domain
	Tag string
	// Facility is used as the default priority facility
	Facility core.Facility
}

// priorityWriter is the subset of *syslog.Writer used by the handler.
type priorityWriter interface {
	Emerg(m string) error
	Alert(m string) error
	Crit(m string) error
	Err(m string) error
	Warning(m string) error
	Notice(m string) error
	Info(m string) error
	Debug(m string) error
	Close() error
}

// SyslogHandler writes each fragment as one syslog message
type SyslogHandler struct {
	w      priorityWriter
	stats  *handler.Stats
	mu     sync.Mutex
	closed bool
}

// New dials the configured syslog endpoint.
func New(cfg Config) (*SyslogHandler, error) {
	priority := syslog.Priority(cfg.Facility.Priority(core.LevelNotice))
	w, err := syslog.Dial(cfg.Network, cfg.Addr, priority, cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("sysloghandler: dial %s %q: %w", cfg.Network, cfg.Addr, err)
	}
	return newWithWriter(w), nil
}

func newWithWriter(w priorityWriter) *SyslogHandler {
	return &SyslogHandler{w: w, stats: handler.NewStats()}
}

// Emit writes text at the priority matching severity. Unknown
// severities go out as debug.
func (h *SyslogHandler) Emit(severity core.Severity, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return handler.ErrClosed
	}

	var err error
	switch severity {
	case core.LevelEmergency:
		err = h.w.Emerg(text)
	case core.LevelAlert:
		err = h.w.Alert(text)
	case core.LevelCritical:
		err = h.w.Crit(text)
	case core.LevelError:
		err = h.w.Err(text)
	case core.LevelWarning:
		err = h.w.Warning(text)
	case core.LevelNotice:
		err = h.w.Notice(text)
	case core.LevelInfo:
		err = h.w.Info(text)
	default:
		err = h.w.Debug(text)
	}

	if err != nil {
		h.stats.IncrementFailed()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Stats returns a snapshot of the current statistics
func (h *SyslogHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close closes the connection to the daemon
func (h *SyslogHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.w.Close()
}
