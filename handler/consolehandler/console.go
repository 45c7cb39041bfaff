package consolehandler

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/handler"
)

// isConcurrentSafeWriter returns true if the writer is known to be safe for
// concurrent Write calls, allowing the handler to skip write-level locking.
func isConcurrentSafeWriter(w io.Writer) bool {
	if w == io.Discard {
		return true
	}
	_, ok := w.(*os.File)
	return ok
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// OmitSeverity drops the "<severity> " prefix in front of each fragment
	OmitSeverity bool
	// Async enables asynchronous writes through handler.AsyncHandler
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-severity overflow behavior (default: handler.DefaultSeverityPolicy)
	OverflowPolicy map[core.Severity]handler.OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
	// Reporter receives async write failures (default: diag.Default())
	Reporter diag.Reporter
	// ConcurrentWriter indicates the Writer supports concurrent Write calls.
	// Automatically detected for io.Discard and *os.File.
	ConcurrentWriter bool
}

// applyConsoleDefaults fills in zero-value fields with defaults.
func applyConsoleDefaults(cfg *ConsoleConfig) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
}

// ConsoleHandler writes one line per fragment: "<severity> <text>\n".
type ConsoleHandler struct {
	writer         io.Writer
	omitSeverity   bool
	concurrentSafe bool
	stats          *handler.Stats
	mu             sync.Mutex // protects buf and, for unsafe writers, writer
	buf            bytes.Buffer
	closeOnce      sync.Once
	closed         chan struct{}
}

// NewConsoleHandler creates a new console handler. When Async is set
// the handler is wrapped in a handler.AsyncHandler.
func NewConsoleHandler(cfg ConsoleConfig) handler.Handler {
	applyConsoleDefaults(&cfg)
	h := &ConsoleHandler{
		writer:         cfg.Writer,
		omitSeverity:   cfg.OmitSeverity,
		concurrentSafe: cfg.ConcurrentWriter || isConcurrentSafeWriter(cfg.Writer),
		stats:          handler.NewStats(),
		closed:         make(chan struct{}),
	}
	h.buf.Grow(256)

	if !cfg.Async {
		return h
	}
	return handler.NewAsyncHandler(h, handler.AsyncConfig{
		BufferSize:     cfg.BufferSize,
		OverflowPolicy: cfg.OverflowPolicy,
		BlockTimeout:   cfg.BlockTimeout,
		DrainTimeout:   cfg.DrainTimeout,
		Reporter:       cfg.Reporter,
	})
}

// Emit writes the fragment as one line
func (h *ConsoleHandler) Emit(severity core.Severity, text string) error {
	select {
	case <-h.closed:
		return handler.ErrClosed
	default:
	}

	h.mu.Lock()
	h.buf.Reset()
	if !h.omitSeverity {
		h.buf.WriteString(severity.String())
		h.buf.WriteByte(' ')
	}
	h.buf.WriteString(text)
	h.buf.WriteByte('\n')

	var err error
	if h.concurrentSafe {
		// Copy out so the write can happen outside the lock
		line := append([]byte(nil), h.buf.Bytes()...)
		h.mu.Unlock()
		_, err = h.writer.Write(line)
	} else {
		_, err = h.writer.Write(h.buf.Bytes())
		h.mu.Unlock()
	}

	if err != nil {
		h.stats.IncrementFailed()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Stats returns a snapshot of the current statistics
func (h *ConsoleHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close closes the handler. The writer is left open.
func (h *ConsoleHandler) Close() error {
	h.closeOnce.Do(func() {
		close(h.closed)
	})
	return nil
}
