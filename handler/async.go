package handler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
)

// AsyncConfig holds configuration for an AsyncHandler
type AsyncConfig struct {
	// BufferSize is the size of the queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-severity overflow behavior (default: DefaultSeverityPolicy)
	OverflowPolicy map[core.Severity]OverflowPolicy
	// BlockTimeout is the timeout for the Block policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining the queue on Close (default: 5s)
	DrainTimeout time.Duration
	// Reporter receives errors from the background goroutine (default: diag.Default())
	Reporter diag.Reporter
}

// applyAsyncDefaults fills in zero-value fields with defaults.
func applyAsyncDefaults(cfg *AsyncConfig) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = DefaultSeverityPolicy()
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Reporter == nil {
		cfg.Reporter = diag.Default()
	}
}

type queued struct {
	severity core.Severity
	text     string
}

// AsyncHandler decouples a Logger from a slow transport with a bounded
// queue drained by one background goroutine, which keeps fragments in
// the order they were emitted. A Block timeout writes synchronously only
// after the queued fragments were handed to the transport, or after
// DrainTimeout if the transport is stuck.
type AsyncHandler struct {
	next           Handler
	queue          chan queued
	wg             sync.WaitGroup
	overflowPolicy map[core.Severity]OverflowPolicy
	blockTimeout   time.Duration
	drainTimeout   time.Duration
	reporter       diag.Reporter
	stats          *Stats
	closeOnce      sync.Once
	closed         chan struct{}
	mu             sync.Mutex // serializes synchronous fallback writes
	pending        atomic.Int64
}

// NewAsyncHandler wraps next with a bounded queue
func NewAsyncHandler(next Handler, cfg AsyncConfig) *AsyncHandler {
	applyAsyncDefaults(&cfg)
	h := &AsyncHandler{
		next:           next,
		queue:          make(chan queued, cfg.BufferSize),
		overflowPolicy: cfg.OverflowPolicy,
		blockTimeout:   cfg.BlockTimeout,
		drainTimeout:   cfg.DrainTimeout,
		reporter:       cfg.Reporter,
		stats:          NewStats(),
		closed:         make(chan struct{}),
	}
	h.wg.Add(1)
	go h.process()
	return h
}

// Emit queues the fragment, applying the overflow policy of its
// severity when the queue is full. Transport errors surface through
// the Reporter, not here.
func (h *AsyncHandler) Emit(severity core.Severity, text string) error {
	select {
	case <-h.closed:
		return ErrClosed
	default:
	}

	item := queued{severity: severity, text: text}

	policy, ok := h.overflowPolicy[severity]
	if !ok {
		policy = DropNewest // Default if not specified
	}

	switch policy {
	case Block:
		select {
		case h.queue <- item:
			h.pending.Add(1)
			return nil
		default:
		}
		timer := time.NewTimer(h.blockTimeout)
		defer timer.Stop()
		select {
		case h.queue <- item:
			h.pending.Add(1)
			return nil
		case <-timer.C:
			// Timeout - fall back to a synchronous write behind the queue
			h.stats.IncrementBlocked()
			h.waitIdle()
			return h.write(item)
		case <-h.closed:
			h.waitIdle()
			return h.write(item)
		}

	case DropOldest:
		select {
		case h.queue <- item:
			h.pending.Add(1)
			return nil
		default:
			select {
			case old := <-h.queue:
				h.pending.Add(-1)
				h.stats.IncrementDropped(old.severity)
			default:
			}
			select {
			case h.queue <- item:
				h.pending.Add(1)
			default:
				h.stats.IncrementDropped(severity)
			}
			return nil
		}

	default:
		select {
		case h.queue <- item:
			h.pending.Add(1)
		default:
			h.stats.IncrementDropped(severity)
		}
		return nil
	}
}

func (h *AsyncHandler) write(item queued) error {
	h.mu.Lock()
	err := h.next.Emit(item.severity, item.text)
	h.mu.Unlock()
	if err != nil {
		h.stats.IncrementFailed()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// waitIdle waits until every queued fragment went through the wrapped
// handler, at most DrainTimeout.
func (h *AsyncHandler) waitIdle() {
	deadline := time.Now().Add(h.drainTimeout)
	for h.pending.Load() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

// process drains the queue in the background
func (h *AsyncHandler) process() {
	defer h.wg.Done()

	for {
		select {
		case item := <-h.queue:
			if err := h.write(item); err != nil {
				h.reporter.ReportInternalError("async emit", err)
			}
			h.pending.Add(-1)
		case <-h.closed:
			// Drain remaining fragments with timeout
			deadline := time.After(h.drainTimeout)
			for {
				select {
				case item := <-h.queue:
					if err := h.write(item); err != nil {
						h.reporter.ReportInternalError("async drain", err)
					}
					h.pending.Add(-1)
				case <-deadline:
					return
				default:
					return
				}
			}
		}
	}
}

// Stats returns a snapshot of the current statistics
func (h *AsyncHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}

// Close drains the queue with a timeout and closes the wrapped handler
func (h *AsyncHandler) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.closed)
		h.wg.Wait()
		err = h.next.Close()
	})
	return err
}
