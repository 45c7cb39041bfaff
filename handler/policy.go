package handler

import (
	"sync/atomic"

	"github.com/philipp01105/syslogconsole/core"
)

// OverflowPolicy defines how to handle full async queues
type OverflowPolicy int

const (
	// DropNewest drops the newest fragment when queue is full
	DropNewest OverflowPolicy = iota
	// DropOldest drops the oldest queued fragment when queue is full
	DropOldest
	// Block blocks the caller until space is available (with timeout)
	Block
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DefaultSeverityPolicy returns the default severity-based overflow policies
func DefaultSeverityPolicy() map[core.Severity]OverflowPolicy {
	return map[core.Severity]OverflowPolicy{
		core.LevelEmergency: Block,
		core.LevelAlert:     Block,
		core.LevelCritical:  Block,
		core.LevelError:     Block,
		core.LevelWarning:   DropNewest,
		core.LevelNotice:    DropNewest,
		core.LevelInfo:      DropNewest,
		core.LevelDebug:     DropNewest,
	}
}

// Stats tracks handler statistics
type Stats struct {
	// dropped is indexed by syslog code
	dropped [8]atomic.Uint64
	// blocked counts times emitting blocked due to full queue
	blocked atomic.Uint64
	// processed counts fragments handed to the transport
	processed atomic.Uint64
	// failed counts fragments the transport rejected
	failed atomic.Uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementDropped atomically increments the dropped counter for a severity
func (s *Stats) IncrementDropped(severity core.Severity) {
	if severity.Valid() {
		s.dropped[severity].Add(1)
	}
}

// IncrementBlocked atomically increments the blocked counter
func (s *Stats) IncrementBlocked() {
	s.blocked.Add(1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	s.processed.Add(1)
}

// IncrementFailed atomically increments the failed counter
func (s *Stats) IncrementFailed() {
	s.failed.Add(1)
}

// GetDropped returns the dropped count for a severity
func (s *Stats) GetDropped(severity core.Severity) uint64 {
	if !severity.Valid() {
		return 0
	}
	return s.dropped[severity].Load()
}

// GetTotalDropped returns the total dropped across all severities
func (s *Stats) GetTotalDropped() uint64 {
	var total uint64
	for i := range s.dropped {
		total += s.dropped[i].Load()
	}
	return total
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	for i := range s.dropped {
		s.dropped[i].Store(0)
	}
	s.blocked.Store(0)
	s.processed.Store(0)
	s.failed.Store(0)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	DroppedTotal   map[core.Severity]uint64
	BlockedTotal   uint64
	ProcessedTotal uint64
	FailedTotal    uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	dropped := make(map[core.Severity]uint64, len(s.dropped))
	for i := range s.dropped {
		dropped[core.Severity(i)] = s.dropped[i].Load()
	}
	return Snapshot{
		DroppedTotal:   dropped,
		BlockedTotal:   s.blocked.Load(),
		ProcessedTotal: s.processed.Load(),
		FailedTotal:    s.failed.Load(),
	}
}
