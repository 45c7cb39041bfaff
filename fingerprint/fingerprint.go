package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/philipp01105/syslogconsole/core"
)

// DigestLength is the number of hex characters kept from a hash
const DigestLength = 8

// timestampLayout keeps nanoseconds so that two sessions started in
// the same millisecond still differ.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunState is the per-session correlation state owned by a sender
type RunState struct {
	domain   string
	facility core.Facility
	pid      int
	now      func() time.Time

	mu  sync.RWMutex
	run string

	index atomic.Uint64
}

// Option configures a RunState
type Option func(*RunState)

// WithClock replaces the time source used for the run timestamp
func WithClock(now func() time.Time) Option {
	return func(s *RunState) {
		s.now = now
	}
}

// WithPID replaces the process id mixed into the run fingerprint
func WithPID(pid int) Option {
	return func(s *RunState) {
		s.pid = pid
	}
}

// NewRunState creates the correlation state for one sender
func NewRunState(domain string, facility core.Facility, opts ...Option) *RunState {
	s := &RunState{
		domain:   domain,
		facility: facility,
		pid:      os.Getpid(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunFingerprint returns the cached run fingerprint, computing it on
// the first call after construction or Reset.
func (s *RunState) RunFingerprint() string {
	s.mu.RLock()
	run := s.run
	s.mu.RUnlock()
	if run != "" {
		return run
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == "" {
		s.run = s.compute()
	}
	return s.run
}

// Reset clears the cached run fingerprint so the next call recomputes it
func (s *RunState) Reset() {
	s.mu.Lock()
	s.run = ""
	s.mu.Unlock()
}

// NextIndex returns the next sequence index. The first call returns 1.
func (s *RunState) NextIndex() uint64 {
	return s.index.Add(1)
}

// compute builds "domain-facility-pid-timestamp" and hashes it
func (s *RunState) compute() string {
	parts := []string{
		s.domain,
		strconv.Itoa(int(s.facility)),
		strconv.Itoa(s.pid),
		sanitize(s.now().UTC().Format(timestampLayout)),
	}
	return shortHash(strings.Join(parts, "-"))
}

// sanitize replaces every non-alphanumeric byte with an underscore
func sanitize(s string) string {
	b := []byte(s)
	for i, c := range b {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		b[i] = '_'
	}
	return string(b)
}

// ContentDigest returns the first eight lowercase hex characters of the
// SHA-1 of payload.
func ContentDigest(payload string) string {
	return shortHash(payload)
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:DigestLength]
}
