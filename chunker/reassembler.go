package chunker

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/philipp01105/syslogconsole/fingerprint"
)

// DefaultMaxPending bounds how many incomplete payloads a Reassembler
// keeps before evicting the oldest one
const DefaultMaxPending = 1024

// ErrDigestMismatch is returned when reassembled content does not hash
// to the digest its fragments were tagged with
var ErrDigestMismatch = errors.New("reassembled payload does not match digest")

type partial struct {
	parts []string
	seen  []bool
	have  int
}

// Reassembler collects framed fragments until their payload is
// complete. It is safe for concurrent use.
type Reassembler struct {
	mu         sync.Mutex
	maxPending int
	pending    map[string]*partial
	order      []string
	evicted    uint64
}

// NewReassembler creates a reassembler holding at most maxPending
// incomplete payloads (default: DefaultMaxPending)
func NewReassembler(maxPending int) *Reassembler {
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &Reassembler{
		maxPending: maxPending,
		pending:    make(map[string]*partial),
	}
}

// Add consumes one framed line. It returns the payload and true when
// the line completed one; duplicates of fragments already held are
// ignored.
func (r *Reassembler) Add(line string) (string, bool, error) {
	f, err := Parse(line)
	if err != nil {
		return "", false, err
	}
	if !f.Multipart() {
		return f.Content, true, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[f.Digest]
	if !ok {
		p = &partial{parts: make([]string, f.Total), seen: make([]bool, f.Total)}
		r.pending[f.Digest] = p
		r.order = append(r.order, f.Digest)
		r.evict()
	}
	if len(p.parts) != f.Total {
		return "", false, fmt.Errorf("%w: digest %s announced %d fragments, then %d",
			ErrMalformedPrefix, f.Digest, len(p.parts), f.Total)
	}
	if p.seen[f.Index] {
		return "", false, nil
	}
	p.parts[f.Index] = f.Content
	p.seen[f.Index] = true
	p.have++
	if p.have < f.Total {
		return "", false, nil
	}

	r.forget(f.Digest)
	payload := strings.Join(p.parts, "")
	if fingerprint.ContentDigest(payload) != f.Digest {
		return "", false, fmt.Errorf("%w: %s", ErrDigestMismatch, f.Digest)
	}
	return payload, true, nil
}

// Pending returns the number of incomplete payloads held
func (r *Reassembler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Evicted returns how many incomplete payloads were dropped to stay
// within the pending bound
func (r *Reassembler) Evicted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evicted
}

func (r *Reassembler) evict() {
	for len(r.order) > r.maxPending {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.pending, oldest)
		r.evicted++
	}
}

func (r *Reassembler) forget(digest string) {
	delete(r.pending, digest)
	for i, d := range r.order {
		if d == digest {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
