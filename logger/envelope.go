package logger

import (
	"github.com/philipp01105/syslogconsole/core"
)

// Envelope keys attached to mapping messages
const (
	KeySeverity  = "__s"
	KeyRun       = "__r"
	KeyParent    = "__p"
	KeyThread    = "__t"
	KeyUser      = "__u"
	KeyIndex     = "__i"
	KeyBuildType = "buildType"
)

// hashes holds the correlation values carried by every message
type hashes struct {
	parent    string
	thread    string
	user      core.Value
	buildType string
}

// applyEnvelope sets metadata and persisted fields on m. Keys m
// already defines are never overwritten.
func (l *Logger) applyEnvelope(severity core.Severity, m *core.Mapping) {
	l.mu.RLock()
	h := l.hashes
	persist := l.persist
	l.mu.RUnlock()

	m.SetDefault(KeySeverity, core.String(severity.String()))
	m.SetDefault(KeyRun, core.String(l.run.RunFingerprint()))
	if h.parent != "" {
		m.SetDefault(KeyParent, core.String(h.parent))
	}
	if h.thread != "" {
		m.SetDefault(KeyThread, core.String(h.thread))
	}
	if h.user != nil {
		m.SetDefault(KeyUser, h.user)
	}
	m.SetDefault(KeyIndex, core.Int(int64(l.run.NextIndex())))
	if h.buildType != "" {
		m.SetDefault(KeyBuildType, core.String(h.buildType))
	}

	core.ApplyDefaults(m, persist)
}

// RequestHash returns the run fingerprint, computing it on first use
func (l *Logger) RequestHash() string {
	return l.run.RunFingerprint()
}

// ResetRequestHash discards the run fingerprint; the next message
// computes a new one
func (l *Logger) ResetRequestHash() {
	l.run.Reset()
}

// RequestIndex consumes and returns the next sequence index
func (l *Logger) RequestIndex() uint64 {
	return l.run.NextIndex()
}

// SetParentHash sets the hash of the parent process or request
func (l *Logger) SetParentHash(hash string) {
	l.mu.Lock()
	l.hashes.parent = hash
	l.mu.Unlock()
}

// ParentHash returns the parent hash, empty when unset
func (l *Logger) ParentHash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hashes.parent
}

// SetThreadHash sets the hash correlating a chain of related runs
func (l *Logger) SetThreadHash(hash string) {
	l.mu.Lock()
	l.hashes.thread = hash
	l.mu.Unlock()
}

// ThreadHash returns the thread hash, empty when unset
func (l *Logger) ThreadHash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hashes.thread
}

// SetUserID sets the user attached as __u. Pass nil to clear it.
func (l *Logger) SetUserID(id interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == nil {
		l.hashes.user = nil
		return
	}
	l.hashes.user = core.FromAny(id)
}

// UserID returns the user value, nil when unset
func (l *Logger) UserID() core.Value {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hashes.user
}

// SetBuildType sets the build type attached to every message
func (l *Logger) SetBuildType(buildType string) {
	l.mu.Lock()
	l.hashes.buildType = buildType
	l.mu.Unlock()
}

// BuildType returns the build type, empty when unset
func (l *Logger) BuildType() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hashes.buildType
}

// SetHashes adopts __t, __p, __u and buildType from an inbound mapping,
// usually the envelope of the message that triggered this run. Empty
// values are ignored. With remove set the keys are deleted from m.
func (l *Logger) SetHashes(m *core.Mapping, remove bool) {
	if m == nil {
		return
	}

	if s := textOf(m, KeyThread); s != "" {
		l.SetThreadHash(s)
	}
	if s := textOf(m, KeyParent); s != "" {
		l.SetParentHash(s)
	}
	if v, ok := m.Get(KeyUser); ok && !isEmpty(v) {
		l.mu.Lock()
		l.hashes.user = v
		l.mu.Unlock()
	}
	if s := textOf(m, KeyBuildType); s != "" {
		l.SetBuildType(s)
	}

	if remove {
		m.Delete(KeyThread)
		m.Delete(KeyParent)
		m.Delete(KeyUser)
		m.Delete(KeyBuildType)
	}
}

// textOf returns the text of a scalar under key, empty otherwise
func textOf(m *core.Mapping, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, ok := v.(*core.Scalar)
	if !ok || isEmpty(s) {
		return ""
	}
	return s.Text()
}

// isEmpty matches the values a caller would consider unset
func isEmpty(v core.Value) bool {
	s, ok := v.(*core.Scalar)
	if !ok {
		return false
	}
	switch s.Type {
	case core.NullType:
		return true
	case core.StringType:
		return s.Str == ""
	case core.IntType, core.BoolType:
		return s.Int64 == 0
	case core.Float64Type:
		return s.Float64 == 0
	}
	return false
}
