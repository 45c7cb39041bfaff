package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/philipp01105/syslogconsole/chunker"
	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/fingerprint"
	"github.com/philipp01105/syslogconsole/formatter"
	"github.com/philipp01105/syslogconsole/handler"
	"github.com/philipp01105/syslogconsole/metric"
	"github.com/philipp01105/syslogconsole/normalizer"
)

// DefaultAction is the action used by Message until SetAction is called
const DefaultAction = "syslog"

// Diagnostic contexts passed to the Reporter
const (
	ContextNormalize = "normalize"
	ContextSerialize = "serialize"
	ContextChunk     = "chunk"
	ContextTTY       = "tty"
)

// Logger turns structured messages into framed fragments and hands
// them to a Handler. It is safe for concurrent use.
type Logger struct {
	domain      string
	facility    core.Facility
	handler     handler.Handler
	reporter    diag.Reporter
	metrics     *metric.Metrics
	json        *formatter.JSONFormatter
	text        *formatter.TextFormatter
	run         *fingerprint.RunState
	maxFragment int
	errorCheck  core.Severity
	now         func() time.Time

	mu      sync.RWMutex
	action  string
	paused  bool
	tty     bool
	console io.Writer
	persist []core.Field
	hashes  hashes

	timerMu sync.Mutex
	starts  map[string]time.Time
	process processState

	recordMu  sync.Mutex
	recording bool
	records   map[string][]int64
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	domain      string
	facility    core.Facility
	handler     handler.Handler
	reporter    diag.Reporter
	metrics     *metric.Metrics
	maxFragment int
	errorCheck  core.Severity
	tty         bool
	console     io.Writer
	persist     []core.Field
	now         func() time.Time
	pid         int
}

// NewBuilder creates a builder for a logger tagged with domain
func NewBuilder(domain string) *Builder {
	return &Builder{
		domain:      domain,
		facility:    core.FacilityLocal0,
		maxFragment: chunker.DefaultMaxFragment,
		errorCheck:  core.LevelWarning,
		tty:         true,
		console:     os.Stdout,
		now:         time.Now,
		pid:         os.Getpid(),
	}
}

// WithFacility sets the facility (default: local0)
func (b *Builder) WithFacility(f core.Facility) *Builder {
	b.facility = f
	return b
}

// WithHandler sets the transport
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	b.handler = h
	return b
}

// WithMaxFragment sets the maximum fragment body size in characters.
// Values below 1 restore chunker.DefaultMaxFragment.
func (b *Builder) WithMaxFragment(n int) *Builder {
	if n < 1 {
		n = chunker.DefaultMaxFragment
	}
	b.maxFragment = n
	return b
}

// WithReporter sets the diagnostic channel (default: diag.Default())
func (b *Builder) WithReporter(r diag.Reporter) *Builder {
	b.reporter = r
	return b
}

// WithMetrics enables Prometheus instrumentation
func (b *Builder) WithMetrics(m *metric.Metrics) *Builder {
	b.metrics = m
	return b
}

// WithErrorCheck sets the lowest severity whose messages get their
// error values flattened (default: warning).
func (b *Builder) WithErrorCheck(min core.Severity) *Builder {
	b.errorCheck = min
	return b
}

// WithTTY enables or disables pretty printing to the console
func (b *Builder) WithTTY(enabled bool) *Builder {
	b.tty = enabled
	return b
}

// WithConsole sets the writer used for pretty printing (default:
// os.Stdout). Output only happens when the writer is a terminal.
func (b *Builder) WithConsole(w io.Writer) *Builder {
	b.console = w
	return b
}

// WithPersist adds fields applied to every mapping message that does
// not define them
func (b *Builder) WithPersist(fields ...core.Field) *Builder {
	b.persist = append(b.persist, fields...)
	return b
}

// WithClock replaces time.Now for fingerprints and timers
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithPID overrides the process id mixed into the run fingerprint
func (b *Builder) WithPID(pid int) *Builder {
	b.pid = pid
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	reporter := b.reporter
	if reporter == nil {
		reporter = diag.Default()
	}
	persist := make([]core.Field, len(b.persist))
	copy(persist, b.persist)

	return &Logger{
		domain:      b.domain,
		facility:    b.facility,
		handler:     b.handler,
		reporter:    reporter,
		metrics:     b.metrics,
		json:        formatter.NewJSONFormatter(formatter.Config{}),
		text:        formatter.NewTextFormatter(formatter.Config{Colorize: true}),
		run:         fingerprint.NewRunState(b.domain, b.facility, fingerprint.WithClock(b.now), fingerprint.WithPID(b.pid)),
		maxFragment: b.maxFragment,
		errorCheck:  b.errorCheck,
		now:         b.now,
		action:      DefaultAction,
		tty:         b.tty,
		console:     b.console,
		persist:     persist,
		starts:      make(map[string]time.Time),
		records:     make(map[string][]int64),
	}
}

// Domain returns the domain the logger was built for
func (l *Logger) Domain() string { return l.domain }

// Facility returns the configured facility
func (l *Logger) Facility() core.Facility { return l.facility }

// Send delivers msg at severity. msg may be any value accepted by
// core.FromAny; maps with string keys become mapping messages.
//
// Failures to serialize the message are reported to the diagnostic
// channel and the message is dropped without error. A transport
// failure stops the send and is returned; fragments emitted before it
// are not retracted.
func (l *Logger) Send(severity core.Severity, msg interface{}) error {
	if l.isPaused() {
		l.metrics.ObserveSend(severity, metric.StatusPaused)
		return nil
	}

	fragments, ok := l.prepare(severity, core.FromAny(msg))
	if !ok {
		l.metrics.ObserveSend(severity, metric.StatusAborted)
		return nil
	}
	if l.handler == nil {
		l.metrics.ObserveSend(severity, metric.StatusSent)
		return nil
	}

	for _, f := range fragments {
		if err := l.handler.Emit(severity, chunker.Frame(f)); err != nil {
			l.metrics.ObserveEmitError(severity)
			l.metrics.ObserveSend(severity, metric.StatusFailed)
			return fmt.Errorf("emit fragment %d/%d of %s: %w", f.Index+1, f.Total, f.Digest, err)
		}
	}
	l.metrics.ObserveSend(severity, metric.StatusSent)
	return nil
}

// prepare runs the pipeline up to chunking. It reports false when the
// message was dropped.
func (l *Logger) prepare(severity core.Severity, v core.Value) ([]core.Fragment, bool) {
	if severity.AtLeast(l.errorCheck) {
		var err error
		v, err = normalizer.Normalize(v)
		if err != nil {
			l.reportNormalize(err)
		}
	}

	l.record(v)
	l.printTTY(severity, v)

	if m, ok := v.(*core.Mapping); ok {
		l.applyEnvelope(severity, m)
	}

	payload, err := l.json.Format(v)
	if err != nil {
		l.reporter.ReportInternalError(ContextSerialize, err)
		l.metrics.ObserveAbort(metric.ReasonSerialize)
		return nil, false
	}

	fragments, err := chunker.Split(payload, l.maxFragment)
	if err != nil {
		l.reporter.ReportInternalError(ContextChunk, err)
		l.metrics.ObserveAbort(metric.ReasonChunk)
		return nil, false
	}
	l.metrics.ObservePayload(severity, len(payload), len(fragments))
	return fragments, true
}

// Emergency sends msg at emergency severity
func (l *Logger) Emergency(msg interface{}) error {
	return l.Send(core.LevelEmergency, msg)
}

// Alert sends msg at alert severity
func (l *Logger) Alert(msg interface{}) error {
	return l.Send(core.LevelAlert, msg)
}

// Critical sends msg at critical severity
func (l *Logger) Critical(msg interface{}) error {
	return l.Send(core.LevelCritical, msg)
}

// Error sends msg at error severity
func (l *Logger) Error(msg interface{}) error {
	return l.Send(core.LevelError, msg)
}

// Warning sends msg at warning severity
func (l *Logger) Warning(msg interface{}) error {
	return l.Send(core.LevelWarning, msg)
}

// Warn is an alias for Warning
func (l *Logger) Warn(msg interface{}) error {
	return l.Send(core.LevelWarning, msg)
}

// Notice sends msg at notice severity
func (l *Logger) Notice(msg interface{}) error {
	return l.Send(core.LevelNotice, msg)
}

// Log sends msg at notice severity
func (l *Logger) Log(msg interface{}) error {
	return l.Send(core.LevelNotice, msg)
}

// Info sends msg at info severity
func (l *Logger) Info(msg interface{}) error {
	return l.Send(core.LevelInfo, msg)
}

// Debug sends msg at debug severity
func (l *Logger) Debug(msg interface{}) error {
	return l.Send(core.LevelDebug, msg)
}

// Message sends {action: <action>, message: msg} at debug severity
func (l *Logger) Message(msg interface{}) error {
	m := core.NewMapping()
	m.Set("action", core.String(l.Action()))
	m.Set("message", core.FromAny(msg))
	return l.Send(core.LevelDebug, m)
}

// SetAction sets the action used by Message
func (l *Logger) SetAction(action string) {
	l.mu.Lock()
	l.action = action
	l.mu.Unlock()
}

// Action returns the action used by Message
func (l *Logger) Action() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.action
}

// Pause drops every send while paused is true
func (l *Logger) Pause(paused bool) {
	l.mu.Lock()
	l.paused = paused
	l.mu.Unlock()
}

func (l *Logger) isPaused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused
}

// Persist sets a default field for every later mapping message,
// replacing an earlier value for the same key
func (l *Logger) Persist(key string, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := core.FromAny(value)
	// Sends read a snapshot of the slice without the lock, so it is
	// replaced rather than written in place.
	next := make([]core.Field, 0, len(l.persist)+1)
	next = append(next, l.persist...)
	for i := range next {
		if next[i].Key == key {
			next[i].Value = v
			l.persist = next
			return
		}
	}
	l.persist = append(next, core.Field{Key: key, Value: v})
}

// Record turns duration recording on or off
func (l *Logger) Record(enabled bool) {
	l.recordMu.Lock()
	l.recording = enabled
	l.recordMu.Unlock()
}

// Records returns a copy of the recorded __ms values keyed by action
func (l *Logger) Records() map[string][]int64 {
	l.recordMu.Lock()
	defer l.recordMu.Unlock()
	out := make(map[string][]int64, len(l.records))
	for action, ms := range l.records {
		out[action] = append([]int64(nil), ms...)
	}
	return out
}

// record keeps __ms of mapping messages that also carry an action
func (l *Logger) record(v core.Value) {
	m, ok := v.(*core.Mapping)
	if !ok {
		return
	}

	l.recordMu.Lock()
	defer l.recordMu.Unlock()
	if !l.recording {
		return
	}
	ms, ok := m.Get("__ms")
	if !ok {
		return
	}
	action, ok := m.Get("action")
	if !ok {
		return
	}
	duration, ok := ms.(*core.Scalar)
	if !ok || duration.Type != core.IntType {
		return
	}
	name := ""
	if s, ok := action.(*core.Scalar); ok {
		name = s.Text()
	}
	l.records[name] = append(l.records[name], duration.Int64)
}

func (l *Logger) reportNormalize(err error) {
	errs := multierr.Errors(err)
	l.metrics.ObserveNormalizeFailures(len(errs))
	for _, e := range errs {
		l.reporter.ReportInternalError(ContextNormalize, e)
	}
}

// Close closes the logger's handler
func (l *Logger) Close() error {
	if l.handler != nil {
		return l.handler.Close()
	}
	return nil
}
