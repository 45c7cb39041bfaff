package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/philipp01105/syslogconsole/chunker"
	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/formatter"
	"github.com/philipp01105/syslogconsole/handler"
	"github.com/philipp01105/syslogconsole/metric"
	"github.com/philipp01105/syslogconsole/normalizer"
)

var hex8 = regexp.MustCompile(`^[0-9a-f]{8}$`)

type report struct {
	context string
	err     error
}

type recorder struct {
	mu      sync.Mutex
	reports []report
}

func (r *recorder) ReportInternalError(context string, err error) {
	r.mu.Lock()
	r.reports = append(r.reports, report{context, err})
	r.mu.Unlock()
}

// testClock advances by step on every call
type testClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	log   *Logger
	mem   *handler.MemoryHandler
	rep   *recorder
	clock *testClock
}

func newFixture(t *testing.T, configure func(*Builder)) *fixture {
	t.Helper()
	f := &fixture{
		mem:   handler.NewMemoryHandler(),
		rep:   &recorder{},
		clock: &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	b := NewBuilder("billing").
		WithHandler(f.mem).
		WithReporter(f.rep).
		WithTTY(false).
		WithClock(f.clock.now).
		WithPID(4242)
	if configure != nil {
		configure(b)
	}
	f.log = b.Build()
	return f
}

// decode parses the single emitted payload
func (f *fixture) decode(t *testing.T) map[string]interface{} {
	t.Helper()
	texts := f.mem.Texts()
	if len(texts) != 1 {
		t.Fatalf("emitted %d fragments, want 1: %q", len(texts), texts)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(texts[0]), &out); err != nil {
		t.Fatalf("payload %q is not JSON: %v", texts[0], err)
	}
	return out
}

func TestLogger_Envelope(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.log.Error(M{"action": "charge", "amount": 5}); err != nil {
		t.Fatalf("Error() = %v", err)
	}

	got := f.decode(t)
	if got["__s"] != "error" {
		t.Errorf("__s = %v, want error", got["__s"])
	}
	if r, _ := got["__r"].(string); !hex8.MatchString(r) || r != f.log.RequestHash() {
		t.Errorf("__r = %v, want run fingerprint %s", got["__r"], f.log.RequestHash())
	}
	if got["__i"] != float64(1) {
		t.Errorf("__i = %v, want 1", got["__i"])
	}
	for _, key := range []string{KeyParent, KeyThread, KeyUser, KeyBuildType} {
		if _, ok := got[key]; ok {
			t.Errorf("%s present while unset", key)
		}
	}
	if got["action"] != "charge" || got["amount"] != float64(5) {
		t.Errorf("message fields lost: %v", got)
	}
}

func TestLogger_IndexIncrementsPerMapping(t *testing.T) {
	f := newFixture(t, nil)

	f.log.Info(M{"n": 1})
	f.log.Info("scalar")
	f.log.Info(M{"n": 2})

	texts := f.mem.Texts()
	if !strings.Contains(texts[0], `"__i":1`) || !strings.Contains(texts[2], `"__i":2`) {
		t.Errorf("indexes = %q", texts)
	}
}

func TestLogger_EnvelopeNeverOverwrites(t *testing.T) {
	f := newFixture(t, nil)
	f.log.SetParentHash("parent01")

	f.log.Notice(M{"__s": "custom", "__p": "mine", "__i": 99})

	got := f.decode(t)
	if got["__s"] != "custom" || got["__p"] != "mine" || got["__i"] != float64(99) {
		t.Errorf("explicit fields overwritten: %v", got)
	}
}

func TestLogger_DefaultFieldPrecedence(t *testing.T) {
	f := newFixture(t, func(b *Builder) {
		b.WithPersist(String("env", "prod"), String("region", "eu"))
	})

	f.log.Info(M{"env": "staging", "x": 1})

	got := f.decode(t)
	if got["env"] != "staging" {
		t.Errorf("env = %v, want staging", got["env"])
	}
	if got["region"] != "eu" || got["x"] != float64(1) {
		t.Errorf("payload = %v", got)
	}

	f.mem.Reset()
	f.log.Persist("region", "us")
	f.log.Info(M{})
	if got := f.decode(t); got["region"] != "us" || got["env"] != "prod" {
		t.Errorf("after Persist: %v", got)
	}
}

func TestLogger_ScalarMessage(t *testing.T) {
	f := newFixture(t, func(b *Builder) {
		b.WithPersist(String("env", "prod"))
	})

	f.log.Info("hello")
	f.log.Info(42)

	texts := f.mem.Texts()
	want := []string{`hello "hello"`, `42 42`}
	if len(texts) != 2 || texts[0] != want[0] || texts[1] != want[1] {
		t.Errorf("texts = %q, want %q", texts, want)
	}
}

func TestLogger_SingleFragmentHasNoPrefix(t *testing.T) {
	f := newFixture(t, func(b *Builder) { b.WithMaxFragment(4096) })

	f.log.Info(M{"action": "short"})

	texts := f.mem.Texts()
	if len(texts) != 1 || strings.HasPrefix(texts[0], "[[[") {
		t.Errorf("texts = %q", texts)
	}
}

func TestLogger_ChunkingRoundTrip(t *testing.T) {
	f := newFixture(t, func(b *Builder) { b.WithMaxFragment(16) })

	body := strings.Repeat("héllo wörld ", 20)
	if err := f.log.Warning(M{"action": "big", "body": body}); err != nil {
		t.Fatalf("Warning() = %v", err)
	}

	records := f.mem.Records()
	if len(records) < 2 {
		t.Fatalf("emitted %d fragments, want several", len(records))
	}

	r := chunker.NewReassembler(0)
	var payload string
	for i, rec := range records {
		if rec.Severity != core.LevelWarning {
			t.Errorf("fragment %d severity = %v", i, rec.Severity)
		}
		p, done, err := r.Add(rec.Text)
		if err != nil {
			t.Fatalf("Add(%q) = %v", rec.Text, err)
		}
		if done != (i == len(records)-1) {
			t.Fatalf("fragment %d done = %v", i, done)
		}
		payload = p
	}

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("reassembled payload is not JSON: %v", err)
	}
	if got["body"] != body {
		t.Errorf("body mismatch after reassembly")
	}
}

func TestLogger_CycleSafety(t *testing.T) {
	f := newFixture(t, nil)

	m := M{"a": 1}
	m["self"] = m
	if err := f.log.Error(m); err != nil {
		t.Fatalf("Error() = %v", err)
	}

	got := f.decode(t)
	if got["self"] != "[Circular]" {
		t.Errorf("self = %v, want [Circular]", got["self"])
	}
	if len(f.rep.reports) != 0 {
		t.Errorf("cycle produced diagnostics: %+v", f.rep.reports)
	}
}

func TestLogger_ErrorFlattening(t *testing.T) {
	f := newFixture(t, nil)

	err := core.WithStack(errors.New("boom"))
	f.log.Error(M{"action": "charge", "err": err})

	got := f.decode(t)
	flat, ok := got["err"].(map[string]interface{})
	if !ok {
		t.Fatalf("err = %v, want mapping", got["err"])
	}
	if flat["message"] != "boom" {
		t.Errorf("message = %v, want boom", flat["message"])
	}
	if stack, ok := flat["stack"].([]interface{}); !ok || len(stack) == 0 {
		t.Errorf("stack = %v, want lines", flat["stack"])
	}
}

func TestLogger_ErrorCheckThreshold(t *testing.T) {
	f := newFixture(t, nil)

	f.log.Info(M{"err": errors.New("boom")})
	if got := f.decode(t); got["err"] != "boom" {
		t.Errorf("below threshold err = %v, want plain message", got["err"])
	}

	g := newFixture(t, func(b *Builder) { b.WithErrorCheck(core.LevelDebug) })
	g.log.Debug(M{"err": errors.New("boom")})
	if got := g.decode(t); got["err"] == "boom" {
		t.Errorf("WithErrorCheck(debug) did not flatten: %v", got)
	}
}

func TestLogger_RootErrorIsFlattened(t *testing.T) {
	f := newFixture(t, nil)

	f.log.Error(errors.New("disk full"))

	got := f.decode(t)
	if got["message"] != "disk full" || got["__s"] != "error" {
		t.Errorf("payload = %v", got)
	}
}

type brokenError struct{ msg *string }

func (e *brokenError) Error() string { return *e.msg }

func TestLogger_TraversalFailureIsReported(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.log.Error(M{"bad": &brokenError{}, "ok": errors.New("fine")}); err != nil {
		t.Fatalf("Error() = %v", err)
	}

	var normalize, serialize int
	for _, r := range f.rep.reports {
		switch r.context {
		case ContextNormalize:
			var te *normalizer.TraversalError
			if !errors.As(r.err, &te) || te.Path != "$.bad" {
				t.Errorf("normalize report = %v", r.err)
			}
			normalize++
		case ContextSerialize:
			serialize++
		}
	}
	if normalize != 1 {
		t.Errorf("normalize reports = %d, want 1", normalize)
	}
	// The broken child is left as is and cannot be encoded either
	if serialize != 1 || len(f.mem.Texts()) != 0 {
		t.Errorf("serialize reports = %d, emitted = %d", serialize, len(f.mem.Texts()))
	}
}

func TestLogger_SerializationFailureAbortsSend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)
	f := newFixture(t, func(b *Builder) { b.WithMetrics(m) })

	if err := f.log.Info(M{"ratio": math.NaN()}); err != nil {
		t.Fatalf("Info() = %v, want nil", err)
	}

	if n := len(f.mem.Texts()); n != 0 {
		t.Errorf("emitted %d fragments, want 0", n)
	}
	if len(f.rep.reports) != 1 || f.rep.reports[0].context != ContextSerialize ||
		!errors.Is(f.rep.reports[0].err, formatter.ErrUnsupportedValue) {
		t.Errorf("reports = %+v", f.rep.reports)
	}
	if got := testutil.ToFloat64(m.Aborted.WithLabelValues(metric.ReasonSerialize)); got != 1 {
		t.Errorf("aborted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Sends.WithLabelValues("info", metric.StatusAborted)); got != 1 {
		t.Errorf("aborted sends = %v, want 1", got)
	}
}

func TestLogger_TransportFailureStopsSend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)
	f := newFixture(t, func(b *Builder) {
		b.WithMaxFragment(8).WithMetrics(m)
	})
	errDown := errors.New("transport down")
	f.mem.FailAfter(1, errDown)

	err := f.log.Error(M{"body": strings.Repeat("x", 64)})
	if !errors.Is(err, errDown) {
		t.Fatalf("Error() = %v, want wrapped transport error", err)
	}
	if n := len(f.mem.Texts()); n != 1 {
		t.Errorf("emitted %d fragments before failure, want 1", n)
	}
	if got := testutil.ToFloat64(m.EmitErrors.WithLabelValues("error")); got != 1 {
		t.Errorf("emit errors = %v, want 1", got)
	}
}

func TestLogger_RunFingerprint(t *testing.T) {
	f := newFixture(t, func(b *Builder) {})
	f.clock.step = time.Millisecond

	f.log.Info(M{"n": 1})
	f.log.Info(M{"n": 2})
	texts := f.mem.Texts()

	first := f.log.RequestHash()
	for _, text := range texts {
		if !strings.Contains(text, `"__r":"`+first+`"`) {
			t.Errorf("%q does not carry run fingerprint %s", text, first)
		}
	}

	f.log.ResetRequestHash()
	if second := f.log.RequestHash(); second == first || !hex8.MatchString(second) {
		t.Errorf("after reset = %q, first = %q", second, first)
	}
}

func TestLogger_Hashes(t *testing.T) {
	f := newFixture(t, nil)
	f.log.SetParentHash("p1")
	f.log.SetThreadHash("t1")
	f.log.SetUserID(77)
	f.log.SetBuildType("canary")

	f.log.Info(M{})
	got := f.decode(t)
	if got["__p"] != "p1" || got["__t"] != "t1" || got["__u"] != float64(77) || got["buildType"] != "canary" {
		t.Errorf("payload = %v", got)
	}

	inbound := core.FromAny(M{"__t": "t2", "__p": "p2", "__u": "u2", "buildType": "prod", "keep": true}).(*core.Mapping)
	f.log.SetHashes(inbound, true)
	if f.log.ThreadHash() != "t2" || f.log.ParentHash() != "p2" || f.log.BuildType() != "prod" {
		t.Errorf("hashes = %q %q %q", f.log.ThreadHash(), f.log.ParentHash(), f.log.BuildType())
	}
	if u, ok := f.log.UserID().(*core.Scalar); !ok || u.Text() != "u2" {
		t.Errorf("UserID = %v", f.log.UserID())
	}
	if keys := inbound.Keys(); len(keys) != 1 || keys[0] != "keep" {
		t.Errorf("remaining keys = %v", keys)
	}

	f.log.SetHashes(core.FromAny(M{"__t": ""}).(*core.Mapping), false)
	if f.log.ThreadHash() != "t2" {
		t.Errorf("empty __t replaced thread hash")
	}
}

func TestLogger_Pause(t *testing.T) {
	f := newFixture(t, nil)

	f.log.Pause(true)
	f.log.Emergency(M{"dropped": true})
	f.log.Pause(false)
	f.log.Emergency(M{"kept": true})

	if texts := f.mem.Texts(); len(texts) != 1 || !strings.Contains(texts[0], "kept") {
		t.Errorf("texts = %q", texts)
	}
}

func TestLogger_Message(t *testing.T) {
	f := newFixture(t, nil)

	f.log.Message("hello")
	got := f.decode(t)
	if got["action"] != DefaultAction || got["message"] != "hello" || got["__s"] != "debug" {
		t.Errorf("payload = %v", got)
	}

	f.mem.Reset()
	f.log.SetAction("worker")
	f.log.Message(M{"n": 1})
	got = f.decode(t)
	if got["action"] != "worker" {
		t.Errorf("action = %v, want worker", got["action"])
	}
}

func TestLogger_SeverityMethods(t *testing.T) {
	f := newFixture(t, nil)

	calls := []struct {
		fn   func(interface{}) error
		want core.Severity
	}{
		{f.log.Emergency, core.LevelEmergency},
		{f.log.Alert, core.LevelAlert},
		{f.log.Critical, core.LevelCritical},
		{f.log.Error, core.LevelError},
		{f.log.Warning, core.LevelWarning},
		{f.log.Warn, core.LevelWarning},
		{f.log.Notice, core.LevelNotice},
		{f.log.Log, core.LevelNotice},
		{f.log.Info, core.LevelInfo},
		{f.log.Debug, core.LevelDebug},
	}
	for _, c := range calls {
		c.fn("x")
	}

	records := f.mem.Records()
	if len(records) != len(calls) {
		t.Fatalf("emitted %d, want %d", len(records), len(calls))
	}
	for i, c := range calls {
		if records[i].Severity != c.want {
			t.Errorf("call %d severity = %v, want %v", i, records[i].Severity, c.want)
		}
	}
}

func TestLogger_TTY(t *testing.T) {
	orig := isTerminal
	defer func() { isTerminal = orig }()
	isTerminal = func(io.Writer) bool { return true }

	var console bytes.Buffer
	f := newFixture(t, func(b *Builder) {
		b.WithTTY(true).WithConsole(&console)
	})

	f.log.Error(M{"action": "charge", "amount": 5})
	out := console.String()
	if !strings.Contains(out, "error") || !strings.Contains(out, "charge") || !strings.Contains(out, "amount") {
		t.Errorf("console = %q", out)
	}
	if strings.Contains(out, "__s") || strings.Contains(out, "action") {
		t.Errorf("console shows envelope or action key: %q", out)
	}
	if got := f.decode(t); got["action"] != "charge" {
		t.Errorf("action removed from payload: %v", got)
	}

	console.Reset()
	f.log.DisableTTY()
	f.log.Info("quiet")
	if console.Len() != 0 {
		t.Errorf("DisableTTY still printed %q", console.String())
	}
	f.log.EnableTTY()
	f.log.Info("loud")
	if !strings.Contains(console.String(), "loud") {
		t.Errorf("EnableTTY did not print: %q", console.String())
	}
}

func TestLogger_TTYRequiresTerminal(t *testing.T) {
	var console bytes.Buffer
	f := newFixture(t, func(b *Builder) {
		b.WithTTY(true).WithConsole(&console)
	})

	f.log.Info("x")
	if console.Len() != 0 {
		t.Errorf("printed to a non-terminal: %q", console.String())
	}
}

func TestLogger_NilHandler(t *testing.T) {
	log := NewBuilder("svc").WithReporter(diag.Nop()).WithTTY(false).Build()
	if err := log.Info(M{"a": 1}); err != nil {
		t.Errorf("Info() = %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestLogger_ConcurrentIndexesAreUnique(t *testing.T) {
	f := newFixture(t, nil)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				f.log.Info(M{"w": 1})
			}
		}()
	}
	wg.Wait()

	seen := make(map[float64]bool)
	for _, text := range f.mem.Texts() {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			t.Fatal(err)
		}
		i := m["__i"].(float64)
		if seen[i] {
			t.Fatalf("duplicate index %v", i)
		}
		seen[i] = true
	}
	if len(seen) != workers*perWorker {
		t.Errorf("indexes = %d, want %d", len(seen), workers*perWorker)
	}
}

func TestLogger_PersistDuringSend(t *testing.T) {
	f := newFixture(t, func(b *Builder) {
		b.WithPersist(Int("env", -1))
	})

	const n = 2000
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			f.log.Persist("env", i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			f.log.Info(M{"x": i})
		}
	}()
	wg.Wait()

	texts := f.mem.Texts()
	if len(texts) != n {
		t.Fatalf("sent %d messages, want %d", len(texts), n)
	}
	last := float64(-1)
	for _, text := range texts {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			t.Fatal(err)
		}
		env, ok := m["env"].(float64)
		if !ok {
			t.Fatalf("env missing in %s", text)
		}
		if env < last {
			t.Fatalf("env went back from %v to %v", last, env)
		}
		last = env
	}

	f.mem.Reset()
	f.log.Info(M{})
	if got := f.decode(t); got["env"] != float64(n-1) {
		t.Errorf("env = %v, want %d", got["env"], n-1)
	}
}

func BenchmarkLogger_Send(b *testing.B) {
	log := NewBuilder("bench").
		WithHandler(handler.NewMemoryHandler()).
		WithReporter(diag.Nop()).
		WithTTY(false).
		Build()
	msg := M{"action": "bench", "user": 42, "tags": []string{"a", "b"}}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = log.prepare(core.LevelInfo, core.FromAny(msg))
	}
}
