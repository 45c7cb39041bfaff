package logger

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/philipp01105/syslogconsole/core"
)

// isTerminal is a variable to allow overriding terminal detection in tests
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// EnableTTY turns on pretty printing to the console
func (l *Logger) EnableTTY() {
	l.mu.Lock()
	l.tty = true
	l.mu.Unlock()
}

// DisableTTY turns off pretty printing to the console
func (l *Logger) DisableTTY() {
	l.mu.Lock()
	l.tty = false
	l.mu.Unlock()
}

// printTTY writes "<severity> <action> <value>" for humans watching
// the process. The action key is shown up front and left out of the
// value. Envelope metadata is not attached yet at this point.
func (l *Logger) printTTY(severity core.Severity, v core.Value) {
	l.mu.RLock()
	enabled, w := l.tty, l.console
	l.mu.RUnlock()
	if !enabled || w == nil || !isTerminal(w) {
		return
	}

	action := ""
	if m, ok := v.(*core.Mapping); ok {
		if a, ok := m.Get("action"); ok {
			if s, ok := a.(*core.Scalar); ok {
				action = s.Text()
			}
			v = without(m, "action")
		}
	}

	buf := getLineBuffer()
	defer putLineBuffer(buf)
	l.text.FormatLine(severity, action, v, buf)
	if _, err := w.Write(buf.Bytes()); err != nil {
		l.reporter.ReportInternalError(ContextTTY, err)
	}
}

// without returns a shallow copy of m lacking key
func without(m *core.Mapping, key string) *core.Mapping {
	out := core.NewMapping()
	for _, k := range m.Keys() {
		if k == key {
			continue
		}
		v, _ := m.Get(k)
		out.Set(k, v)
	}
	return out
}

var linePool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

func getLineBuffer() *bytes.Buffer {
	buf := linePool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putLineBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	linePool.Put(buf)
}
