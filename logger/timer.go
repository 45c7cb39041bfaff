package logger

import (
	"strconv"

	"github.com/philipp01105/syslogconsole/core"
)

// Process status values
const (
	StatusStart = "Start"
	StatusDone  = "Done"
	StatusError = "Error"
)

type processState struct {
	name  string
	extra []core.Field
}

// Time returns the milliseconds elapsed since TimeStart(label), or 0
// when the timer was never started
func (l *Logger) Time(label string) int64 {
	l.timerMu.Lock()
	start, ok := l.starts[label]
	l.timerMu.Unlock()
	if !ok {
		return 0
	}
	return l.now().Sub(start).Milliseconds()
}

// TimeStart starts the timer label. When msg is not nil it is sent at
// severity, tagged with the label: mappings get an action key, scalars
// are prefixed with the label.
func (l *Logger) TimeStart(label string, msg interface{}, severity core.Severity) (string, error) {
	l.timerMu.Lock()
	l.starts[label] = l.now()
	l.timerMu.Unlock()

	if msg == nil {
		return label, nil
	}
	return label, l.Send(severity, tag(label, core.FromAny(msg)))
}

// TimeStop sends msg at severity with the elapsed milliseconds of
// timer label. A nil msg sends an empty mapping. Mappings get __ms and
// action keys; scalars are rendered as "<label> <msg> <n>ms". The
// elapsed time is returned, 0 when the timer was never started.
func (l *Logger) TimeStop(label string, msg interface{}, severity core.Severity) (int64, error) {
	var v core.Value
	if msg == nil {
		v = core.NewMapping()
	} else {
		v = core.FromAny(msg)
	}

	l.timerMu.Lock()
	start, started := l.starts[label]
	l.timerMu.Unlock()

	var duration int64
	if started {
		duration = l.now().Sub(start).Milliseconds()
		switch x := v.(type) {
		case *core.Mapping:
			x.Set("__ms", core.Int(duration))
		case *core.Scalar:
			v = core.String(x.Text() + " " + strconv.FormatInt(duration, 10) + "ms")
		}
	}

	return duration, l.Send(severity, tag(label, v))
}

// tag attaches label to a timer message
func tag(label string, v core.Value) core.Value {
	switch x := v.(type) {
	case *core.Mapping:
		x.Set("action", core.String(label))
	case *core.Scalar:
		return core.String(label + " " + x.Text())
	}
	return v
}

// ProcessStart starts the timer for a unit of work and sends
// {action, __status: "Start"} at notice severity. extra is merged into
// the closing message of ProcessDone and ProcessError.
func (l *Logger) ProcessStart(action string, extra ...core.Field) (string, error) {
	l.timerMu.Lock()
	l.process.name = action
	if len(extra) > 0 {
		l.process.extra = append([]core.Field(nil), extra...)
	}
	l.timerMu.Unlock()

	m := core.NewMapping()
	m.Set("action", core.String(action))
	m.Set("__status", core.String(StatusStart))
	return l.TimeStart(action, m, core.LevelNotice)
}

// ProcessDone closes the current process with status "Done"
func (l *Logger) ProcessDone(m *core.Mapping) (int64, error) {
	return l.processStop(m, StatusDone)
}

// ProcessError closes the current process with status "Error"
func (l *Logger) ProcessError(m *core.Mapping) (int64, error) {
	return l.processStop(m, StatusError)
}

func (l *Logger) processStop(m *core.Mapping, status string) (int64, error) {
	if m == nil {
		m = core.NewMapping()
	}

	l.timerMu.Lock()
	name := l.process.name
	extra := l.process.extra
	l.timerMu.Unlock()

	m.Set("action", core.String(name))
	m.Set("__status", core.String(status))
	m.Set("timers", l.otherTimers(name))
	for _, f := range extra {
		m.Set(f.Key, f.Value)
	}

	return l.TimeStop(name, m, core.LevelNotice)
}

// otherTimers returns the elapsed milliseconds of every running timer
// except skip
func (l *Logger) otherTimers(skip string) *core.Mapping {
	now := l.now()
	timers := core.NewMapping()

	l.timerMu.Lock()
	defer l.timerMu.Unlock()
	for label, start := range l.starts {
		if label == skip {
			continue
		}
		timers.Set(label, core.Int(now.Sub(start).Milliseconds()))
	}
	return timers
}
