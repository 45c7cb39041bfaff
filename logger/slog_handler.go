package logger

import (
	"context"
	"log/slog"

	"github.com/philipp01105/syslogconsole/core"
)

// SlogHandler is an adapter that implements slog.Handler on top of a
// Logger. The record message becomes the action and attributes become
// message keys; groups become nested mappings.
type SlogHandler struct {
	logger *Logger
	min    core.Severity
	attrs  []groupedAttr
	groups []string
}

// groupedAttr remembers the groups that were open when an attr was added
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

// NewSlogHandler creates a new slog.Handler adapter. Records below min
// are discarded.
func NewSlogHandler(l *Logger, min core.Severity) *SlogHandler {
	return &SlogHandler{logger: l, min: min}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToSeverity(level).AtLeast(s.min)
}

// Handle converts the record into a mapping message and sends it
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	root := core.NewMapping()
	root.Set("action", core.String(record.Message))

	for _, ga := range s.attrs {
		addAttr(group(root, ga.groups), ga.attr)
	}
	if record.NumAttrs() > 0 {
		target := group(root, s.groups)
		record.Attrs(func(a slog.Attr) bool {
			addAttr(target, a)
			return true
		})
	}

	return s.logger.Send(slogLevelToSeverity(record.Level), root)
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	newAttrs := make([]groupedAttr, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = append(newAttrs, groupedAttr{groups: s.groups, attr: a})
	}
	return &SlogHandler{
		logger: s.logger,
		min:    s.min,
		attrs:  newAttrs,
		groups: s.groups,
	}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newGroups := make([]string, len(s.groups), len(s.groups)+1)
	copy(newGroups, s.groups)
	return &SlogHandler{
		logger: s.logger,
		min:    s.min,
		attrs:  s.attrs,
		groups: append(newGroups, name),
	}
}

// group walks (and creates) the nested mappings named by path
func group(m *core.Mapping, path []string) *core.Mapping {
	for _, name := range path {
		if v, ok := m.Get(name); ok {
			if child, ok := v.(*core.Mapping); ok {
				m = child
				continue
			}
		}
		child := core.NewMapping()
		m.Set(name, child)
		m = child
	}
	return m
}

// slogLevelToSeverity converts a slog.Level to a core.Severity.
func slogLevelToSeverity(level slog.Level) core.Severity {
	switch {
	case level >= slog.LevelError+4:
		return core.LevelCritical
	case level >= slog.LevelError:
		return core.LevelError
	case level >= slog.LevelWarn:
		return core.LevelWarning
	case level >= slog.LevelInfo+2:
		return core.LevelNotice
	case level >= slog.LevelInfo:
		return core.LevelInfo
	default:
		return core.LevelDebug
	}
}

// addAttr stores a into m, expanding groups into nested mappings.
func addAttr(m *core.Mapping, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		// Inline groups without a key, as slog.TextHandler does
		target := m
		if a.Key != "" {
			target = core.NewMapping()
			m.Set(a.Key, target)
		}
		for _, ga := range attrs {
			addAttr(target, ga)
		}
		return
	}

	m.Set(a.Key, slogValue(a.Value))
}

func slogValue(v slog.Value) core.Value {
	switch v.Kind() {
	case slog.KindString:
		return core.String(v.String())
	case slog.KindInt64:
		return core.Int(v.Int64())
	case slog.KindUint64:
		return core.FromAny(v.Uint64())
	case slog.KindFloat64:
		return core.Float(v.Float64())
	case slog.KindBool:
		return core.Bool(v.Bool())
	case slog.KindDuration:
		return core.Int(v.Duration().Milliseconds())
	case slog.KindTime:
		return core.FromAny(v.Time())
	default:
		return core.FromAny(v.Any())
	}
}
