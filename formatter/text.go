package formatter

import (
	"bytes"
	"strings"

	"github.com/philipp01105/syslogconsole/core"
)

// TextFormatter renders messages for humans watching a terminal:
// "<severity> <action> <value>", where nested containers are expanded
// up to Depth levels.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.CircularMarker == "" {
		cfg.CircularMarker = "[Circular]"
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 4
	}
	return &TextFormatter{Config: cfg}
}

// Format renders v without a severity or action prefix
func (f *TextFormatter) Format(v core.Value) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatValue(v, buf)
	return buf.String(), nil
}

// FormatValue renders v into buf (implements BufferFormatter)
func (f *TextFormatter) FormatValue(v core.Value, buf *bytes.Buffer) error {
	p := textPrinter{cfg: &f.Config, buf: buf, visiting: make(map[core.Value]struct{})}
	p.value(v, 0)
	return nil
}

// FormatLine renders one terminal line for a message
func (f *TextFormatter) FormatLine(severity core.Severity, action string, v core.Value, buf *bytes.Buffer) {
	f.paint(buf, severityColors[severity.Code()&7], severity.String())
	buf.WriteByte(' ')
	buf.WriteString(action)
	buf.WriteByte(' ')
	_ = f.FormatValue(v, buf)
	buf.WriteByte('\n')
}

// pre-computed ANSI colors indexed by syslog code
var severityColors = [8]string{
	"\x1b[1;31m", // emergency
	"\x1b[1;31m", // alert
	"\x1b[31m",   // critical
	"\x1b[31m",   // error
	"\x1b[33m",   // warning
	"\x1b[36m",   // notice
	"\x1b[32m",   // info
	"\x1b[90m",   // debug
}

const (
	colorReset   = "\x1b[0m"
	colorString  = "\x1b[32m"
	colorNumber  = "\x1b[33m"
	colorNull    = "\x1b[1m"
	colorSpecial = "\x1b[36m"
	colorError   = "\x1b[31m"
)

func (f *TextFormatter) paint(buf *bytes.Buffer, color, s string) {
	paint(buf, f.Colorize, color, s)
}

func paint(buf *bytes.Buffer, enabled bool, color, s string) {
	if !enabled {
		buf.WriteString(s)
		return
	}
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}

type textPrinter struct {
	cfg      *Config
	buf      *bytes.Buffer
	visiting map[core.Value]struct{}
}

func (p *textPrinter) value(v core.Value, depth int) {
	switch x := v.(type) {
	case nil:
		paint(p.buf, p.cfg.Colorize, colorNull, "null")
	case *core.Scalar:
		p.scalar(x)
	case *core.ErrorValue:
		msg := safeMessage(x)
		paint(p.buf, p.cfg.Colorize, colorError, "[Error: "+msg+"]")
	case *core.Mapping:
		if p.special(x, depth, "[Object]") {
			return
		}
		if x.Len() == 0 {
			p.buf.WriteString("{}")
			return
		}
		p.visiting[x] = struct{}{}
		defer delete(p.visiting, x)
		p.buf.WriteString("{ ")
		for i, key := range x.Keys() {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(key)
			p.buf.WriteString(": ")
			child, _ := x.Get(key)
			p.value(child, depth+1)
		}
		p.buf.WriteString(" }")
	case *core.Sequence:
		if p.special(x, depth, "[Array]") {
			return
		}
		if x.Len() == 0 {
			p.buf.WriteString("[]")
			return
		}
		p.visiting[x] = struct{}{}
		defer delete(p.visiting, x)
		p.buf.WriteString("[ ")
		for i := 0; i < x.Len(); i++ {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.value(x.At(i), depth+1)
		}
		p.buf.WriteString(" ]")
	}
}

// special handles cycles and the depth limit for containers
func (p *textPrinter) special(v core.Value, depth int, collapsed string) bool {
	if _, busy := p.visiting[v]; busy {
		paint(p.buf, p.cfg.Colorize, colorSpecial, p.cfg.CircularMarker)
		return true
	}
	if depth > p.cfg.Depth {
		paint(p.buf, p.cfg.Colorize, colorSpecial, collapsed)
		return true
	}
	return false
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func (p *textPrinter) scalar(s *core.Scalar) {
	switch s.Type {
	case core.NullType:
		paint(p.buf, p.cfg.Colorize, colorNull, "null")
	case core.StringType:
		paint(p.buf, p.cfg.Colorize, colorString, "'"+quoteReplacer.Replace(s.Str)+"'")
	case core.IntType, core.Float64Type, core.BoolType:
		paint(p.buf, p.cfg.Colorize, colorNumber, s.Text())
	default:
		p.buf.WriteString(s.Text())
	}
}

// safeMessage returns the error text, or a placeholder when reading it
// panics.
func safeMessage(e *core.ErrorValue) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = "<unreadable>"
		}
	}()
	return e.Message()
}
