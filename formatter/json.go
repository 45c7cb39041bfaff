package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/philipp01105/syslogconsole/core"
)

// JSONFormatter serializes messages for the transport.
//
// A mapping message is encoded as a JSON object with sorted keys. Any
// other root value is logged as its plain text followed by a space and
// its JSON encoding, so "hi" becomes `hi "hi"`. References to a
// container that is already being encoded are replaced by the circular
// marker instead of failing.
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.CircularMarker == "" {
		cfg.CircularMarker = "[Circular]"
	}
	return &JSONFormatter{Config: cfg}
}

// Format serializes v. It never panics; failures are returned.
func (f *JSONFormatter) Format(v core.Value) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := f.FormatValue(v, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatValue serializes v into buf (implements BufferFormatter). On
// error the buffer content is unspecified.
func (f *JSONFormatter) FormatValue(v core.Value, buf *bytes.Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialize: %v", r)
		}
	}()

	enc := jsonEncoder{buf: buf, marker: f.CircularMarker, visiting: make(map[core.Value]struct{})}

	switch root := v.(type) {
	case nil:
		buf.WriteString("null null")
		return nil
	case *core.Mapping, *core.Sequence:
		return enc.encode(root)
	case *core.Scalar:
		// Validate before writing the plain part so a failure leaves
		// nothing behind.
		start := buf.Len()
		buf.WriteString(root.Text())
		buf.WriteByte(' ')
		if err := enc.encode(root); err != nil {
			buf.Truncate(start)
			return err
		}
		return nil
	case *core.ErrorValue:
		buf.WriteString(root.Message())
		buf.WriteByte(' ')
		return enc.encode(root)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

type jsonEncoder struct {
	buf      *bytes.Buffer
	marker   string
	visiting map[core.Value]struct{}
}

func (e *jsonEncoder) encode(v core.Value) error {
	switch x := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case *core.Scalar:
		return e.scalar(x)
	case *core.ErrorValue:
		e.buf.WriteByte('"')
		appendJSONString(e.buf, x.Message())
		e.buf.WriteByte('"')
	case *core.Mapping:
		if e.circular(x) {
			return nil
		}
		e.visiting[x] = struct{}{}
		defer delete(e.visiting, x)

		e.buf.WriteByte('{')
		for i, key := range x.Keys() {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.buf.WriteByte('"')
			appendJSONString(e.buf, key)
			e.buf.WriteString(`":`)
			child, _ := x.Get(key)
			if err := e.encode(child); err != nil {
				return err
			}
		}
		e.buf.WriteByte('}')
	case *core.Sequence:
		if e.circular(x) {
			return nil
		}
		e.visiting[x] = struct{}{}
		defer delete(e.visiting, x)

		e.buf.WriteByte('[')
		for i := 0; i < x.Len(); i++ {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.encode(x.At(i)); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

// circular writes the marker when v is an ancestor of the current node
func (e *jsonEncoder) circular(v core.Value) bool {
	if _, busy := e.visiting[v]; !busy {
		return false
	}
	e.buf.WriteByte('"')
	appendJSONString(e.buf, e.marker)
	e.buf.WriteByte('"')
	return true
}

func (e *jsonEncoder) scalar(s *core.Scalar) error {
	switch s.Type {
	case core.NullType:
		e.buf.WriteString("null")
	case core.StringType:
		e.buf.WriteByte('"')
		appendJSONString(e.buf, s.Str)
		e.buf.WriteByte('"')
	case core.IntType:
		e.buf.Write(strconv.AppendInt(e.buf.AvailableBuffer(), s.Int64, 10))
	case core.Float64Type:
		return appendJSONFloat(e.buf, s.Float64)
	case core.BoolType:
		e.buf.Write(strconv.AppendBool(e.buf.AvailableBuffer(), s.Int64 == 1))
	case core.OpaqueType:
		data, err := json.Marshal(s.Any)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		e.buf.Write(data)
	default:
		return fmt.Errorf("%w: scalar type %d", ErrUnsupportedValue, s.Type)
	}
	return nil
}

// appendJSONFloat writes f the way encoding/json does
func appendJSONFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(buf.AvailableBuffer(), f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	buf.Write(b)
	return nil
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		// Flush unescaped prefix
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	// Flush remaining
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}
