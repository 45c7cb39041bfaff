package formatter

import (
	"bytes"
	"errors"
	"sync"

	"github.com/philipp01105/syslogconsole/core"
)

// ErrUnsupportedValue is returned when a value has no text encoding,
// such as a non-finite float or an opaque value encoding/json rejects.
var ErrUnsupportedValue = errors.New("unsupported value")

// Formatter defines the interface for message serializers
type Formatter interface {
	// Format serializes a message into its transport text
	Format(v core.Value) (string, error)
}

// BufferFormatter is an optional interface that formatters can implement
// to serialize directly into a caller-provided buffer, avoiding internal
// buffer pool overhead.
type BufferFormatter interface {
	// FormatValue serializes v into the given buffer.
	FormatValue(v core.Value, buf *bytes.Buffer) error
}

// Config holds common formatter configuration
type Config struct {
	// CircularMarker replaces references to a container that is already
	// being encoded (default: "[Circular]")
	CircularMarker string
	// Depth limits how many nesting levels the text formatter expands
	// (default: 4)
	Depth int
	// Colorize enables ANSI colors in text output
	Colorize bool
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
