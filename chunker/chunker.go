package chunker

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/fingerprint"
)

// DefaultMaxFragment is the default fragment body size in characters
const DefaultMaxFragment = 2048

const (
	prefixOpen  = "[[["
	prefixClose = "]]] "
)

var (
	// ErrInvalidSize is returned for fragment sizes below one
	ErrInvalidSize = errors.New("fragment size must be at least 1")
	// ErrMalformedPrefix is returned when a framed line has a broken
	// reassembly prefix
	ErrMalformedPrefix = errors.New("malformed reassembly prefix")
)

// Split cuts payload into fragments of at most max characters. Cuts
// fall on rune boundaries, so every fragment is valid UTF-8 when the
// payload is. An empty payload yields one empty fragment.
func Split(payload string, max int) ([]core.Fragment, error) {
	if max < 1 {
		return nil, ErrInvalidSize
	}

	digest := fingerprint.ContentDigest(payload)
	if utf8.RuneCountInString(payload) <= max {
		return []core.Fragment{{Content: payload, Index: 0, Total: 1, Digest: digest}}, nil
	}

	parts := make([]string, 0, len(payload)/max+1)
	start, count := 0, 0
	for i := range payload {
		if count == max {
			parts = append(parts, payload[start:i])
			start, count = i, 0
		}
		count++
	}
	parts = append(parts, payload[start:])

	fragments := make([]core.Fragment, len(parts))
	for i, p := range parts {
		fragments[i] = core.Fragment{Content: p, Index: i, Total: len(parts), Digest: digest}
	}
	return fragments, nil
}

// Frame renders f as it is handed to the transport
func Frame(f core.Fragment) string {
	if !f.Multipart() {
		return f.Content
	}
	var b strings.Builder
	b.Grow(len(prefixOpen) + len(f.Digest) + len(prefixClose) + 24 + len(f.Content))
	b.WriteString(prefixOpen)
	b.WriteString(f.Digest)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.Index))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.Total))
	b.WriteString(prefixClose)
	b.WriteString(f.Content)
	return b.String()
}

// Parse reads a framed line. Lines without a reassembly prefix are
// returned as a complete single fragment. Lines that start like a
// prefix but do not match the format fail with ErrMalformedPrefix.
func Parse(line string) (core.Fragment, error) {
	if !strings.HasPrefix(line, prefixOpen) {
		return core.Fragment{Content: line, Index: 0, Total: 1, Digest: fingerprint.ContentDigest(line)}, nil
	}

	end := strings.Index(line, prefixClose)
	if end < 0 {
		return core.Fragment{}, ErrMalformedPrefix
	}
	fields := strings.Split(line[len(prefixOpen):end], "|")
	if len(fields) != 3 || !isDigest(fields[0]) {
		return core.Fragment{}, ErrMalformedPrefix
	}
	index, ok := parseDecimal(fields[1])
	if !ok {
		return core.Fragment{}, ErrMalformedPrefix
	}
	total, ok := parseDecimal(fields[2])
	if !ok || total < 2 || index >= total {
		return core.Fragment{}, ErrMalformedPrefix
	}

	return core.Fragment{
		Content: line[end+len(prefixClose):],
		Index:   index,
		Total:   total,
		Digest:  fields[0],
	}, nil
}

func isDigest(s string) bool {
	if len(s) != fingerprint.DigestLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// parseDecimal accepts non-negative integers without leading zeros
func parseDecimal(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
