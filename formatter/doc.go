// Package formatter turns messages into text.
//
// JSONFormatter is the serializer guard in front of the transport. It
// writes mappings as JSON objects with sorted keys so that the same
// message always produces the same bytes (and therefore the same
// content digest). Any non-mapping root is written as its plain text,
// a space, and its JSON form. Cyclic references are written as a
// marker string rather than failing; values without a JSON form, like
// NaN or channels, make Format return ErrUnsupportedValue.
//
// TextFormatter renders the same values for a terminal in a compact
// inspect style, optionally with ANSI colors.
//
// Both formatters use a pooled bytes.Buffer internally. Buffers larger
// than 64 KiB are not returned to the pool to prevent a single large
// message from permanently inflating memory usage.
package formatter
