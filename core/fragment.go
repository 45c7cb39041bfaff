package core

// Fragment is one bounded-size piece of a serialized message.
// Concatenating Content of every fragment sharing a Digest, in Index
// order, yields the serialized message.
type Fragment struct {
	// Content is the fragment body without any reassembly prefix
	Content string
	// Index is zero-based
	Index int
	// Total is the number of fragments of the message
	Total int
	// Digest is the content digest of the whole serialized message
	Digest string
}

// Multipart reports whether the fragment belongs to a message that
// was split into more than one piece.
func (f Fragment) Multipart() bool {
	return f.Total > 1
}
