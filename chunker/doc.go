// Package chunker splits serialized messages into bounded fragments
// and puts them back together.
//
// Split cuts a payload into consecutive pieces of at most max
// characters; only the last piece may be shorter. Every piece carries
// the content digest of the whole payload. Frame renders a fragment
// for the wire: when a payload needed more than one fragment, each
// body is prefixed with
//
//	[[[<digest8>|<index>|<total>]]]
//
// plus one space, and single-fragment payloads go out unchanged.
//
// Reassembler is the consumer side. It buffers framed lines by digest,
// drops duplicates, and returns the payload once every index has
// arrived.
package chunker
