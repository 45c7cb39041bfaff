// Package fingerprint derives the short hashes that correlate log
// messages.
//
// A RunState identifies one logging session: its run fingerprint is a
// truncated SHA-1 over the domain, the facility, the process id and a
// high resolution start timestamp. It is computed lazily on first use,
// cached, and only recomputed after Reset. RunState also owns the
// monotonically increasing per-session sequence index. Both are safe
// for concurrent use.
//
// ContentDigest hashes one serialized payload so that the fragments of
// a split message can be grouped by a consumer. It is a correlation
// aid, not a security primitive.
package fingerprint
