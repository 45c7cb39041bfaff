// Package core defines the shared types used across syslogconsole.
//
// It provides the Severity type with its fixed mapping to syslog codes
// and labels, the Facility type, the Value sum type that every log
// message is converted into, and the Fragment type produced by the
// chunker.
//
// A Value is one of four variants: *Scalar, *Mapping, *Sequence or
// *ErrorValue. FromAny converts arbitrary Go data into this form once,
// at message construction time, so the rest of the pipeline switches
// on Kind instead of probing types with reflection. Mappings and
// sequences are pointers; two references to the same *Mapping denote
// the same node, which is how cyclic messages are represented and
// detected.
//
// Values are not safe for concurrent mutation. A message is owned by
// the caller while it is built and must not be touched once it has
// been handed to a Logger.
package core
