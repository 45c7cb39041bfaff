// Package logger is the public API of syslogconsole. Most users only
// need to import this package.
//
// A Logger accepts structured messages (maps, slices, scalars, errors
// or core.Value trees), flattens embedded errors, attaches envelope
// metadata, serializes the result to JSON and splits it into fragments
// small enough for a size-limited transport such as syslog:
//
//	log := logger.NewBuilder("billing").
//	    WithHandler(h).
//	    WithPersist(logger.String("env", "prod")).
//	    Build()
//
//	log.Error(logger.M{"action": "charge", "error": err})
//
// Mapping messages receive the envelope keys __s (severity label),
// __r (run fingerprint), __i (sequence index) and, when set, __p, __t,
// __u and buildType. Persisted fields follow. Keys the message already
// defines are never overwritten.
//
// Messages that cannot be serialized are reported to the diag.Reporter
// and dropped. Transport errors are returned from Send.
//
// The package initializes a default Logger (console handler on
// stdout, domain taken from os.Args[0]). The package-level functions
// Info, Error, Message, etc. delegate to it.
package logger
