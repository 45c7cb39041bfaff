// Package handler provides the Handler interface, the boundary between
// a Logger and the transport that carries its fragments, together with
// composable wrappers around it.
//
// A Handler receives every fragment of a message separately, in index
// order, already framed. Handlers do not retry; a failed Emit is
// returned to the Logger, which stops emitting the remaining fragments
// of that message.
//
// Wrappers:
//
//   - MultiHandler fans every fragment out to several handlers and
//     combines their errors.
//   - AsyncHandler puts a bounded queue in front of a slow handler. When
//     the queue is full it applies a per-severity OverflowPolicy:
//     DropNewest (default for warning and below), DropOldest, or Block
//     with a timeout (default for error and above). Errors from the
//     background goroutine go to a diag.Reporter.
//   - MemoryHandler records fragments in memory for tests and tools.
//
// Transports live in sub-packages: sysloghandler, journaldhandler,
// kafkahandler, filehandler and consolehandler.
//
// Handlers that count traffic expose it via the Stats type, which can
// be queried at runtime for monitoring.
package handler
