// Package consolehandler provides a transport that writes each
// fragment as one line to any io.Writer (default: os.Stdout).
//
// Lines have the form "<severity> <framed fragment>". Writers known to
// be safe for concurrent use (io.Discard, *os.File) are written
// outside the handler lock.
//
// Set Async in ConsoleConfig to put a handler.AsyncHandler with the
// configured OverflowPolicy in front of the writer.
package consolehandler
