// Package filehandler provides a transport that appends each framed
// fragment as one line to a file, with rotation by size or interval.
//
// Rotated files are renamed to "<filename>.<timestamp>" and the oldest
// ones beyond MaxBackups are removed. Set Async in FileConfig to put a
// handler.AsyncHandler in front of the file.
package filehandler
