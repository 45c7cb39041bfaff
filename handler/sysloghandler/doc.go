// Package sysloghandler delivers fragments to a syslog daemon through
// log/syslog, mapping each Severity to the matching syslog priority.
//
// An empty Network dials the local daemon socket. The package is not
// available on Windows or Plan 9, where log/syslog is absent.
package sysloghandler
