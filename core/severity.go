package core

import (
	"fmt"
	"strings"
)

// Severity is one of the eight syslog severities. Lower values are more
// severe; the numeric value is the syslog code.
type Severity int8

const (
	// LevelEmergency means the system is unusable
	LevelEmergency Severity = iota
	// LevelAlert means action must be taken immediately
	LevelAlert
	// LevelCritical for critical conditions
	LevelCritical
	// LevelError for error conditions
	LevelError
	// LevelWarning for warning conditions
	LevelWarning
	// LevelNotice for normal but significant conditions
	LevelNotice
	// LevelInfo for informational messages
	LevelInfo
	// LevelDebug for debug-level messages
	LevelDebug
)

// severityLabels is indexed by syslog code. Downstream tooling keys off
// these exact strings.
var severityLabels = [...]string{
	LevelEmergency: "emergency",
	LevelAlert:     "alert",
	LevelCritical:  "critical",
	LevelError:     "error",
	LevelWarning:   "warning",
	LevelNotice:    "notice",
	LevelInfo:      "info",
	LevelDebug:     "debug",
}

// Code returns the syslog numeric code of the severity
func (s Severity) Code() int {
	return int(s)
}

// Valid reports whether s is one of the eight defined severities
func (s Severity) Valid() bool {
	return s >= LevelEmergency && s <= LevelDebug
}

// String returns the lowercase label of the severity
func (s Severity) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return severityLabels[s]
}

// AtLeast reports whether s is as severe as min or more severe.
func (s Severity) AtLeast(min Severity) bool {
	return s <= min
}

// SeverityFromCode maps a syslog code back to a Severity
func SeverityFromCode(code int) (Severity, bool) {
	s := Severity(code)
	if code < 0 || !s.Valid() {
		return 0, false
	}
	return s, true
}

// ParseSeverity converts a label to a Severity. It accepts the
// canonical labels, "warn", and the short syslog names (emerg, crit,
// err).
func ParseSeverity(label string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "emergency", "emerg":
		return LevelEmergency, nil
	case "alert":
		return LevelAlert, nil
	case "critical", "crit":
		return LevelCritical, nil
	case "error", "err":
		return LevelError, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "notice":
		return LevelNotice, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", label)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
