package logger

import (
	"time"

	"github.com/philipp01105/syslogconsole/core"
)

// M is shorthand for building mapping messages
//
//	log.Info(logger.M{"action": "login", "user": 42})
type M = map[string]interface{}

// Field helper functions for convenience

// String creates a string field
func String(key, val string) core.Field {
	return core.Field{Key: key, Value: core.String(val)}
}

// Int creates an int field
func Int(key string, val int) core.Field {
	return core.Field{Key: key, Value: core.Int(int64(val))}
}

// Int64 creates an int64 field
func Int64(key string, val int64) core.Field {
	return core.Field{Key: key, Value: core.Int(val)}
}

// Float64 creates a float64 field
func Float64(key string, val float64) core.Field {
	return core.Field{Key: key, Value: core.Float(val)}
}

// Bool creates a bool field
func Bool(key string, val bool) core.Field {
	return core.Field{Key: key, Value: core.Bool(val)}
}

// Time creates a time field, encoded as RFC 3339 text
func Time(key string, val time.Time) core.Field {
	return core.Field{Key: key, Value: core.String(val.Format(time.RFC3339Nano))}
}

// Duration creates a duration field in milliseconds
func Duration(key string, val time.Duration) core.Field {
	return core.Field{Key: key, Value: core.Int(val.Milliseconds())}
}

// Any creates a field with any value
func Any(key string, val interface{}) core.Field {
	return core.Field{Key: key, Value: core.FromAny(val)}
}

// Fields converts a map into fields, as used for persisted defaults
// loaded from configuration
func Fields(m map[string]interface{}) []core.Field {
	fields := make([]core.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, Any(k, v))
	}
	return fields
}
