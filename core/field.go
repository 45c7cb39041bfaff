package core

// Field is a key-value pair applied to outgoing messages, used for
// persisted default fields.
type Field struct {
	Key   string
	Value Value
}

// ApplyDefaults sets every field on m whose key m does not already
// define. Explicit message fields always win.
func ApplyDefaults(m *Mapping, fields []Field) {
	for _, f := range fields {
		m.SetDefault(f.Key, f.Value)
	}
}
