package core

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the variant of a Value
type Kind uint8

const (
	ScalarKind Kind = iota
	MappingKind
	SequenceKind
	ErrorKind
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case MappingKind:
		return "mapping"
	case SequenceKind:
		return "sequence"
	case ErrorKind:
		return "error"
	default:
		return "unknown"
	}
}

// Value is a loggable value. The concrete type is always one of
// *Scalar, *Mapping, *Sequence or *ErrorValue.
type Value interface {
	Kind() Kind
}

// ScalarType represents the type of a scalar value
type ScalarType uint8

const (
	NullType ScalarType = iota
	StringType
	IntType
	Float64Type
	BoolType
	// OpaqueType holds a value the pipeline does not understand
	// natively. It is encoded with encoding/json at serialization time.
	OpaqueType
)

// Scalar is a leaf value
type Scalar struct {
	Type    ScalarType
	Int64   int64
	Float64 float64
	Str     string
	Any     interface{}
}

// Kind implements Value
func (*Scalar) Kind() Kind { return ScalarKind }

// Null returns the null scalar
func Null() *Scalar { return &Scalar{Type: NullType} }

// String creates a string scalar
func String(s string) *Scalar { return &Scalar{Type: StringType, Str: s} }

// Int creates an integer scalar
func Int(i int64) *Scalar { return &Scalar{Type: IntType, Int64: i} }

// Float creates a floating point scalar
func Float(f float64) *Scalar { return &Scalar{Type: Float64Type, Float64: f} }

// Bool creates a boolean scalar
func Bool(b bool) *Scalar {
	s := &Scalar{Type: BoolType}
	if b {
		s.Int64 = 1
	}
	return s
}

// Opaque wraps a value that is only encoded at serialization time
func Opaque(v interface{}) *Scalar { return &Scalar{Type: OpaqueType, Any: v} }

// Text returns the plain text form of the scalar, the way it is
// printed when a scalar message is logged.
func (s *Scalar) Text() string {
	switch s.Type {
	case NullType:
		return "null"
	case StringType:
		return s.Str
	case IntType:
		return strconv.FormatInt(s.Int64, 10)
	case Float64Type:
		return strconv.FormatFloat(s.Float64, 'g', -1, 64)
	case BoolType:
		return strconv.FormatBool(s.Int64 == 1)
	case OpaqueType:
		return fmt.Sprintf("%v", s.Any)
	default:
		return ""
	}
}

// Mapping is an unordered set of string keyed values.
type Mapping struct {
	fields map[string]Value
}

// NewMapping creates an empty mapping
func NewMapping() *Mapping {
	return &Mapping{fields: make(map[string]Value)}
}

// Kind implements Value
func (*Mapping) Kind() Kind { return MappingKind }

// Get returns the value stored under key
func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.fields[key]
	return v, ok
}

// Has reports whether key is defined
func (m *Mapping) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

// Set stores v under key, replacing any existing value. A nil v is
// stored as Null.
func (m *Mapping) Set(key string, v Value) {
	if v == nil {
		v = Null()
	}
	m.fields[key] = v
}

// SetDefault stores v under key only when key is not defined yet and
// reports whether it did.
func (m *Mapping) SetDefault(key string, v Value) bool {
	if m.Has(key) {
		return false
	}
	m.Set(key, v)
	return true
}

// Delete removes key
func (m *Mapping) Delete(key string) {
	delete(m.fields, key)
}

// Len returns the number of keys
func (m *Mapping) Len() int {
	return len(m.fields)
}

// Keys returns the keys in sorted order
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, len(m.fields))
	for k := range m.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sequence is an ordered list of values
type Sequence struct {
	items []Value
}

// NewSequence creates a sequence holding items
func NewSequence(items ...Value) *Sequence {
	s := &Sequence{items: make([]Value, 0, len(items))}
	for _, it := range items {
		s.Append(it)
	}
	return s
}

// Kind implements Value
func (*Sequence) Kind() Kind { return SequenceKind }

// Append adds v at the end. A nil v is stored as Null.
func (s *Sequence) Append(v Value) {
	if v == nil {
		v = Null()
	}
	s.items = append(s.items, v)
}

// Len returns the number of items
func (s *Sequence) Len() int {
	return len(s.items)
}

// At returns the item at index i
func (s *Sequence) At(i int) Value {
	return s.items[i]
}

// Replace overwrites the item at index i
func (s *Sequence) Replace(i int, v Value) {
	if v == nil {
		v = Null()
	}
	s.items[i] = v
}
