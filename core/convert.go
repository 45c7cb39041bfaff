package core

import (
	"reflect"
	"time"
)

// FromAny converts arbitrary Go data into a Value. Maps with string
// keys become mappings, slices and arrays become sequences, errors
// become error values and basic kinds become scalars. Anything else is
// kept as an opaque scalar.
//
// Shared references are preserved: a map or slice reachable twice
// converts to the same *Mapping or *Sequence, so cyclic input produces
// a cyclic Value.
func FromAny(v interface{}) Value {
	c := converter{seen: make(map[refKey]Value)}
	return c.convert(v)
}

type refKey struct {
	kind reflect.Kind
	ptr  uintptr
	len  int
}

type converter struct {
	seen map[refKey]Value
}

func (c *converter) convert(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case error:
		return Error(x)
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case time.Time:
		return String(x.Format(time.RFC3339Nano))
	case time.Duration:
		return Int(int64(x))
	case []byte:
		return String(string(x))
	}
	return c.convertReflect(reflect.ValueOf(v))
}

func (c *converter) convertReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return Null()
		}
		if rv.Type().Key().Kind() != reflect.String {
			return Opaque(rv.Interface())
		}
		key := refKey{kind: reflect.Map, ptr: rv.Pointer()}
		if seen, ok := c.seen[key]; ok {
			return seen
		}
		m := NewMapping()
		c.seen[key] = m
		iter := rv.MapRange()
		for iter.Next() {
			m.Set(iter.Key().String(), c.convertElem(iter.Value()))
		}
		return m
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		key := refKey{kind: reflect.Slice, ptr: rv.Pointer(), len: rv.Len()}
		if seen, ok := c.seen[key]; ok {
			return seen
		}
		s := &Sequence{items: make([]Value, 0, rv.Len())}
		c.seen[key] = s
		for i := 0; i < rv.Len(); i++ {
			s.Append(c.convertElem(rv.Index(i)))
		}
		return s
	case reflect.Array:
		s := &Sequence{items: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			s.Append(c.convertElem(rv.Index(i)))
		}
		return s
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
			return Opaque(rv.Interface())
		}
		return c.convertElem(rv.Elem())
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return Opaque(u)
		}
		return Int(int64(u))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Invalid:
		return Null()
	default:
		return Opaque(rv.Interface())
	}
}

func (c *converter) convertElem(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Null()
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null()
		}
		rv = rv.Elem()
	}
	if rv.CanInterface() {
		switch rv.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
			if x, ok := rv.Interface().(Value); ok {
				return x
			}
			if x, ok := rv.Interface().(error); ok {
				return Error(x)
			}
			if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
				return String(string(rv.Bytes()))
			}
			return c.convertReflect(rv)
		default:
			return c.convert(rv.Interface())
		}
	}
	return c.convertReflect(rv)
}
