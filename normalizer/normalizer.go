// Package normalizer flattens error values embedded in a message into
// plain mappings so that they survive serialization.
package normalizer

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/philipp01105/syslogconsole/core"
)

// MaxDepth bounds how deep below the root containers are searched
const MaxDepth = 20

// TraversalError reports a child that could not be inspected. The
// child is left unmodified.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("normalize %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// Normalize replaces every error value reachable from v with its
// flattened mapping form. Mappings and sequences are modified in
// place. When v itself is an error value the flattened mapping is
// returned as the new root; otherwise v is returned.
//
// Containers that are currently being visited are never re-entered,
// so cyclic values terminate. Children that fail to flatten are left
// as they are and reported through the returned error, which combines
// one *TraversalError per failure (see multierr.Errors).
func Normalize(v core.Value) (core.Value, error) {
	if ev, ok := v.(*core.ErrorValue); ok {
		m, err := ev.Flatten()
		if err != nil {
			return v, &TraversalError{Path: "$", Err: err}
		}
		return m, nil
	}

	w := walker{visiting: make(map[core.Value]struct{})}
	w.walk(v, "$", 0)
	return v, w.err
}

type walker struct {
	visiting map[core.Value]struct{}
	err      error
}

func (w *walker) walk(v core.Value, path string, depth int) {
	switch c := v.(type) {
	case *core.Mapping:
		w.visiting[c] = struct{}{}
		defer delete(w.visiting, c)
		for _, key := range c.Keys() {
			child, _ := c.Get(key)
			if flat, ok := w.visit(child, path+"."+key, depth); ok {
				c.Set(key, flat)
			}
		}
	case *core.Sequence:
		w.visiting[c] = struct{}{}
		defer delete(w.visiting, c)
		for i := 0; i < c.Len(); i++ {
			if flat, ok := w.visit(c.At(i), path+"["+strconv.Itoa(i)+"]", depth); ok {
				c.Replace(i, flat)
			}
		}
	}
}

// visit handles one child. It returns a replacement when the child was
// an error value that flattened cleanly.
func (w *walker) visit(child core.Value, path string, depth int) (core.Value, bool) {
	switch c := child.(type) {
	case *core.ErrorValue:
		m, err := c.Flatten()
		if err != nil {
			w.err = multierr.Append(w.err, &TraversalError{Path: path, Err: err})
			return nil, false
		}
		return m, true
	case *core.Mapping, *core.Sequence:
		if depth > MaxDepth {
			return nil, false
		}
		if _, busy := w.visiting[c]; busy {
			return nil, false
		}
		w.walk(c, path, depth+1)
	}
	return nil, false
}
