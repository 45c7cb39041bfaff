package core

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// ErrorTyper is implemented by errors that carry a classification tag
type ErrorTyper interface {
	ErrorType() string
}

// ErrorArgumenter is implemented by errors that carry positional
// arguments
type ErrorArgumenter interface {
	ErrorArguments() []interface{}
}

// StackTracer is implemented by errors that carry a multi-line stack
// trace
type StackTracer interface {
	StackTrace() string
}

// ErrorValue is the error-like variant of Value. The wrapped error is
// only inspected when the value is flattened.
type ErrorValue struct {
	Err error
}

// Error wraps err as a Value
func Error(err error) *ErrorValue {
	return &ErrorValue{Err: err}
}

// Kind implements Value
func (*ErrorValue) Kind() Kind { return ErrorKind }

// Message returns the error text. It panics if the wrapped error does.
func (e *ErrorValue) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Flatten converts the error into its plain mapping form:
// {message, type, arguments, stack}. A panic raised while inspecting
// the error is returned as an error.
func (e *ErrorValue) Flatten() (m *Mapping, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("inspect %T: %v", e.Err, r)
		}
	}()

	m = NewMapping()
	m.Set("message", String(e.Message()))

	typ := fmt.Sprintf("%T", e.Err)
	var typer ErrorTyper
	if errors.As(e.Err, &typer) {
		typ = typer.ErrorType()
	}
	if typ != "" {
		m.Set("type", String(typ))
	}

	var argumenter ErrorArgumenter
	if errors.As(e.Err, &argumenter) {
		if args := argumenter.ErrorArguments(); args != nil {
			seq := NewSequence()
			for _, a := range args {
				seq.Append(FromAny(a))
			}
			m.Set("arguments", seq)
		}
	}

	var tracer StackTracer
	if errors.As(e.Err, &tracer) {
		if stack := tracer.StackTrace(); stack != "" {
			seq := NewSequence()
			for _, line := range strings.Split(strings.TrimRight(stack, "\n"), "\n") {
				seq.Append(String(line))
			}
			m.Set("stack", seq)
		}
	}

	return m, nil
}

// stackError annotates an error with the stack of its creation site
type stackError struct {
	err   error
	args  []interface{}
	stack string
}

func (e *stackError) Error() string                 { return e.err.Error() }
func (e *stackError) Unwrap() error                 { return e.err }
func (e *stackError) StackTrace() string            { return e.stack }
func (e *stackError) ErrorArguments() []interface{} { return e.args }

// WithStack records the current goroutine stack on err
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, stack: string(debug.Stack())}
}

// Errorf formats an error like fmt.Errorf and records both the current
// stack and the format arguments.
func Errorf(format string, args ...interface{}) error {
	return &stackError{
		err:   fmt.Errorf(format, args...),
		args:  args,
		stack: string(debug.Stack()),
	}
}
