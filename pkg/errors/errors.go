package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// New returns an error with the supplied message and the current stack.
func New(message string) error {
	return errors.New(message)
}

// NewWithReport is New and reports the error to all registered reporters.
func NewWithReport(message string) error {
	err := errors.New(message)
	report(err)
	return err
}

// Errorf formats according to a format specifier and records the stack.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// ErrorfAndReport is Errorf and reports the error.
func ErrorfAndReport(format string, args ...interface{}) error {
	err := errors.Errorf(format, args...)
	report(err)
	return err
}

// Wrap annotates err with message. Returns nil if err is nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// WrapAndReport is Wrap and reports the wrapped error. Returns nil if err is nil.
func WrapAndReport(err error, message string) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrap(err, message)
	report(wrapped)
	return wrapped
}

// WithStack annotates err with the current stack. Returns nil if err is nil.
func WithStack(err error) error {
	return errors.WithStack(err)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

type stack []uintptr

const maxStackDepth = 32

func callers() stack {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

// fullStack renders every frame as "function file:line". The first entries
// are the report helpers themselves, callers index from there.
func (s stack) fullStack() []string {
	frames := runtime.CallersFrames(s)
	lines := make([]string, 0, len(s))
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if i := strings.LastIndex(fn, "/"); i >= 0 {
			fn = fn[i+1:]
		}
		lines = append(lines, fmt.Sprintf("%s %s:%d", fn, frame.File, frame.Line))
		if !more {
			break
		}
	}
	// keep index 2 addressable for the stack based limiter
	for len(lines) < 3 {
		lines = append(lines, "")
	}
	return lines
}
