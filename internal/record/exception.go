package record

import (
	"fmt"
	"runtime"
	"strings"
)

// Exception is an error payload that carries its origin, a numeric code and
// the stack at the point it was created.
type Exception struct {
	Err   error
	Code  int
	File  string
	Line  int
	Stack []Frame
}

// NewException wraps err and captures the caller's location and stack.
func NewException(err error, code int) *Exception {
	e := &Exception{Err: err, Code: code}
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	first := true
	for {
		f, more := frames.Next()
		if first {
			e.File, e.Line = f.File, f.Line
			first = false
		}
		e.Stack = append(e.Stack, Frame{File: f.File, Line: f.Line, Function: f.Function})
		if !more {
			break
		}
	}
	return e
}

func (e *Exception) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Exception) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Location returns the file and line where the exception was created.
func (e *Exception) Location() (string, int) {
	if e == nil {
		return "", 0
	}
	return e.File, e.Line
}

// ErrorCode returns the numeric code.
func (e *Exception) ErrorCode() int {
	if e == nil {
		return 0
	}
	return e.Code
}

// Frames returns the captured stack.
func (e *Exception) Frames() []Frame {
	if e == nil {
		return nil
	}
	return e.Stack
}

// String renders the exception the way it appears in the "Exception" field:
// type, message and origin followed by the numbered stack.
func (e *Exception) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%T: %s in %s:%d", e.Err, e.Error(), e.File, e.Line)
	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:")
		for i, f := range e.Stack {
			fmt.Fprintf(&b, "\n#%d %s(%d): %s", i, f.File, f.Line, f.Function)
		}
	}
	return b.String()
}
