// Package errors decorates errors with structured log attributes and the location they were wrapped at.
//
// It re-exports the standard library helpers so that callers only need a single errors import.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// annotatedError carries a message, the wrapped cause, slog attributes, and the call site of Wrap.
type annotatedError struct {
	msg    string
	cause  error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// Wrap annotates err with msg and attrs. The attrs are emitted under error.annotations when the error is logged with
// SlogError. Wrap returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{
		msg:    msg,
		cause:  err,
		attrs:  attrs,
		source: callerSource(2), //nolint:mnd // skip callerSource and Wrap.
	}
}

// NewSentinel creates an error meant to be compared with Is.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // sentinel constructor.
}

// New is [errors.New].
func New(msg string) error {
	return stderrors.New(msg) //nolint:err113 // re-export.
}

// Is is [errors.Is].
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is [errors.As].
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join is [errors.Join].
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// SlogError converts err into a slog attribute group with the message, the annotations collected from the whole
// wrap chain, and the source location of the innermost Wrap.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	var (
		annotations []slog.Attr
		source      string
	)
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		var ae *annotatedError
		if ae, _ = e.(*annotatedError); ae == nil {
			continue
		}
		annotations = append(annotations, ae.attrs...)
		source = ae.source
	}

	attrs := []slog.Attr{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.GroupAttrs("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.GroupAttrs("error", attrs...)
}

// DecoratePanic turns a recovered panic value into an error that points at the panicking line.
//
// It must be called directly from the deferred function that called recover.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var cause error
	if err, ok := excp.(error); ok {
		cause = err
	} else {
		cause = fmt.Errorf("%v", excp) //nolint:err113 // panic payload.
	}
	return &annotatedError{
		msg:    "panic",
		cause:  cause,
		attrs:  nil,
		source: panicSource(),
	}
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// panicSource finds the first frame after runtime.gopanic in the current stack.
func panicSource() string {
	pcs := make([]uintptr, 32) //nolint:mnd // deep enough for recover handlers.
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			return ""
		}
	}
}
