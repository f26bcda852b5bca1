// Package errors wraps pkg/errors and adds error codes, so callers can
// classify failures without matching on message strings. Server error
// bodies use the same coded form on the wire.
package errors

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Code identifies a category of error. Check with Is():
//
//	if errors.Is(err, vastdb.ErrNotFound) { ... }
type Code string

// ErrUncoded is the code carried by errors that were never assigned one.
const ErrUncoded Code = "Uncoded"

func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...interface{}) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: errors.Errorf(format, args...).Error(),
	})
}

// WithCode annotates err with a code while keeping err reachable through
// Cause/Unwrap, unlike New/Newf which start a fresh chain. Returns nil if
// err is nil.
func WithCode(err error, code Code) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(codedWrapper{code: code, err: err})
}

// CodeOf returns the code carried by err's chain, or ErrUncoded when no
// error in the chain carries one.
func CodeOf(err error) Code {
	for err != nil {
		switch v := err.(type) {
		case codedError:
			return v.Code
		case codedWrapper:
			return v.code
		}
		err = Unwrap(err)
	}
	return ErrUncoded
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Cause(err error) error {
	return errors.Cause(err)
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Is reports whether any error in err's chain carries the target Code. It
// is a fork of the Is() from pkg/errors which takes a Code instead of an
// error value.
func Is(err error, target Code) bool {
	match := codedError{
		Code: target,
	}
	return errors.Is(err, match)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func WithMessage(err error, message string) error {
	return errors.WithMessage(err, message)
}

func WithMessagef(err error, format string, args ...interface{}) error {
	return errors.WithMessagef(err, format, args...)
}

func WithStack(err error) error {
	return errors.WithStack(err)
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, fmt string, args ...interface{}) error {
	return errors.Wrapf(err, fmt, args...)
}

// codedError is the fundamental type used by this package to provide coded
// errors.
type codedError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Wrapped string `json:"wrapped,omitempty"`
}

func (ce codedError) Error() string {
	if ce.Wrapped != "" {
		return ce.Wrapped
	}
	return ce.Message
}

func (ce codedError) Is(err error) bool {
	if e, ok := err.(codedError); ok && ce.Code == e.Code {
		return true
	}
	return false
}

// codedWrapper attaches a Code to an existing error. The wrapped error
// stays on the Cause/Unwrap chain.
type codedWrapper struct {
	code Code
	err  error
}

func (cw codedWrapper) Error() string { return cw.err.Error() }

func (cw codedWrapper) Cause() error { return cw.err }

func (cw codedWrapper) Unwrap() error { return cw.err }

func (cw codedWrapper) Is(err error) bool {
	if e, ok := err.(codedError); ok && cw.code == e.Code {
		return true
	}
	return false
}

// MarshalJSON returns err as a json object (as a string) representing a
// codedError. If err is not already a codedError, the object's `code`
// value will be empty, which is distinct from ErrUncoded: empty means the
// error never went through this package at all.
func MarshalJSON(err error) string {
	cause := Cause(err)

	var out *codedError

	switch v := cause.(type) {
	case codedError:
		v.Wrapped = err.Error()
		out = &v
	default:
		out = &codedError{
			Message: cause.Error(),
			Wrapped: err.Error(),
		}
	}

	j, jerr := json.Marshal(out)
	if jerr != nil {
		return out.Error()
	}

	return string(j)
}

// UnmarshalJSON reads a codedError from r. If the bytes don't unmarshal to
// a codedError, a plain error holding the raw body is returned instead, so
// a non-JSON server response still surfaces as something readable.
func UnmarshalJSON(r io.Reader) error {
	b, _ := io.ReadAll(r)

	out := &codedError{}
	if err := json.Unmarshal(b, out); err != nil || out.Message == "" {
		return errors.New(string(b))
	}
	return out
}
