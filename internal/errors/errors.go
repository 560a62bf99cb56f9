// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package errors provides kinded error values so callers at the top of
// the daemon can choose a log level and exit code without sniffing
// error message text.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies the origin of an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindParse
	KindChild
	KindKernel
	KindIO
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindParse:
		return "parse"
	case KindChild:
		return "child"
	case KindKernel:
		return "kernel"
	case KindIO:
		return "io"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is the kinded error value carried through the daemon.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New returns a new Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf returns a new Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and msg to an existing error.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Underlying: err}
}

// Wrapf attaches kind and a formatted message to an existing error.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err}
}

// Attr returns a copy of err (if it is, or wraps, an *Error) with key/val
// recorded in its Attributes. If err is not an *Error, it is wrapped as
// KindUnknown first.
func Attr(err error, key string, val any) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindUnknown, Message: err.Error(), Underlying: err}
	}
	cp := *e
	cp.Attributes = make(map[string]any, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		cp.Attributes[k] = v
	}
	cp.Attributes[key] = val
	return &cp
}

// GetKind returns the Kind carried by err, or KindUnknown if err does not
// wrap an *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetAttributes returns the attributes carried by err and by every *Error
// it wraps, merged so that an outer error's value for a key wins over an
// inner one's, or nil if there are none.
func GetAttributes(err error) map[string]any {
	var attrs map[string]any
	for ; err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			for k, v := range e.Attributes {
				if _, seen := attrs[k]; !seen {
					if attrs == nil {
						attrs = map[string]any{}
					}
					attrs[k] = v
				}
			}
		}
	}
	return attrs
}

func Is(err, target error) bool     { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
func Unwrap(err error) error        { return errors.Unwrap(err) }
