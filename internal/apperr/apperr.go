// Package apperr defines the typed failures the engine surfaces to the
// transport layer: NotFound, Forbidden, Conflict, DataConflict and
// Validation. Every failure is side-effect free; callers map kinds to
// HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindUnknown marks errors that did not originate in the engine.
	KindUnknown Kind = iota
	// KindNotFound: a referenced user/event/category/request/comment
	// does not exist.
	KindNotFound
	// KindForbidden: the caller lacks the relational right (not the
	// initiator, author or requester).
	KindForbidden
	// KindConflict: the operation is invalid in the current state
	// (moderation mismatch, no-op write, exhausted capacity, blocked
	// restore).
	KindConflict
	// KindDataConflict: the request collides with existing data
	// (duplicate participation request, initiator self-request).
	KindDataConflict
	// KindValidation: the input is malformed; rejected before any
	// mutation.
	KindValidation
)

// Error is a typed domain failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden builds a KindForbidden error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// DataConflict builds a KindDataConflict error.
func DataConflict(format string, args ...any) *Error {
	return &Error{Kind: KindDataConflict, Msg: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown when err is not an
// engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is an engine error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
