// Package faults defines the tagged error type every case-tracker operation
// returns. Callers switch on Kind instead of parsing message strings, and the
// web layer maps kinds onto HTTP statuses.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	// Validation - bad input, rejected before any write.
	Validation Kind = "validation"
	// NotFound - the referenced contract/case does not exist.
	NotFound Kind = "not_found"
	// Conflict - the operation clashes with existing state.
	Conflict Kind = "conflict"
	// Upstream - the data store or a downstream service failed.
	Upstream Kind = "upstream"
)

type Error struct {
	Kind     Kind
	Message  string
	Resource string // id of the conflicting/missing resource when known
	Err      error
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Resource)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(resource, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Resource: resource, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(resource, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// FromUpstream wraps a transport/store failure. The underlying message is
// carried to the caller but the fault is never re-raised past the handler.
func FromUpstream(err error, context string) *Error {
	return &Error{Kind: Upstream, Message: fmt.Sprintf("%s: %s", context, err), Err: err}
}

// KindOf extracts the kind from any error, defaulting to Upstream.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Upstream
}

// InvalidEnum builds the standard validation failure naming the accepted set.
func InvalidEnum(field, got string, allowed []string) *Error {
	return Validationf("invalid %s %q, must be one of: %s", field, got, strings.Join(allowed, ", "))
}
