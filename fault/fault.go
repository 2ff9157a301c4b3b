// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fault

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUniqueViolation = errors.New("unique violation")
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	State
	Conflict
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "ValidationError"
	case NotFound:
		return "NotFoundError"
	case State:
		return "StateError"
	case Conflict:
		return "ConflictError"
	case Forbidden:
		return "ForbiddenError"
	default:
		return "InternalError"
	}
}

// Fault is an error carrying a kind the HTTP layer can map to a status.
// Details enumerates every offending field or id when there is more than one.
type Fault struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Fault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work.
func (e *Fault) Unwrap() error {
	return e.Err
}

func NewValidation(msg string, details ...string) error {
	return &Fault{Kind: Validation, Message: msg, Details: details}
}

func NewNotFound(msg string) error {
	return &Fault{Kind: NotFound, Message: msg, Err: ErrNotFound}
}

func NewState(msg string) error {
	return &Fault{Kind: State, Message: msg}
}

func NewConflict(msg string, err error) error {
	return &Fault{Kind: Conflict, Message: msg, Err: err}
}

func NewForbidden(msg string) error {
	return &Fault{Kind: Forbidden, Message: msg}
}

func NewInternal(msg string, err error) error {
	return &Fault{Kind: Internal, Message: msg, Err: err}
}

// KindOf returns the kind of the first Fault in err's chain. Errors that
// carry no Fault are Internal.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return Internal
}

// Is reports whether err carries a Fault of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// DetailsOf returns the details of the first Fault in err's chain.
func DetailsOf(err error) []string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Details
	}
	return nil
}

// MessageOf returns the public message of err. Internal errors never leak
// their cause.
func MessageOf(err error) string {
	var f *Fault
	if errors.As(err, &f) && f.Kind != Internal {
		return f.Message
	}
	return "internal error"
}
