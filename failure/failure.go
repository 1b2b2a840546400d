// Package failure provides the chained, scoped error value used by every
// fallible operation in the bot. A Failure carries the scope it was created
// in, a human-readable message, a category kind, and optionally the lower
// level failure it was extended from, so diagnostics keep the causal chain.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a failure so callers can branch on errors.Is without
// string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindPermissionDenied
	KindNotFound
	KindAlreadyExists
	KindNoQuizInProgress
	KindAlreadyInProgress
	KindEmptyCollection
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindNoQuizInProgress:
		return "no_quiz_in_progress"
	case KindAlreadyInProgress:
		return "already_in_progress"
	case KindEmptyCollection:
		return "empty_collection"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks. A *Failure matches the sentinel of its
// own kind.
var (
	ErrPermissionDenied  = &Failure{kind: KindPermissionDenied, scope: "failure", message: "permission denied"}
	ErrNotFound          = &Failure{kind: KindNotFound, scope: "failure", message: "not found"}
	ErrAlreadyExists     = &Failure{kind: KindAlreadyExists, scope: "failure", message: "already exists"}
	ErrNoQuizInProgress  = &Failure{kind: KindNoQuizInProgress, scope: "failure", message: "no quiz in progress"}
	ErrAlreadyInProgress = &Failure{kind: KindAlreadyInProgress, scope: "failure", message: "already in progress"}
	ErrEmptyCollection   = &Failure{kind: KindEmptyCollection, scope: "failure", message: "empty collection"}
	ErrStore             = &Failure{kind: KindStore, scope: "failure", message: "store failure"}
)

// Failure is an immutable error value. Construct with New or Wrap, derive
// with Extend.
type Failure struct {
	kind    Kind
	scope   string
	message string
	cause   error
}

// New returns a failure with no cause.
func New(kind Kind, scope, format string, args ...any) *Failure {
	return &Failure{kind: kind, scope: scope, message: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure caused by err. The kind is taken from err when it
// is itself a *Failure, so extending preserves the category.
func Wrap(err error, scope, format string, args ...any) *Failure {
	kind := KindUnknown
	var f *Failure
	if errors.As(err, &f) {
		kind = f.kind
	}
	return &Failure{kind: kind, scope: scope, message: fmt.Sprintf(format, args...), cause: err}
}

// WrapKind is Wrap with an explicit kind, for callers that classify a
// foreign error (e.g. database/sql) at the boundary.
func WrapKind(kind Kind, err error, scope, format string, args ...any) *Failure {
	return &Failure{kind: kind, scope: scope, message: fmt.Sprintf(format, args...), cause: err}
}

// Extend returns a new failure one level up the call chain, keeping this
// failure as the cause.
func (f *Failure) Extend(scope, format string, args ...any) *Failure {
	return &Failure{kind: f.kind, scope: scope, message: fmt.Sprintf(format, args...), cause: f}
}

func (f *Failure) Kind() Kind      { return f.kind }
func (f *Failure) Scope() string   { return f.scope }
func (f *Failure) Message() string { return f.message }

func (f *Failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.scope, f.message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.scope, f.message)
}

func (f *Failure) Unwrap() error { return f.cause }

// Is reports kind equality, so errors.Is(err, failure.ErrNotFound) works
// across wrapping.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.kind == f.kind
}

// Stack returns the scoped messages of the whole chain, outermost first.
func (f *Failure) Stack() []string {
	stack := []string{fmt.Sprintf("%s: %s", f.scope, f.message)}
	err := f.cause
	for err != nil {
		if inner, ok := err.(*Failure); ok {
			stack = append(stack, fmt.Sprintf("%s: %s", inner.scope, inner.message))
			err = inner.cause
			continue
		}
		stack = append(stack, err.Error())
		break
	}
	return stack
}

// Verbose renders the full chain on one line for logs.
func (f *Failure) Verbose() string {
	return strings.Join(f.Stack(), " <- ")
}
