package black76

import (
	"errors"
	"fmt"
)

// Kind classifies a calculation failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInputMissing: a required optional field (Sigma or P) is nil.
	KindInputMissing
	// KindNumericConversion: a NaN or unrepresentable value appeared where a finite one was required.
	KindNumericConversion
	// KindConvergenceFailure: the volatility solver could not produce a finite answer.
	KindConvergenceFailure
	// KindInvalidDomain: a precondition such as T > 0 or sigma > 0 does not hold.
	KindInvalidDomain
)

func (k Kind) String() string {
	switch k {
	case KindInputMissing:
		return "input missing"
	case KindNumericConversion:
		return "numeric conversion"
	case KindConvergenceFailure:
		return "convergence failure"
	case KindInvalidDomain:
		return "invalid domain"
	default:
		return "unknown"
	}
}

// Error is returned by every calculation in this package.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("black76: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("black76: %s: %s: %s", e.Op, e.Kind, e.Reason)
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrInputMissing) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInputMissing       = &Error{Kind: KindInputMissing, Reason: "required input missing"}
	ErrNumericConversion  = &Error{Kind: KindNumericConversion, Reason: "non-finite value"}
	ErrConvergenceFailure = &Error{Kind: KindConvergenceFailure, Reason: "failed to converge"}
	ErrInvalidDomain      = &Error{Kind: KindInvalidDomain, Reason: "invalid domain"}
)

func newError(kind Kind, op, reason string) *Error {
	return &Error{Kind: kind, Op: op, Reason: reason}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
