package spool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danpasecinic/spool/internal/container"
	"github.com/danpasecinic/spool/internal/lifetime"
	"github.com/danpasecinic/spool/internal/resolution"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeCircularDependency
	ErrCodeDuplicateRegistration
	ErrCodeInvalidRegistration
	ErrCodeResolutionFailed
	ErrCodeFactoryFailed
	ErrCodeDisposed
	ErrCodeDisposeFailed
	ErrCodeScopeConflict
	ErrCodeConfigInvalid
	ErrCodeModuleApplyFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:               "UNKNOWN",
	ErrCodeNotFound:              "NOT_FOUND",
	ErrCodeCircularDependency:    "CIRCULAR_DEPENDENCY",
	ErrCodeDuplicateRegistration: "DUPLICATE_REGISTRATION",
	ErrCodeInvalidRegistration:   "INVALID_REGISTRATION",
	ErrCodeResolutionFailed:      "RESOLUTION_FAILED",
	ErrCodeFactoryFailed:         "FACTORY_FAILED",
	ErrCodeDisposed:              "DISPOSED",
	ErrCodeDisposeFailed:         "DISPOSE_FAILED",
	ErrCodeScopeConflict:         "SCOPE_CONFLICT",
	ErrCodeConfigInvalid:         "CONFIG_INVALID",
	ErrCodeModuleApplyFailed:     "MODULE_APPLY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

type Error struct {
	Code    ErrorCode
	Message string
	Key     string
	Cause   error
	Stack   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Key != "" {
		b.WriteString(fmt.Sprintf(" key=%q:", e.Key))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so errors.Is finds a code
// anywhere in a chain of nested resolution failures.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithKey(k string) *Error {
	e.Key = k
	return e
}

func (e *Error) WithStack(stack []string) *Error {
	e.Stack = stack
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errNotFound(k string, cause error) *Error {
	return newError(
		ErrCodeNotFound,
		fmt.Sprintf("no registration matches %s", k),
		cause,
	).WithKey(k)
}

func errCircularDependency(k string, cause error) *Error {
	e := newError(ErrCodeCircularDependency, "circular dependency detected", cause).WithKey(k)

	var cycle *lifetime.CycleError
	if errors.As(cause, &cycle) {
		e.WithStack(cycle.Path)
	}
	return e
}

func errDuplicateRegistration(k string, cause error) *Error {
	return newError(
		ErrCodeDuplicateRegistration,
		fmt.Sprintf("a registration already answers %s", k),
		cause,
	).WithKey(k)
}

func errInvalidRegistration(k string, cause error) *Error {
	return newError(
		ErrCodeInvalidRegistration,
		fmt.Sprintf("invalid registration for %s", k),
		cause,
	).WithKey(k)
}

func errResolutionFailed(k string, cause error) *Error {
	return newError(
		ErrCodeResolutionFailed,
		fmt.Sprintf("failed to resolve %s", k),
		cause,
	).WithKey(k)
}

func errFactoryFailed(k string, cause error) *Error {
	return newError(
		ErrCodeFactoryFailed,
		fmt.Sprintf("factory for %s returned error", k),
		cause,
	).WithKey(k)
}

func errDisposed(k string, cause error) *Error {
	return newError(ErrCodeDisposed, "container or registration disposed", cause).WithKey(k)
}

func errDisposeFailed(cause error) *Error {
	return newError(ErrCodeDisposeFailed, "dispose failed", cause)
}

func errScopeConflict(k string, cause error) *Error {
	return newError(
		ErrCodeScopeConflict,
		fmt.Sprintf("registration for %s declares conflicting extensions", k),
		cause,
	).WithKey(k)
}

func errConfigInvalid(message string, cause error) *Error {
	return newError(ErrCodeConfigInvalid, message, cause)
}

func errModuleApplyFailed(name string, cause error) *Error {
	return newError(ErrCodeModuleApplyFailed, "failed to apply module "+name, cause)
}

// resolveError classifies an error coming out of the resolution core. Only a
// bare lookup failure for k itself is NOT_FOUND; errors returned by nested
// resolves inside a factory carry an *Error and get wrapped.
func resolveError(k string, err error) *Error {
	var nested *Error
	if !errors.As(err, &nested) && errors.Is(err, container.ErrNotFound) {
		return errNotFound(k, err)
	}

	switch {
	case errors.Is(err, lifetime.ErrCircularDependency):
		return errCircularDependency(k, err)
	case errors.Is(err, container.ErrDisposed), errors.Is(err, lifetime.ErrDisposed):
		return errDisposed(k, err)
	default:
		return errResolutionFailed(k, err)
	}
}

func registerError(k string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, container.ErrDuplicateKey):
		return errDuplicateRegistration(k, err)
	case errors.Is(err, container.ErrDisposed):
		return errDisposed(k, err)
	case errors.Is(err, resolution.ErrDuplicateScope), errors.Is(err, resolution.ErrComparerMismatch):
		return errScopeConflict(k, err)
	default:
		return errInvalidRegistration(k, err)
	}
}

func is(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func IsNotFound(err error) bool { return is(err, ErrCodeNotFound) }

func IsCircularDependency(err error) bool { return is(err, ErrCodeCircularDependency) }

func IsDuplicateRegistration(err error) bool { return is(err, ErrCodeDuplicateRegistration) }

func IsInvalidRegistration(err error) bool { return is(err, ErrCodeInvalidRegistration) }

func IsResolutionFailed(err error) bool { return is(err, ErrCodeResolutionFailed) }

func IsFactoryFailed(err error) bool { return is(err, ErrCodeFactoryFailed) }

func IsDisposed(err error) bool { return is(err, ErrCodeDisposed) }

func IsDisposeFailed(err error) bool { return is(err, ErrCodeDisposeFailed) }

func IsScopeConflict(err error) bool { return is(err, ErrCodeScopeConflict) }

func IsConfigInvalid(err error) bool { return is(err, ErrCodeConfigInvalid) }
