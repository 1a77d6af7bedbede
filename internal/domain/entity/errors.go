package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleElement is returned by drivers when a cached native handle no
	// longer belongs to the document.
	ErrStaleElement = errors.New("stale element reference")
	// ErrNotInteractable is returned by drivers for elements that exist but
	// cannot receive input yet.
	ErrNotInteractable = errors.New("element not interactable")
	// ErrInternal marks broken builder invariants; never a user error.
	ErrInternal = errors.New("internal error")
)

// ConfigurationError reports a malformed selector. It is raised at compile
// time and never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// UnknownObjectError means nothing matched the selector within the budget.
type UnknownObjectError struct {
	Selector string
	Msg      string
}

func (e *UnknownObjectError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unable to locate element: " + e.Selector
}

// ObjectDisabledError means the element was found but stayed disabled.
type ObjectDisabledError struct {
	Msg string
}

func (e *ObjectDisabledError) Error() string { return e.Msg }

// ObjectReadOnlyError means the element was found and enabled but stayed read-only.
type ObjectReadOnlyError struct {
	Msg string
}

func (e *ObjectReadOnlyError) Error() string { return e.Msg }

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsUnknownObject(err error) bool {
	var target *UnknownObjectError
	return errors.As(err, &target)
}

// IsRetryable reports errors that a wait loop treats as "not yet".
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrNotInteractable) ||
		IsUnknownObject(err)
}
