package panel

import "errors"

// panelNotFoundError is returned when no panel has the requested name.
type panelNotFoundError struct{ name string }

func (e panelNotFoundError) Error() string { return "panel not found: " + e.name }

func ErrPanelNotFound(name string) error { return panelNotFoundError{name: name} }

// IsPanelNotFound reports whether err indicates a missing panel.
func IsPanelNotFound(err error) bool {
	var target panelNotFoundError
	return errors.As(err, &target)
}

type panelExistsError struct{ name string }

func (e panelExistsError) Error() string { return "panel already exists: " + e.name }

func ErrPanelExists(name string) error { return panelExistsError{name: name} }

// IsPanelExists reports whether err indicates a duplicate panel name.
func IsPanelExists(err error) bool {
	var target panelExistsError
	return errors.As(err, &target)
}

// notReadyError signals an operation that needs a ready renderer
// (maps to 409 in the HTTP layer).
type notReadyError struct{ name string }

func (e notReadyError) Error() string { return "panel not ready: " + e.name }

func ErrNotReady(name string) error { return notReadyError{name: name} }

func IsNotReady(err error) bool {
	var target notReadyError
	return errors.As(err, &target)
}

// invariantError is the panic value raised when the state machine is driven
// out of order. It is not recoverable for the panel.
type invariantError struct {
	panel string
	msg   string
}

func (e invariantError) Error() string {
	return "panel " + e.panel + ": invariant violated: " + e.msg
}

// IsInvariantViolation reports whether v (an error or a recovered panic
// value) is an invariant violation.
func IsInvariantViolation(v any) bool {
	switch t := v.(type) {
	case invariantError:
		return true
	case error:
		var target invariantError
		return errors.As(t, &target)
	}
	return false
}

func invariant(cond bool, panel, msg string) {
	if !cond {
		panic(invariantError{panel: panel, msg: msg})
	}
}
