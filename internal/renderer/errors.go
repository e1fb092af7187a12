package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady = errors.New("renderer not ready")
	ErrDisposed = errors.New("renderer disposed")
	ErrNoSize   = errors.New("renderer size unknown")
)

// EngineError wraps a backend failure with the operation that caused it.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("renderer %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Op: op, Err: err}
}
