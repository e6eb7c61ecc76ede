package domain

import (
	"errors"
	"fmt"
)

var (
	ErrChannelNotConfigured = errors.New("channel not configured")
	ErrChannelClosed        = errors.New("channel closed")
	ErrEmptyCompletion      = errors.New("completion has no choices")
)

// DispatchPanicError wraps a value recovered while dispatching one tool call.
type DispatchPanicError struct {
	Value any
}

func (e *DispatchPanicError) Error() string {
	return fmt.Sprintf("dispatch panic: %v", e.Value)
}

// Unwrap exposes the recovered value when it was itself an error.
func (e *DispatchPanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
