package utils

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned by store updates that matched no row.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError marks malformed command input. Handlers answer it with a
// usage hint; it never reaches a log as a failure.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StoreError wraps a failure talking to the database. One command failing
// never takes the process down; handlers turn these into a generic reply.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DeliveryError wraps a voice synthesis or send failure. These are logged at
// the dispatcher boundary and never surfaced to any user.
type DeliveryError struct {
	Stage string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery %s: %v", e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
