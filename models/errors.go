package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrInvalidTime        = errors.New("invalid expected end time")
	ErrInvariantViolation = errors.New("table invariant violation")
	ErrTransport          = errors.New("persistence failure")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateNumber    = errors.New("table number already in use")
)

type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "table"
	}
	return fmt.Sprintf("%s %d not found", resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IllegalTransitionError names the status the table was in and the event that
// was refused. Target is set for manual status changes.
type IllegalTransitionError struct {
	ID      uint
	Current TableStatus
	Event   Event
	Target  TableStatus
}

func (e *IllegalTransitionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("table %d: cannot %s from %s to %s", e.ID, e.Event, e.Current, e.Target)
	}
	return fmt.Sprintf("table %d: cannot %s while %s", e.ID, e.Event, e.Current)
}

func (e *IllegalTransitionError) Is(target error) bool { return target == ErrIllegalTransition }

type InvalidTimeError struct {
	ID           uint
	SessionStart time.Time
	Requested    time.Time
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("table %d: expected end time %s must be after session start %s",
		e.ID, e.Requested.Format(time.RFC3339), e.SessionStart.Format(time.RFC3339))
}

func (e *InvalidTimeError) Is(target error) bool { return target == ErrInvalidTime }

type InvariantViolation struct {
	ID     uint
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("table %d: invariant violation: %s", e.ID, e.Reason)
}

func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariantViolation }

// TransportError wraps a failure of the underlying persistence call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
