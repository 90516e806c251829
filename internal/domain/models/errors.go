package models

import (
	"errors"
	"fmt"
)

// Sentinel errors of the analytics core. Callers match with errors.Is.
var (
	// ErrInsufficientData: fewer historical rows than an indicator window or
	// the training minimum requires. Not retried; re-attempt after more data
	// accumulates.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelNotFound: prediction requested before training. No auto-train.
	ErrModelNotFound = errors.New("model not found")

	// ErrUpstreamData: malformed or missing fields in ingested price history.
	ErrUpstreamData = errors.New("upstream data invalid")
)

// InsufficientDataError reports how much history was available versus needed.
type InsufficientDataError struct {
	InstrumentID string
	Op           string
	Have         int
	Need         int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s %s: insufficient data: have %d rows, need %d", e.Op, e.InstrumentID, e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// ModelNotFoundError identifies the missing (instrument, horizon) key.
type ModelNotFoundError struct {
	InstrumentID string
	HorizonDays  int
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("no trained model for %s horizon=%dd (train first)", e.InstrumentID, e.HorizonDays)
}

func (e *ModelNotFoundError) Unwrap() error { return ErrModelNotFound }

// PersistenceError wraps a store failure with operation context. Fatal for
// the calling operation; retry policy belongs to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
