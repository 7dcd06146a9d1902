package errors

import (
	"fmt"
)

var (
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrNotLoaded    = fmt.Errorf("companies not loaded")
)

// StoreError is returned by the record store on any access failure.
type StoreError struct {
	// Op names the failed read, e.g. "companies" or "industries".
	Op  string
	Err error
}

func (s *StoreError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", s.Op, s.Err)
}

func (s *StoreError) Unwrap() error {
	return s.Err
}

// LoadFailure reports that a bulk load attempt failed as a whole.
// Every load failure is retryable.
type LoadFailure struct {
	Message string
	Err     error
}

func (l *LoadFailure) Error() string {
	return l.Message
}

func (l *LoadFailure) Unwrap() error {
	return l.Err
}

// NewLoadFailure wraps the error that aborted a load attempt.
func NewLoadFailure(err error) *LoadFailure {
	msg := "failed to load companies"
	if err != nil {
		msg = err.Error()
	}
	return &LoadFailure{Message: msg, Err: err}
}
