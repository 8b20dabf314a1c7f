package classification

import "fmt"

// ValidationError rejects a submission before any side effect occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: field %q %s", e.Field, e.Reason)
}

// PersistenceError wraps a ledger read/write failure. When returned from an
// evaluation the record was not committed and must not be treated as stored.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
