package services

import "fmt"

// SchemaMismatchError means the field-extraction collaborator returned a
// payload that does not match the expected course shape. Recoverable at the
// call site (re-extract or surface to the learner), never a crash downstream.
type SchemaMismatchError struct {
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("extraction schema mismatch on %q: %s", e.Field, e.Reason)
}

// CalendarServiceError wraps a remote calendar failure. Fatal is set when the
// whole reconciliation had to abort (calendar lookup/creation); per-event
// insert failures are tallied instead.
type CalendarServiceError struct {
	Op    string
	Fatal bool
	Err   error
}

func (e *CalendarServiceError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *CalendarServiceError) Unwrap() error {
	return e.Err
}
