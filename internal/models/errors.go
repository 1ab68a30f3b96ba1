package models

import "fmt"

// ValidationError rejects user input before any connection attempt
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConnectionError is a connect, auth or transport failure
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is a statement failure
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// SchemaFetchError is a failure while listing databases, tables or columns
type SchemaFetchError struct {
	Object string
	Err    error
}

func (e *SchemaFetchError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Object, e.Err)
}

func (e *SchemaFetchError) Unwrap() error { return e.Err }

// MirrorError aborts a mirror job
type MirrorError struct {
	Table string
	Err   error
}

func (e *MirrorError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("mirror failed: %v", e.Err)
	}
	return fmt.Sprintf("mirror failed on table %s: %v", e.Table, e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }
