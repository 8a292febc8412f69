package events

import "time"

// ValidationStart is emitted before an operation is validated.
type ValidationStart struct {
	OperationName string
	OperationType string
}

// ValidationFinish is emitted after an operation is validated.
type ValidationFinish struct {
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// ResolveStart is emitted before a guarded resolver runs.
type ResolveStart struct {
	ObjectType string
	Field      string
	Path       string
}

// ResolveFinish is emitted after a guarded resolver returns and its value
// has been checked.
type ResolveFinish struct {
	ObjectType string
	Field      string
	Path       string
	Err        error
	Duration   time.Duration
}

// ResolvedValueRejected is emitted when a resolver returns a value that does
// not fit the field's declared type.
type ResolvedValueRejected struct {
	ObjectType string
	Field      string
	Path       string
	Type       string
	Err        error
}
