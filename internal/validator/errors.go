package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the kind of a validation failure.
type Code string

const (
	CodeFieldNotFound             Code = "FIELD_NOT_FOUND"
	CodeUnknownArgument           Code = "UNKNOWN_ARGUMENT"
	CodeVariableTypeMismatch      Code = "VARIABLE_TYPE_MISMATCH"
	CodeUndefinedVariable         Code = "UNDEFINED_VARIABLE"
	CodeInvalidArgumentType       Code = "INVALID_ARGUMENT_TYPE"
	CodeMissingRequiredArguments  Code = "MISSING_REQUIRED_ARGUMENTS"
	CodeInterfaceNotImplemented   Code = "INTERFACE_NOT_IMPLEMENTED"
	CodeTypeNotInUnion            Code = "TYPE_NOT_IN_UNION"
	CodeFragmentTypeMismatch      Code = "FRAGMENT_TYPE_MISMATCH"
	CodeResolvedValueTypeMismatch Code = "RESOLVED_VALUE_TYPE_MISMATCH"
	CodeUnknownFragment           Code = "UNKNOWN_FRAGMENT"
	CodeOperationNotFound         Code = "OPERATION_NOT_FOUND"
)

// Fatal reports whether failures with this code abandon the branch they
// occur in.
func (c Code) Fatal() bool {
	switch c {
	case CodeInterfaceNotImplemented, CodeTypeNotInUnion, CodeFragmentTypeMismatch:
		return true
	}
	return false
}

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrFieldNotFound             = &Error{Code: CodeFieldNotFound, Message: "field not found"}
	ErrUnknownArgument           = &Error{Code: CodeUnknownArgument, Message: "unknown argument"}
	ErrVariableTypeMismatch      = &Error{Code: CodeVariableTypeMismatch, Message: "variable type mismatch"}
	ErrUndefinedVariable         = &Error{Code: CodeUndefinedVariable, Message: "undefined variable"}
	ErrInvalidArgumentType       = &Error{Code: CodeInvalidArgumentType, Message: "invalid argument type"}
	ErrMissingRequiredArguments  = &Error{Code: CodeMissingRequiredArguments, Message: "missing required arguments"}
	ErrInterfaceNotImplemented   = &Error{Code: CodeInterfaceNotImplemented, Message: "interface not implemented", Fatal: true}
	ErrTypeNotInUnion            = &Error{Code: CodeTypeNotInUnion, Message: "type not in union", Fatal: true}
	ErrFragmentTypeMismatch      = &Error{Code: CodeFragmentTypeMismatch, Message: "fragment type mismatch", Fatal: true}
	ErrResolvedValueTypeMismatch = &Error{Code: CodeResolvedValueTypeMismatch, Message: "resolved value type mismatch"}
	ErrUnknownFragment           = &Error{Code: CodeUnknownFragment, Message: "unknown fragment"}
	ErrOperationNotFound         = &Error{Code: CodeOperationNotFound, Message: "operation not found"}
)

type Path []PathElement

// PathElement is a response key (string) or list index (int).
type PathElement any

func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		}
	}
	return b.String()
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a single validation failure. Message always names the offending
// field, argument or type.
type Error struct {
	Code      Code
	Message   string
	Path      Path
	Locations []Location
	Field     string
	Argument  string
	Type      string
	Missing   []string
	Fatal     bool
}

func (e *Error) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Fatal: code.Fatal()}
}

func (e *Error) at(path Path) *Error {
	if e.Path == nil {
		e.Path = path
	}
	return e
}

// GraphQLError is the serialisable form of an Error for a response's
// "errors" list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Errors is an ordered collection of validation failures. It is not safe
// for concurrent use; validate independent subtrees into separate
// collections and Merge them.
type Errors struct {
	list []*Error
}

func (e *Errors) Add(err *Error) {
	if err != nil {
		e.list = append(e.list, err)
	}
}

// Record adds err when it is (or wraps) an *Error and reports whether it did.
func (e *Errors) Record(err error) bool {
	var verr *Error
	if !errors.As(err, &verr) {
		return false
	}
	e.Add(verr)
	return true
}

func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.list)
}

// All returns the errors in the order they were added.
func (e *Errors) All() []*Error {
	if e == nil {
		return nil
	}
	return append([]*Error(nil), e.list...)
}

func (e *Errors) HasFatal() bool {
	for _, err := range e.All() {
		if err.Fatal {
			return true
		}
	}
	return false
}

// Merge appends every error of other after those already present. Merging
// into a nil collection discards other.
func (e *Errors) Merge(other *Errors) {
	if e == nil || other == nil || other == e {
		return
	}
	e.list = append(e.list, other.list...)
}

// Err returns nil for an empty collection and otherwise an error joining
// every entry, so errors.Is and errors.As see each of them.
func (e *Errors) Err() error {
	if e.Len() == 0 {
		return nil
	}
	errs := make([]error, len(e.list))
	for i, err := range e.list {
		errs[i] = err
	}
	return errors.Join(errs...)
}

func (e *Errors) GraphQLErrors() []GraphQLError {
	out := make([]GraphQLError, 0, e.Len())
	for _, err := range e.All() {
		out = append(out, GraphQLError{
			Message:    err.Message,
			Locations:  err.Locations,
			Path:       err.Path,
			Extensions: map[string]any{"code": string(err.Code)},
		})
	}
	return out
}
