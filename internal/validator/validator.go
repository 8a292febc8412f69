package validator

import (
	"go.uber.org/zap"

	"github.com/hanpama/gqlguard/internal/schema"
)

// Validator checks query documents and resolved values against a schema.
// It holds no per-request state and is safe for concurrent use.
type Validator struct {
	schema   *schema.Schema
	logger   *zap.Logger
	failFast bool
}

type Option func(*Validator)

// WithLogger sets the logger validation failures are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithFailFast stops a document pass at the first recorded error.
func WithFailFast(enabled bool) Option {
	return func(v *Validator) { v.failFast = enabled }
}

func New(s *schema.Schema, opts ...Option) *Validator {
	v := &Validator{schema: s, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Validator) Schema() *schema.Schema { return v.schema }

// Variables is the request-scoped variable table.
type Variables interface {
	Variable(name string) (any, bool)
}

// VariableMap is a Variables backed by a map.
type VariableMap map[string]any

func (m VariableMap) Variable(name string) (any, bool) {
	val, ok := m[name]
	return val, ok
}

func (v *Validator) record(errs *Errors, err *Error) {
	v.logger.Debug("validation failed",
		zap.String("code", string(err.Code)),
		zap.String("path", err.Path.String()),
		zap.String("message", err.Message),
		zap.Bool("fatal", err.Fatal),
	)
	if errs != nil {
		errs.Add(err)
	}
}
