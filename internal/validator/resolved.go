package validator

import (
	"github.com/hanpama/gqlguard/internal/schema"
	"github.com/hanpama/gqlguard/internal/value"
)

// ValidateResolvedValueType checks a resolver's result against the field's
// declared return type. A rejected value is recorded as
// RESOLVED_VALUE_TYPE_MISMATCH and false is returned; what happens to the
// field afterwards is up to the caller.
func (v *Validator) ValidateResolvedValueType(errs *Errors, path Path, ref *schema.TypeRef, raw any) bool {
	val := value.Of(raw)
	if v.isValid(ref, val) {
		return true
	}
	err := newError(CodeResolvedValueTypeMismatch, "not valid resolved value for %s type: got %s", schema.Describe(ref), val.Kind()).at(path)
	err.Type = schema.Describe(ref)
	if n := len(path); n > 0 {
		if name, ok := path[n-1].(string); ok {
			err.Field = name
		}
	}
	v.record(errs, err)
	return false
}
