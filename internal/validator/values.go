package validator

import (
	"github.com/hanpama/gqlguard/internal/schema"
	"github.com/hanpama/gqlguard/internal/value"
)

// IsValidValue reports whether raw is structurally acceptable for the type
// referenced by ref. Unknown types accept nothing.
func (v *Validator) IsValidValue(ref *schema.TypeRef, raw any) bool {
	return v.isValid(ref, value.Of(raw))
}

func (v *Validator) isValid(ref *schema.TypeRef, val value.Value) bool {
	switch v.schema.KindOf(ref) {
	case schema.KindNonNull:
		if val.IsNull() {
			return false
		}
		return v.isValid(ref.OfType, val)

	case schema.KindList:
		switch val.Kind() {
		case value.Null, value.Sequence, value.Lazy:
			return true
		}
		return false

	case schema.KindObject, schema.KindInputObject, schema.KindInterface, schema.KindUnion:
		switch val.Kind() {
		case value.Null, value.Record:
			return true
		case value.Sequence:
			// placeholder for records not resolved yet
			for _, el := range val.Elements() {
				if el.Kind() != value.Record && el.Kind() != value.Null {
					return false
				}
			}
			return true
		}
		return false

	case schema.KindScalar:
		switch val.Kind() {
		case value.Null:
			return true
		case value.Scalar:
			t := v.schema.Named(ref)
			return t.ValidValue == nil || t.ValidValue(val.Raw())
		}
		return false

	case schema.KindEnum:
		if val.IsNull() {
			return true
		}
		t := v.schema.Named(ref)
		if t.ValidValue == nil {
			return val.Kind() == value.Scalar
		}
		return t.ValidValue(val.Raw())
	}
	return false
}
