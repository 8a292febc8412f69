package validator

import (
	"github.com/hanpama/gqlguard/internal/schema"
)

const typenameField = "__typename"

// ObjectHasField reports whether t declares a field called name, recording
// FIELD_NOT_FOUND when it does not. __typename exists on every composite
// type.
func (v *Validator) ObjectHasField(errs *Errors, path Path, t *schema.Type, name string) bool {
	if t == nil {
		v.record(errs, newError(CodeFieldNotFound, "cannot query field %q on an unknown type", name).at(path))
		return false
	}
	switch t.Kind {
	case schema.TypeKindObject, schema.TypeKindInterface, schema.TypeKindUnion:
		if name == typenameField || t.Field(name) != nil {
			return true
		}
	}
	err := newError(CodeFieldNotFound, "cannot query field %q on type %q", name, t.Name).at(path)
	err.Field = name
	err.Type = t.Name
	v.record(errs, err)
	return false
}
