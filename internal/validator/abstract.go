package validator

import (
	"github.com/hanpama/gqlguard/internal/schema"
)

// AssertTypeImplementsInterface fails with INTERFACE_NOT_IMPLEMENTED unless
// the interface's own validity predicate accepts t.
func (v *Validator) AssertTypeImplementsInterface(t, iface *schema.Type) error {
	if t != nil && iface != nil && implements(t, iface) {
		return nil
	}
	err := newError(CodeInterfaceNotImplemented, "type %q does not implement interface %q", typeName(t), typeName(iface))
	err.Type = typeName(t)
	return err
}

func implements(t, iface *schema.Type) bool {
	if iface.ValidValue != nil {
		return iface.ValidValue(t)
	}
	return t.Implements(iface.Name) || iface.HasPossibleType(t.Name)
}

// AssertTypeInUnionTypes fails with TYPE_NOT_IN_UNION unless one of the
// union's possible types has t's name.
func (v *Validator) AssertTypeInUnionTypes(t, union *schema.Type) error {
	if t != nil && union != nil && union.HasPossibleType(t.Name) {
		return nil
	}
	err := newError(CodeTypeNotInUnion, "type %q is not a member of union %q", typeName(t), typeName(union))
	err.Type = typeName(t)
	return err
}

func typeName(t *schema.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}
