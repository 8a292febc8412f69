package validator

import (
	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/schema"
)

// AssertValidFragmentForField fails with FRAGMENT_TYPE_MISMATCH unless the
// fragment's type condition names site exactly.
func (v *Validator) AssertValidFragmentForField(fragment *language.FragmentDefinition, spread *language.FragmentSpread, site *schema.Type) error {
	if fragment != nil && site != nil && fragment.TypeCondition == site.Name {
		return nil
	}
	name, cond := "", ""
	if fragment != nil {
		name, cond = fragment.Name, fragment.TypeCondition
	} else if spread != nil {
		name = spread.Name
	}
	err := newError(CodeFragmentTypeMismatch, "fragment %q on %q cannot be spread on type %q", name, cond, typeName(site))
	err.Type = typeName(site)
	if spread != nil && spread.Position != nil {
		err.Locations = []Location{{Line: spread.Position.Line, Column: spread.Position.Column}}
	}
	return err
}
