package validator

import (
	"fmt"

	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/schema"
)

// ArgumentValues returns the coerced argument map a resolver receives for
// site. It expects ValidateArguments to have succeeded on site; variable
// references that were never bound are an error. Declared defaults fill in
// arguments the site omits.
func (v *Validator) ArgumentValues(field *schema.Field, site *language.Field) (map[string]any, error) {
	coerced := make(map[string]any)
	if field == nil || site == nil {
		return coerced, nil
	}
	for _, arg := range site.Arguments {
		def := field.Argument(arg.Name)
		if def == nil {
			continue
		}
		if name, ok := unboundVariable(arg.Value); ok {
			return nil, fmt.Errorf("argument %q of field %q: variable \"$%s\" is not bound", arg.Name, field.Name, name)
		}
		cv, err := v.schema.Coerce(language.ValueToGo(arg.Value), def.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q of field %q cannot be coerced: %w", arg.Name, field.Name, err)
		}
		coerced[arg.Name] = cv
	}
	for _, def := range field.Arguments {
		if _, ok := coerced[def.Name]; ok {
			continue
		}
		if def.DefaultValue != nil {
			coerced[def.Name] = def.DefaultValue
		} else if schema.IsNonNull(def.Type) {
			return nil, fmt.Errorf("argument %q of field %q of required type %s was not provided", def.Name, field.Name, def.Type)
		}
	}
	return coerced, nil
}

// unboundVariable finds a variable reference left in val.
func unboundVariable(val *language.Value) (string, bool) {
	if val == nil {
		return "", false
	}
	if val.Kind == language.Variable {
		return val.Raw, true
	}
	for _, c := range val.Children {
		if name, ok := unboundVariable(c.Value); ok {
			return name, true
		}
	}
	return "", false
}
