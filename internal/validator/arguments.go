package validator

import (
	"strings"

	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/schema"
)

// ArgumentPlan holds the mutations argument validation decided on for a
// query site: variable bindings and default injections. Nothing touches the
// AST until Commit.
type ArgumentPlan struct {
	schema   *schema.Schema
	bindings []binding
	defaults []*schema.InputValue
}

// binding replaces the variable reference held in slot, which is either an
// argument's value or a child of a list or object literal.
type binding struct {
	name  string
	slot  **language.Value
	typ   *schema.TypeRef
	value any
}

// BoundVariables lists the variables that Commit will bind, in source order.
func (p *ArgumentPlan) BoundVariables() []string {
	names := make([]string, 0, len(p.bindings))
	for _, b := range p.bindings {
		names = append(names, b.name)
	}
	return names
}

// Defaults lists the arguments that Commit will add with their declared
// default, in declaration order.
func (p *ArgumentPlan) Defaults() []string {
	names := make([]string, 0, len(p.defaults))
	for _, d := range p.defaults {
		names = append(names, d.Name)
	}
	return names
}

// Commit applies the plan to site. Variable references become literals that
// keep their variable definition, and defaults are appended for arguments
// still absent. Committing again changes nothing.
func (p *ArgumentPlan) Commit(site *language.Field) {
	if p == nil || site == nil {
		return
	}
	for _, b := range p.bindings {
		ref := *b.slot
		if ref == nil || ref.Kind != language.Variable {
			continue
		}
		lit := p.literal(b.typ, b.value)
		lit.VariableDefinition = ref.VariableDefinition
		lit.Position = ref.Position
		*b.slot = lit
	}
	for _, d := range p.defaults {
		if site.Arguments.ForName(d.Name) != nil {
			continue
		}
		site.Arguments = append(site.Arguments, &language.Argument{
			Name:     d.Name,
			Value:    p.literal(d.Type, d.DefaultValue),
			Position: site.Position,
		})
	}
}

// literal builds an AST value for v, marking strings that stand for enum
// values as enum literals.
func (p *ArgumentPlan) literal(ref *schema.TypeRef, v any) *language.Value {
	lit := language.ValueFromGo(v)
	p.markEnums(ref, lit)
	return lit
}

func (p *ArgumentPlan) markEnums(ref *schema.TypeRef, lit *language.Value) {
	if ref == nil || lit == nil {
		return
	}
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		p.markEnums(ref.OfType, lit)
		return
	case schema.TypeRefKindList:
		if lit.Kind == language.ListValue {
			for _, c := range lit.Children {
				p.markEnums(ref.OfType, c.Value)
			}
		} else {
			p.markEnums(ref.OfType, lit)
		}
		return
	}
	t := p.schema.Type(ref.Named)
	if t == nil {
		return
	}
	switch {
	case t.Kind == schema.TypeKindEnum && lit.Kind == language.StringValue:
		lit.Kind = language.EnumValue
	case t.Kind == schema.TypeKindInputObject && lit.Kind == language.ObjectValue:
		for _, c := range lit.Children {
			if f := t.InputField(c.Name); f != nil {
				p.markEnums(f.Type, c.Value)
			}
		}
	}
}

// ValidateArguments checks the arguments supplied at site against the
// field's declared arguments. On success the site is updated in place: bound
// variables become literals and omitted arguments with defaults are added.
// On failure the error is recorded in errs, returned, and site is left
// untouched.
func (v *Validator) ValidateArguments(errs *Errors, field *schema.Field, site *language.Field, vars Variables) error {
	return v.validateArguments(errs, nil, field, site, vars)
}

func (v *Validator) validateArguments(errs *Errors, path Path, field *schema.Field, site *language.Field, vars Variables) error {
	plan, err := v.PlanArguments(field, site, vars)
	if err != nil {
		verr := err.(*Error).at(path)
		v.record(errs, verr)
		return verr
	}
	plan.Commit(site)
	return nil
}

// PlanArguments is the pure half of ValidateArguments. It inspects site
// without modifying it and returns the mutations to apply, or the first
// failure. Unknown arguments, variable problems and invalid values fail
// immediately; missing required arguments are reported together.
func (v *Validator) PlanArguments(field *schema.Field, site *language.Field, vars Variables) (*ArgumentPlan, error) {
	plan := &ArgumentPlan{schema: v.schema}
	if field == nil || len(field.Arguments) == 0 || site == nil {
		return plan, nil
	}

	required := make(map[string]bool)
	withDefault := make(map[string]bool)
	for _, arg := range field.Arguments {
		if schema.IsNonNull(arg.Type) {
			required[arg.Name] = true
		}
		if arg.DefaultValue != nil {
			withDefault[arg.Name] = true
		}
	}

	for _, supplied := range site.Arguments {
		def := field.Argument(supplied.Name)
		if def == nil {
			err := newError(CodeUnknownArgument, "unknown argument %q on field %q", supplied.Name, field.Name)
			err.Field, err.Argument = field.Name, supplied.Name
			return nil, withLocation(err, supplied.Position)
		}

		bound := len(plan.bindings)
		raw, err := v.inputValue(plan, field, def, &supplied.Value, def.Type, vars)
		if err != nil {
			return nil, err
		}

		coerced, cerr := v.schema.Coerce(raw, def.Type)
		if cerr != nil || !v.IsValidValue(def.Type, coerced) {
			reason := "value is not valid"
			if cerr != nil {
				reason = cerr.Error()
			}
			err := newError(CodeInvalidArgumentType, "argument %q of field %q has an invalid value for type %q: %s", def.Name, field.Name, def.Type.String(), reason)
			err.Field, err.Argument, err.Type = field.Name, def.Name, def.Type.String()
			return nil, withLocation(err, supplied.Position)
		}
		for i := bound; i < len(plan.bindings); i++ {
			b := &plan.bindings[i]
			if c, err := v.schema.Coerce(b.value, b.typ); err == nil && b.typ != nil {
				b.value = c
			}
		}

		delete(required, def.Name)
		delete(withDefault, def.Name)
	}

	if len(required) > 0 {
		var missing []string
		for _, arg := range field.Arguments {
			if required[arg.Name] {
				missing = append(missing, arg.Name)
			}
		}
		quoted := make([]string, len(missing))
		for i, name := range missing {
			quoted[i] = `"` + name + `"`
		}
		err := newError(CodeMissingRequiredArguments, "field %q is missing required arguments: %s", field.Name, strings.Join(quoted, ", "))
		err.Field = field.Name
		err.Missing = missing
		return nil, withLocation(err, site.Position)
	}

	for _, arg := range field.Arguments {
		if withDefault[arg.Name] {
			plan.defaults = append(plan.defaults, arg)
		}
	}
	return plan, nil
}

// inputValue converts the argument value held in slot to Go, resolving every
// variable reference in it, however deeply nested in list and object
// literals. Each reference becomes a binding of plan. ref is the type
// expected at slot; it is nil under input fields the type does not declare.
func (v *Validator) inputValue(plan *ArgumentPlan, field *schema.Field, def *schema.InputValue, slot **language.Value, ref *schema.TypeRef, vars Variables) (any, error) {
	val := *slot
	if val == nil {
		return nil, nil
	}
	switch val.Kind {
	case language.Variable:
		raw, err := v.resolveVariable(field, def, val, ref, vars)
		if err != nil {
			return nil, err
		}
		plan.bindings = append(plan.bindings, binding{name: val.Raw, slot: slot, typ: ref, value: raw})
		return raw, nil

	case language.ListValue:
		elem := listItemType(ref)
		out := make([]any, 0, len(val.Children))
		for _, c := range val.Children {
			item, err := v.inputValue(plan, field, def, &c.Value, elem, vars)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil

	case language.ObjectValue:
		t := v.schema.Named(ref)
		out := make(map[string]any, len(val.Children))
		for _, c := range val.Children {
			var fieldType *schema.TypeRef
			if t != nil {
				if f := t.InputField(c.Name); f != nil {
					fieldType = f.Type
				}
			}
			item, err := v.inputValue(plan, field, def, &c.Value, fieldType, vars)
			if err != nil {
				return nil, err
			}
			out[c.Name] = item
		}
		return out, nil
	}
	return language.ValueToGo(val), nil
}

func listItemType(ref *schema.TypeRef) *schema.TypeRef {
	if ref != nil && ref.Kind == schema.TypeRefKindNonNull {
		ref = ref.OfType
	}
	if ref == nil || ref.Kind != schema.TypeRefKindList {
		return nil
	}
	return ref.OfType
}

// resolveVariable checks the variable reference ref against the type
// expected where it appears and looks up its value.
func (v *Validator) resolveVariable(field *schema.Field, def *schema.InputValue, ref *language.Value, expected *schema.TypeRef, vars Variables) (any, error) {
	name := ref.Raw
	decl := ref.VariableDefinition
	if decl != nil && decl.Type != nil && expected != nil {
		if declared := decl.Type.Name(); declared != schema.GetNamedType(expected) {
			err := newError(CodeVariableTypeMismatch, "variable \"$%s\" of type %q cannot be used for argument %q of field %q: expected %q",
				name, decl.Type.String(), def.Name, field.Name, expected.String())
			err.Field, err.Argument, err.Type = field.Name, def.Name, expected.String()
			return nil, withLocation(err, ref.Position)
		}
	}

	if decl != nil && vars != nil {
		if val, ok := vars.Variable(name); ok {
			return val, nil
		}
	}
	if decl != nil && decl.DefaultValue != nil {
		return language.ValueToGo(decl.DefaultValue), nil
	}
	err := newError(CodeUndefinedVariable, "variable \"$%s\" used by argument %q of field %q is not defined", name, def.Name, field.Name)
	err.Field, err.Argument = field.Name, def.Name
	return nil, withLocation(err, ref.Position)
}

func withLocation(err *Error, pos *language.Position) *Error {
	if pos != nil {
		err.Locations = append(err.Locations, Location{Line: pos.Line, Column: pos.Column})
	}
	return err
}
