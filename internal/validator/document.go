package validator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hanpama/gqlguard/internal/eventbus"
	"github.com/hanpama/gqlguard/internal/events"
	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/schema"
)

// ValidateOperation runs the pre-execution pass over one operation of doc:
// it links variable references to their declarations, checks that every
// selected field exists, binds and completes field arguments, and checks
// fragment applicability. Arguments of valid fields are rewritten in place
// (see ValidateArguments), so doc must not be validated by two goroutines
// at once. Validating the same document again yields the same errors and no
// further changes.
func (v *Validator) ValidateOperation(ctx context.Context, doc *language.QueryDocument, operationName string, vars Variables) *Errors {
	errs := &Errors{}
	op, err := getOperation(doc, operationName)
	if err != nil {
		v.record(errs, err)
		return errs
	}

	start := time.Now()
	opType := string(op.Operation)
	if opType == "" {
		opType = string(language.Query)
	}
	eventbus.Publish(ctx, events.ValidationStart{OperationName: op.Name, OperationType: opType})
	defer func() {
		eventbus.Publish(ctx, events.ValidationFinish{
			OperationName: op.Name,
			OperationType: opType,
			Errors:        asErrors(errs),
			Duration:      time.Since(start),
		})
		v.logger.Debug("validated operation",
			zap.String("operation", op.Name),
			zap.String("type", opType),
			zap.Int("errors", errs.Len()),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	root := v.schema.RootType(opType)
	if root == nil {
		err := newError(CodeOperationNotFound, "schema does not support %s operations", opType)
		v.record(errs, withLocation(err, op.Position))
		return errs
	}

	language.BindVariableDefinitions(doc, op)
	w := &walker{
		v:         v,
		doc:       doc,
		vars:      vars,
		errs:      errs,
		spreading: make(map[string]bool),
	}
	w.selectionSet(root, op.SelectionSet, nil)
	return errs
}

func getOperation(doc *language.QueryDocument, operationName string) (*language.OperationDefinition, *Error) {
	if doc == nil || len(doc.Operations) == 0 {
		return nil, newError(CodeOperationNotFound, "document does not contain an operation")
	}
	if operationName == "" {
		if len(doc.Operations) == 1 {
			return doc.Operations[0], nil
		}
		return nil, newError(CodeOperationNotFound, "operation name is required when the document contains %d operations", len(doc.Operations))
	}
	if op := doc.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, newError(CodeOperationNotFound, "operation %q not found", operationName)
}

func asErrors(errs *Errors) []error {
	all := errs.All()
	out := make([]error, len(all))
	for i, err := range all {
		out[i] = err
	}
	return out
}

type walker struct {
	v    *Validator
	doc  *language.QueryDocument
	vars Variables
	errs *Errors
	// fragments currently being expanded, to stop on cycles
	spreading map[string]bool
}

func (w *walker) stopped() bool {
	return w.v.failFast && w.errs.Len() > 0
}

func (w *walker) selectionSet(parent *schema.Type, set language.SelectionSet, path Path) {
	for _, sel := range set {
		if w.stopped() {
			return
		}
		switch sel := sel.(type) {
		case *language.Field:
			w.field(parent, sel, path)
		case *language.InlineFragment:
			target := parent
			if sel.TypeCondition != "" {
				target = w.v.schema.Type(sel.TypeCondition)
				if !w.applies(parent, target, sel.TypeCondition, func() error {
					return w.v.AssertValidFragmentForField(&language.FragmentDefinition{TypeCondition: sel.TypeCondition}, nil, parent)
				}, path, sel.Position) {
					continue
				}
			}
			w.selectionSet(target, sel.SelectionSet, path)
		case *language.FragmentSpread:
			w.spread(parent, sel, path)
		}
	}
}

func (w *walker) field(parent *schema.Type, sel *language.Field, path Path) {
	key := sel.Alias
	if key == "" {
		key = sel.Name
	}
	fieldPath := appendPath(path, key)
	if sel.Name == typenameField && parent != nil {
		return
	}
	if !w.v.ObjectHasField(w.errs, fieldPath, parent, sel.Name) {
		return
	}
	def := parent.Field(sel.Name)
	if def == nil {
		return
	}
	// an argument failure is already recorded; the selection below is still
	// checked unless the pass stops at the first error
	if err := w.v.validateArguments(w.errs, fieldPath, def, sel, w.vars); err != nil && w.stopped() {
		return
	}
	if len(sel.SelectionSet) == 0 {
		return
	}
	child := w.v.schema.Named(def.Type)
	if child == nil {
		return
	}
	w.selectionSet(child, sel.SelectionSet, fieldPath)
}

func (w *walker) spread(parent *schema.Type, sel *language.FragmentSpread, path Path) {
	fragment := w.doc.Fragments.ForName(sel.Name)
	if fragment == nil {
		err := newError(CodeUnknownFragment, "unknown fragment %q", sel.Name).at(path)
		w.v.record(w.errs, withLocation(err, sel.Position))
		return
	}
	if w.spreading[sel.Name] {
		return
	}
	target := w.v.schema.Type(fragment.TypeCondition)
	if !w.applies(parent, target, fragment.TypeCondition, func() error {
		return w.v.AssertValidFragmentForField(fragment, sel, parent)
	}, path, sel.Position) {
		return
	}
	w.spreading[sel.Name] = true
	w.selectionSet(target, fragment.SelectionSet, path)
	delete(w.spreading, sel.Name)
}

// applies checks that a fragment typed on target may be spread where parent
// is expected. Between two object types the names must match exactly;
// otherwise the object side must belong to the abstract side. A failure is
// recorded and the fragment's branch is abandoned.
func (w *walker) applies(parent, target *schema.Type, condition string, exact func() error, path Path, pos *language.Position) bool {
	if target == nil {
		err := newError(CodeFragmentTypeMismatch, "fragment type condition %q is not a type in the schema", condition).at(path)
		err.Type = condition
		w.v.record(w.errs, withLocation(err, pos))
		return false
	}
	if parent == nil {
		return false
	}

	var err error
	switch {
	case parent.Kind == schema.TypeKindObject && target.Kind == schema.TypeKindObject:
		err = exact()
	case parent.Kind == schema.TypeKindObject && target.Kind == schema.TypeKindInterface:
		err = w.v.AssertTypeImplementsInterface(parent, target)
	case parent.Kind == schema.TypeKindObject && target.Kind == schema.TypeKindUnion:
		err = w.v.AssertTypeInUnionTypes(parent, target)
	case parent.Kind == schema.TypeKindInterface && target.Kind == schema.TypeKindObject:
		err = w.v.AssertTypeImplementsInterface(target, parent)
	case parent.Kind == schema.TypeKindUnion && target.Kind == schema.TypeKindObject:
		err = w.v.AssertTypeInUnionTypes(target, parent)
	case target.Kind != schema.TypeKindObject && target.Kind != schema.TypeKindInterface && target.Kind != schema.TypeKindUnion:
		err = exact()
	}
	if err == nil {
		return true
	}
	verr := err.(*Error).at(path)
	if len(verr.Locations) == 0 {
		verr = withLocation(verr, pos)
	}
	w.v.record(w.errs, verr)
	return false
}
