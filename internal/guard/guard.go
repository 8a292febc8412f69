// Package guard wraps a resolver runtime so that every value it produces is
// checked against the declared return type of its field before execution
// continues.
package guard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/gqlguard/internal/eventbus"
	events "github.com/hanpama/gqlguard/internal/events"
	language "github.com/hanpama/gqlguard/internal/language"
	schema "github.com/hanpama/gqlguard/internal/schema"
	validator "github.com/hanpama/gqlguard/internal/validator"
	value "github.com/hanpama/gqlguard/internal/value"
)

type Guard struct {
	runtime   Runtime
	validator *validator.Validator
	logger    *zap.Logger
}

type Option func(*Guard)

func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(rt Runtime, v *validator.Validator, opts ...Option) *Guard {
	g := &Guard{runtime: rt, validator: v, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ResolveField resolves site on parent through the runtime and checks the
// result. site must have passed argument validation so that its variables
// are bound.
//
// Resolver errors are returned as is. A value that does not fit the field's
// type is recorded in errs as RESOLVED_VALUE_TYPE_MISMATCH and the field
// resolves to nil with no error. An abstract value whose concrete type is
// not a member of the field's interface or union is a hard failure: it is
// recorded and returned.
func (g *Guard) ResolveField(ctx context.Context, errs *validator.Errors, parent *schema.Type, site *language.Field, source any, path validator.Path) (any, error) {
	if !g.validator.ObjectHasField(errs, path, parent, site.Name) {
		return nil, fmt.Errorf("resolve %s: %w", path, validator.ErrFieldNotFound)
	}
	if site.Name == "__typename" {
		return parent.Name, nil
	}
	field := parent.Field(site.Name)
	args, err := g.validator.ArgumentValues(field, site)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.ResolveStart{ObjectType: parent.Name, Field: field.Name, Path: path.String()})
	result, err := g.resolve(ctx, errs, parent, field, source, args, path)
	eventbus.Publish(ctx, events.ResolveFinish{
		ObjectType: parent.Name,
		Field:      field.Name,
		Path:       path.String(),
		Err:        err,
		Duration:   time.Since(start),
	})
	return result, err
}

func (g *Guard) resolve(ctx context.Context, errs *validator.Errors, parent *schema.Type, field *schema.Field, source any, args map[string]any, path validator.Path) (any, error) {
	result, err := g.runtime.ResolveSync(ctx, parent.Name, field.Name, source, args)
	if err != nil {
		return nil, err
	}

	local := &validator.Errors{}
	if !g.validator.ValidateResolvedValueType(local, path, field.Type, result) {
		errs.Merge(local)
		g.reject(ctx, parent, field, path, local)
		return nil, nil
	}
	if err := g.checkAbstract(ctx, field.Type, value.Of(result), path); err != nil {
		local.Record(err)
		errs.Merge(local)
		g.reject(ctx, parent, field, path, local)
		return nil, err
	}
	return result, nil
}

func (g *Guard) reject(ctx context.Context, parent *schema.Type, field *schema.Field, path validator.Path, local *validator.Errors) {
	all := local.All()
	if len(all) == 0 {
		return
	}
	cause := all[len(all)-1]
	g.logger.Warn("resolved value rejected",
		zap.String("object", parent.Name),
		zap.String("field", field.Name),
		zap.String("path", path.String()),
		zap.String("code", string(cause.Code)),
	)
	eventbus.Publish(ctx, events.ResolvedValueRejected{
		ObjectType: parent.Name,
		Field:      field.Name,
		Path:       path.String(),
		Type:       field.Type.String(),
		Err:        cause,
	})
}

// checkAbstract asks the runtime for the concrete type of every record
// produced for an interface or union and asserts its membership.
func (g *Guard) checkAbstract(ctx context.Context, ref *schema.TypeRef, val value.Value, path validator.Path) error {
	if ref == nil || val.IsNull() {
		return nil
	}
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		return g.checkAbstract(ctx, ref.OfType, val, path)
	case schema.TypeRefKindList:
		for i, el := range val.Elements() {
			if err := g.checkAbstract(ctx, ref.OfType, el, append(path[:len(path):len(path)], i)); err != nil {
				return err
			}
		}
		return nil
	}

	s := g.validator.Schema()
	abstract := s.Type(ref.Named)
	if abstract == nil || val.Kind() != value.Record {
		return nil
	}
	if abstract.Kind != schema.TypeKindInterface && abstract.Kind != schema.TypeKindUnion {
		return nil
	}

	name, err := g.runtime.ResolveType(ctx, abstract.Name, val.Raw())
	if err != nil {
		return fmt.Errorf("resolve type of %s at %s: %w", abstract.Name, path, err)
	}
	concrete := s.Type(name)
	if concrete == nil {
		concrete = schema.NewType(name, schema.TypeKindObject, "")
	}
	var verr error
	if abstract.Kind == schema.TypeKindInterface {
		verr = g.validator.AssertTypeImplementsInterface(concrete, abstract)
	} else {
		verr = g.validator.AssertTypeInUnionTypes(concrete, abstract)
	}
	if verr != nil {
		if e, ok := verr.(*validator.Error); ok {
			e.Path = path
		}
		return verr
	}
	return nil
}
