package guard

import (
	"context"
)

// Runtime is the host's resolver surface. The guard calls it for one field
// at a time and checks what it returns.
//
//   - objectType is the GraphQL type name (e.g. "User"); for root fields it is
//     the root type name (e.g. "Query").
//   - source is the parent object value (nil for root).
//   - args are the field arguments, coerced to Go values per the schema.
//
// Implementations must not mutate source or args and should be safe for
// concurrent use.
type Runtime interface {
	// ResolveSync resolves a field value. Return (nil, nil) to produce a
	// GraphQL null for nullable fields.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// ResolveType determines the concrete runtime type name for a value of an
	// abstract GraphQL type (interface or union).
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)
}
