package guard

import (
	"context"
	"fmt"
)

// Recorded is a Runtime that replays fixed field values, keyed by
// "ObjectType.Field". Missing fields resolve to nil.
type Recorded map[string]any

func (r Recorded) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return r[objectType+"."+field], nil
}

func (r Recorded) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return TypenameOf(value)
}

// TypenameOf reads the concrete type of a record from its "__typename" entry.
func TypenameOf(value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if typename, ok := m["__typename"].(string); ok {
			return typename, nil
		}
	}
	return "", fmt.Errorf("cannot resolve type: no __typename")
}
