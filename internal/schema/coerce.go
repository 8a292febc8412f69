package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Coerce converts value to the canonical representation of the type
// referenced by ref, applying each named type's ParseValue hook.
// A single value given for a list type becomes a list of one.
func (s *Schema) Coerce(value any, ref *TypeRef) (any, error) {
	if ref == nil {
		return nil, fmt.Errorf("missing type reference")
	}
	if IsNonNull(ref) {
		if isNull(value) {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", ref)
		}
		return s.Coerce(value, ref.OfType)
	}
	if isNull(value) {
		return nil, nil
	}
	if ref.Kind == TypeRefKindList {
		return s.coerceList(value, ref)
	}

	t := s.Type(ref.Named)
	if t == nil {
		return nil, fmt.Errorf("unknown type %q", ref.Named)
	}
	switch t.Kind {
	case TypeKindScalar:
		if t.ParseValue == nil {
			return value, nil
		}
		return t.ParseValue(value)
	case TypeKindEnum:
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", value, value, t.Name)
		}
		if t.ValidValue != nil && !t.ValidValue(name) {
			return nil, fmt.Errorf("%q is not a value of enum %s", name, t.Name)
		}
		if t.ParseValue != nil {
			return t.ParseValue(name)
		}
		return name, nil
	case TypeKindInputObject:
		out, err := s.coerceInputObject(value, t)
		if err != nil {
			return nil, err
		}
		if t.ParseValue != nil {
			return t.ParseValue(out)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s is not an input type", t.Name)
	}
}

// coerceList coerces a value to a list
func (s *Schema) coerceList(value any, listType *TypeRef) (any, error) {
	innerType := listType.OfType
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			item, err := s.Coerce(rv.Index(i).Interface(), innerType)
			if err != nil {
				return nil, fmt.Errorf("list item %d: %w", i, err)
			}
			out[i] = item
		}
		return out, nil
	}

	// Single value becomes a list of one
	item, err := s.Coerce(value, innerType)
	if err != nil {
		return nil, err
	}
	return []any{item}, nil
}

func (s *Schema) coerceInputObject(value any, t *Type) (map[string]any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot coerce %v (%T) to input object %s", value, value, t.Name)
	}
	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fields[iter.Key().String()] = iter.Value().Interface()
	}
	for name := range fields {
		if t.InputField(name) == nil {
			return nil, fmt.Errorf("field %q is not defined by input object %s", name, t.Name)
		}
	}

	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		v, ok := fields[f.Name]
		if !ok {
			if f.DefaultValue != nil {
				out[f.Name] = f.DefaultValue
			} else if IsNonNull(f.Type) {
				return nil, fmt.Errorf("field %q of required type %s was not provided for input object %s", f.Name, f.Type, t.Name)
			}
			continue
		}
		cv, err := s.Coerce(v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q of input object %s: %w", f.Name, t.Name, err)
		}
		out[f.Name] = cv
	}
	if t.OneOf {
		if len(out) != 1 {
			return nil, fmt.Errorf("oneOf input object %s must specify exactly one field", t.Name)
		}
		for name, v := range out {
			if v == nil {
				return nil, fmt.Errorf("field %q of oneOf input object %s must be non-null", name, t.Name)
			}
		}
	}
	return out, nil
}

func isNull(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toInt64(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func coerceToInt(value any) (any, error) {
	if s, ok := value.(string); ok {
		if iv, err := strconv.ParseInt(s, 10, 32); err == nil {
			return int(iv), nil
		}
	} else if iv, ok := toInt64(value); ok {
		if iv < math.MinInt32 || iv > math.MaxInt32 {
			return nil, fmt.Errorf("%d overflows a 32-bit int", iv)
		}
		return int(iv), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
}

func coerceToFloat(value any) (any, error) {
	if s, ok := value.(string); ok {
		if fv, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(fv) && !math.IsInf(fv, 0) {
			return fv, nil
		}
	} else if fv, ok := toFloat64(value); ok && !math.IsNaN(fv) && !math.IsInf(fv, 0) {
		return fv, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

func coerceToString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	if iv, ok := toInt64(value); ok {
		return strconv.FormatInt(iv, 10), nil
	}
	if fv, ok := toFloat64(value); ok {
		return strconv.FormatFloat(fv, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to string", value, value)
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

func coerceToID(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	if iv, ok := toInt64(value); ok {
		return strconv.FormatInt(iv, 10), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to ID", value, value)
}
