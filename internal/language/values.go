package language

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// ValueToGo converts a literal AST value to a Go value. Variable references
// convert to nil; callers substitute them before conversion.
func ValueToGo(value *Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case IntValue:
		if iv, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
			return int(iv)
		}
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case StringValue, BlockValue:
		return value.Raw
	case BooleanValue:
		return value.Raw == "true"
	case NullValue:
		return nil
	case EnumValue:
		return value.Raw
	case ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = ValueToGo(c.Value)
		}
		return out
	case ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = ValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}

// ValueFromGo builds a literal AST value from a Go value. Maps become object
// values with keys in sorted order so the result is deterministic.
func ValueFromGo(v any) *Value {
	if v == nil {
		return &Value{Kind: NullValue, Raw: "null"}
	}
	switch x := v.(type) {
	case *Value:
		return x
	case bool:
		return &Value{Kind: BooleanValue, Raw: strconv.FormatBool(x)}
	case string:
		return &Value{Kind: StringValue, Raw: x}
	case []byte:
		return &Value{Kind: StringValue, Raw: string(x)}
	case fmt.Stringer:
		return &Value{Kind: StringValue, Raw: x.String()}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return &Value{Kind: NullValue, Raw: "null"}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return &Value{Kind: BooleanValue, Raw: strconv.FormatBool(rv.Bool())}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Value{Kind: IntValue, Raw: strconv.FormatInt(rv.Int(), 10)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Value{Kind: IntValue, Raw: strconv.FormatUint(rv.Uint(), 10)}
	case reflect.Float32, reflect.Float64:
		return &Value{Kind: FloatValue, Raw: strconv.FormatFloat(rv.Float(), 'g', -1, 64)}
	case reflect.String:
		return &Value{Kind: StringValue, Raw: rv.String()}
	case reflect.Slice, reflect.Array:
		out := &Value{Kind: ListValue}
		for i := 0; i < rv.Len(); i++ {
			out.Children = append(out.Children, &ChildValue{Value: ValueFromGo(rv.Index(i).Interface())})
		}
		return out
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		out := &Value{Kind: ObjectValue}
		for _, k := range keys {
			out.Children = append(out.Children, &ChildValue{Name: k, Value: ValueFromGo(byKey[k].Interface())})
		}
		return out
	default:
		return &Value{Kind: StringValue, Raw: fmt.Sprint(v)}
	}
}
