package convert

import (
	"fmt"
	"reflect"
)

var errNotSlice = fmt.Errorf("input data is not a slice")

// DeepCopy copies the JSON-shaped value v (maps, slices, scalars). Other
// composite values are returned as is.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = DeepCopy(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, item := range t {
			out[k] = item
		}
		return out
	default:
		return v
	}
}

// DeepCopyMap copies m and every nested map or slice it holds. It accepts
// named map types such as domain.Entity via the type parameter.
func DeepCopyMap[M ~map[string]any](m M) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DeepCopy(v)
	}
	return out
}

// ToMap converts map[string]any-like values, including named map types, to
// map[string]any. The second return is false when data is not such a map.
func ToMap(data any) (map[string]any, bool) {
	if data == nil {
		return nil, false
	}
	if m, ok := data.(map[string]any); ok {
		return m, true
	}
	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Map || val.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// ToSliceOfString converts various slice types to []string.
// Handles []string and []any (converting elements via fmt.Sprintf).
// Returns an error if the input is not a slice.
func ToSliceOfString(data any) ([]string, error) {
	if data == nil {
		return []string{}, nil
	}

	if slice, ok := data.([]string); ok {
		return slice, nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: input type %T", errNotSlice, data)
	}

	result := make([]string, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		result = append(result, fmt.Sprintf("%v", val.Index(i).Interface()))
	}
	return result, nil
}
