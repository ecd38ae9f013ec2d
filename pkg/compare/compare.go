package compare

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	jsoniter "github.com/json-iterator/go"
)

// canonicalJSON sorts object keys so serialized payloads are stable.
var canonicalJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Canonicalize round-trips v through JSON so values that serialize
// identically compare identically: int(1) and float64(1) both become
// float64(1), named map types become map[string]any.
func Canonicalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := canonicalJSON.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := canonicalJSON.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether a and b have the same serialized form. Values that
// cannot be serialized fall back to reflect.DeepEqual.
func Equal(a, b any) bool {
	ca, errA := Canonicalize(a)
	cb, errB := Canonicalize(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return cmp.Equal(ca, cb)
}

// Diff renders a human-readable structural diff of the canonical forms of
// a and b, or "" when they are equal.
func Diff(a, b any) string {
	ca, errA := Canonicalize(a)
	cb, errB := Canonicalize(b)
	if errA != nil || errB != nil {
		return cmp.Diff(a, b, cmpopts.EquateEmpty())
	}
	return cmp.Diff(ca, cb)
}

// MarshalCanonical renders v as indented JSON with sorted keys.
func MarshalCanonical(v any) ([]byte, error) {
	return canonicalJSON.MarshalIndent(v, "", "  ")
}
