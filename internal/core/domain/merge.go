package domain

import (
	"github.com/olusolaa/gateway-sync/pkg/convert"
)

// MergeEntities overlays patch onto base recursively and returns a new
// entity. Nested objects merge key by key; any other patch value, including
// lists and nulls, replaces the base value. Neither argument is modified.
func MergeEntities(base, patch Entity) Entity {
	return Entity(mergeMaps(base, patch))
}

func mergeMaps(base, patch map[string]any) map[string]any {
	out := convert.DeepCopyMap(base)
	if out == nil {
		out = make(map[string]any, len(patch))
	}
	for k, pv := range patch {
		pm, patchIsMap := convert.ToMap(pv)
		bm, baseIsMap := convert.ToMap(out[k])
		if patchIsMap && baseIsMap {
			out[k] = mergeMaps(bm, pm)
			continue
		}
		out[k] = convert.DeepCopy(pv)
	}
	return out
}

// PickFields returns a new entity holding only the listed top-level fields
// of e that are present.
func PickFields(e Entity, fields []string) Entity {
	out := make(Entity, len(fields))
	for _, f := range fields {
		if v, ok := e[f]; ok {
			out[f] = convert.DeepCopy(v)
		}
	}
	return out
}
