package domain

import (
	"fmt"
	"strings"

	"github.com/olusolaa/gateway-sync/pkg/convert"
)

// Entity is the decoded JSON payload of one gateway object as returned by
// either admin API.
type Entity map[string]any

func (e Entity) ID() string {
	return e.String(KeyID)
}

func (e Entity) String(key string) string {
	if e == nil {
		return ""
	}
	switch v := e[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NaturalKeyFor resolves the key used to match t entities across systems:
// the first non-empty key field, falling back to the id. A plugin name is
// qualified by the service, route and consumer it is scoped to, so the
// references must already point at ids of the system being matched.
func (e Entity) NaturalKeyFor(t EntityType) string {
	name := e.DisplayName(t)
	if name == "" {
		return e.ID()
	}
	if t == EntityTypePlugin {
		return e.scopedKey(name)
	}
	return name
}

// pluginScopes are the references that qualify a plugin name.
var pluginScopes = []string{KeyRefService, KeyRefRoute, KeyRefConsumer}

func (e Entity) scopedKey(name string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, field := range pluginScopes {
		if id := e.RefID(field); id != "" {
			fmt.Fprintf(&b, "@%s:%s", field, id)
		}
	}
	return b.String()
}

// RefID returns the id held by the reference field, or "".
func (e Entity) RefID(field string) string {
	ref, ok := e[field].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := ref[KeyID].(string)
	return id
}

// DisplayName is the natural key without the id fallback.
func (e Entity) DisplayName(t EntityType) string {
	for _, field := range t.KeyFields() {
		if v := e.String(field); v != "" {
			return v
		}
	}
	return ""
}

func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	return Entity(convert.DeepCopyMap(e))
}

// Without returns a copy of e lacking the given top-level keys.
func (e Entity) Without(keys ...string) Entity {
	out := e.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
