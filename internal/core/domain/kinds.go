package domain

import (
	"fmt"
	"strings"

	"github.com/olusolaa/gateway-sync/internal/errors"
)

type EntityType string

const (
	EntityTypeService     EntityType = "services"
	EntityTypeRoute       EntityType = "routes"
	EntityTypeConsumer    EntityType = "consumers"
	EntityTypePlugin      EntityType = "plugins"
	EntityTypeUpstream    EntityType = "upstreams"
	EntityTypeCertificate EntityType = "certificates"
)

// syncOrder lists every supported type with parents before the entities
// that reference them.
var syncOrder = []EntityType{
	EntityTypeCertificate,
	EntityTypeService,
	EntityTypeUpstream,
	EntityTypeConsumer,
	EntityTypeRoute,
	EntityTypePlugin,
}

func (t EntityType) String() string {
	return string(t)
}

func (t EntityType) Valid() bool {
	for _, known := range syncOrder {
		if t == known {
			return true
		}
	}
	return false
}

// Singular is used in human-facing messages.
func (t EntityType) Singular() string {
	return strings.TrimSuffix(string(t), "s")
}

// KeyFields returns the payload fields forming the natural key, in
// precedence order. Certificates have none and unify by identity only.
func (t EntityType) KeyFields() []string {
	switch t {
	case EntityTypeConsumer:
		return []string{KeyUsername, KeyCustomID}
	case EntityTypeCertificate:
		return nil
	default:
		return []string{KeyName}
	}
}

// IdentityKeyed reports whether t entities match across systems by id
// alone. Their id must then be carried over when one is created.
func (t EntityType) IdentityKeyed() bool {
	return len(t.KeyFields()) == 0
}

// Order returns the position of t in dependency order, or -1.
func (t EntityType) Order() int {
	for i, known := range syncOrder {
		if t == known {
			return i
		}
	}
	return -1
}

func AllEntityTypes() []EntityType {
	out := make([]EntityType, len(syncOrder))
	copy(out, syncOrder)
	return out
}

func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("invalid entity type: %s", s),
			fmt.Sprintf("Use one of: %s", strings.Join(entityTypeNames(), ", ")))
	}
	return t, nil
}

// SortEntityTypes returns types in dependency order with duplicates removed.
func SortEntityTypes(types []EntityType) []EntityType {
	seen := make(map[EntityType]bool, len(types))
	for _, t := range types {
		seen[t] = true
	}
	out := make([]EntityType, 0, len(seen))
	for _, t := range syncOrder {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

func entityTypeNames() []string {
	names := make([]string, len(syncOrder))
	for i, t := range syncOrder {
		names[i] = string(t)
	}
	return names
}
