package service

import (
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/resources"
	"github.com/olusolaa/gateway-sync/pkg/compare"
)

// DetectDrift compares the two sides of one logical entity field by field.
// A nil side is not drift. compareFields, when non-empty, selects and orders
// the fields to check; otherwise every key of either side is checked in
// ascending order. The identity field is always skipped. A field absent on
// one side equals an explicit null on the other.
func DetectDrift(gatewaySide, controlPlaneSide domain.Entity, compareFields []string) (bool, []string) {
	if gatewaySide == nil || controlPlaneSide == nil {
		return false, []string{}
	}
	if len(compareFields) == 0 {
		compareFields = resources.CompareFields("", nil, gatewaySide, controlPlaneSide)
	}

	drifted := make([]string, 0)
	seen := make(map[string]bool, len(compareFields))
	for _, field := range compareFields {
		if field == domain.KeyID || seen[field] {
			continue
		}
		seen[field] = true
		if !compare.Equal(gatewaySide[field], controlPlaneSide[field]) {
			drifted = append(drifted, field)
		}
	}
	return len(drifted) > 0, drifted
}
