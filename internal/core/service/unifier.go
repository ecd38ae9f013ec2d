package service

import (
	"sort"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/resources"
)

// UnifyOptions tunes how two collections are compared.
type UnifyOptions struct {
	// CompareFields restricts drift detection to these fields, in order.
	CompareFields []string

	// IgnoreFields are skipped when CompareFields is empty.
	IgnoreFields []string
}

// MergeEntities unifies the gateway and control plane collections of one
// entity type by natural key and annotates entities found on both sides
// with drift. The result is sorted by key ascending. Later duplicates of a
// key within one collection are left out and listed in Duplicates.
func MergeEntities(entityType domain.EntityType, gatewayList, controlPlaneList []domain.Entity, opts UnifyOptions) *domain.UnifiedEntityList {
	gatewayIndex, gatewayDups := indexByKey(entityType, domain.SystemGateway, gatewayList)
	controlPlaneIndex, controlPlaneDups := indexByKey(entityType, domain.SystemControlPlane, controlPlaneList)

	entities := make([]domain.UnifiedEntity, 0, len(gatewayIndex)+len(controlPlaneIndex))

	for key, gw := range gatewayIndex {
		unified := domain.UnifiedEntity{
			EntityType:    entityType,
			Key:           key,
			Source:        domain.SourceGateway,
			GatewaySideID: gw.ID(),
			GatewayEntity: gw,
			DriftFields:   []string{},
		}
		if cp, ok := controlPlaneIndex[key]; ok {
			unified.Source = domain.SourceBoth
			unified.ControlPlaneSideID = cp.ID()
			unified.ControlPlaneEntity = cp

			fields := opts.CompareFields
			if len(fields) == 0 {
				fields = resources.CompareFields(entityType, opts.IgnoreFields, gw, cp)
			}
			unified.HasDrift, unified.DriftFields = DetectDrift(gw, cp, fields)
		}
		entities = append(entities, unified)
	}

	for key, cp := range controlPlaneIndex {
		if _, ok := gatewayIndex[key]; ok {
			continue
		}
		entities = append(entities, domain.UnifiedEntity{
			EntityType:         entityType,
			Key:                key,
			Source:             domain.SourceControlPlane,
			ControlPlaneSideID: cp.ID(),
			ControlPlaneEntity: cp,
			DriftFields:        []string{},
		})
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Key < entities[j].Key
	})

	return &domain.UnifiedEntityList{
		EntityType: entityType,
		Entities:   entities,
		Duplicates: append(gatewayDups, controlPlaneDups...),
	}
}

func indexByKey(entityType domain.EntityType, system domain.System, list []domain.Entity) (map[string]domain.Entity, []domain.DuplicateKey) {
	index := make(map[string]domain.Entity, len(list))
	var dups []domain.DuplicateKey
	for _, e := range list {
		if e == nil {
			continue
		}
		key := e.NaturalKeyFor(entityType)
		if key == "" {
			continue
		}
		if _, dup := index[key]; dup {
			dups = append(dups, domain.DuplicateKey{System: system, Key: key, ID: e.ID()})
			continue
		}
		index[key] = e
	}
	return index, dups
}
