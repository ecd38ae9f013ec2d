package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
)

func TestMergeEntities(t *testing.T) {
	opts := service.UnifyOptions{IgnoreFields: domain.DefaultIgnoredFields}

	t.Run("Drifted Entity On Both Sides", func(t *testing.T) {
		gw := []domain.Entity{{"id": "gw-1", "name": "api", "host": "new.local"}}
		cp := []domain.Entity{{"id": "cp-1", "name": "api", "host": "old.local"}}

		list := service.MergeEntities(domain.EntityTypeService, gw, cp, opts)
		require.Len(t, list.Entities, 1)
		u := list.Entities[0]
		assert.Equal(t, domain.SourceBoth, u.Source)
		assert.Equal(t, "gw-1", u.GatewaySideID)
		assert.Equal(t, "cp-1", u.ControlPlaneSideID)
		assert.True(t, u.HasDrift)
		assert.Equal(t, []string{"host"}, u.DriftFields)
	})

	t.Run("Counts Partition The List", func(t *testing.T) {
		gw := []domain.Entity{
			{"id": "gw-1", "name": "orders", "host": "a"},
			{"id": "gw-2", "name": "api", "host": "a"},
			{"id": "gw-3", "name": "zeta", "host": "a"},
		}
		cp := []domain.Entity{
			{"id": "cp-1", "name": "api", "host": "a"},
			{"id": "cp-2", "name": "billing", "host": "b"},
			{"id": "cp-3", "name": "zeta", "host": "z"},
		}

		list := service.MergeEntities(domain.EntityTypeService, gw, cp, opts)
		counts := list.Counts()
		assert.Equal(t, 4, counts.Total)
		assert.Equal(t, counts.Total, counts.GatewayOnly+counts.ControlPlaneOnly+counts.InBoth)
		assert.Equal(t, 1, counts.GatewayOnly)
		assert.Equal(t, 1, counts.ControlPlaneOnly)
		assert.Equal(t, 2, counts.InBoth)
		assert.Equal(t, 1, counts.WithDrift)
		assert.Equal(t, 1, counts.Synced)

		keys := make([]string, 0, len(list.Entities))
		for _, u := range list.Entities {
			keys = append(keys, u.Key)
		}
		assert.Equal(t, []string{"api", "billing", "orders", "zeta"}, keys)
	})

	t.Run("Empty Inputs", func(t *testing.T) {
		list := service.MergeEntities(domain.EntityTypeRoute, nil, nil, opts)
		assert.Equal(t, 0, list.Total())
		assert.Empty(t, list.WithDrift())
	})

	t.Run("First Duplicate Wins", func(t *testing.T) {
		gw := []domain.Entity{
			{"id": "gw-1", "name": "api", "host": "first"},
			{"id": "gw-9", "name": "api", "host": "second"},
		}
		list := service.MergeEntities(domain.EntityTypeService, gw, nil, opts)
		require.Len(t, list.Entities, 1)
		assert.Equal(t, "gw-1", list.Entities[0].GatewaySideID)
		assert.Equal(t, []domain.DuplicateKey{{System: domain.SystemGateway, Key: "api", ID: "gw-9"}}, list.Duplicates)
	})

	t.Run("Plugins Scoped To Different Parents", func(t *testing.T) {
		gw := []domain.Entity{
			{"id": "gw-p1", "name": "rate-limiting", "service": map[string]any{"id": "s1"}},
			{"id": "gw-p2", "name": "rate-limiting", "service": map[string]any{"id": "s2"}},
			{"id": "gw-p3", "name": "rate-limiting"},
		}
		cp := []domain.Entity{{"id": "cp-p2", "name": "rate-limiting", "service": map[string]any{"id": "s2"}}}

		list := service.MergeEntities(domain.EntityTypePlugin, gw, cp, opts)
		require.Len(t, list.Entities, 3)
		assert.Empty(t, list.Duplicates)

		byKey := map[string]domain.UnifiedEntity{}
		for _, u := range list.Entities {
			byKey[u.Key] = u
		}
		assert.Equal(t, domain.SourceGateway, byKey["rate-limiting@service:s1"].Source)
		assert.Equal(t, domain.SourceBoth, byKey["rate-limiting@service:s2"].Source)
		assert.Equal(t, "cp-p2", byKey["rate-limiting@service:s2"].ControlPlaneSideID)
		assert.Equal(t, domain.SourceGateway, byKey["rate-limiting"].Source)
	})

	t.Run("Plugin Duplicates In The Same Scope", func(t *testing.T) {
		cp := []domain.Entity{
			{"id": "cp-1", "name": "cors", "route": map[string]any{"id": "r1"}},
			{"id": "cp-2", "name": "cors", "route": map[string]any{"id": "r1"}},
		}
		list := service.MergeEntities(domain.EntityTypePlugin, nil, cp, opts)
		require.Len(t, list.Entities, 1)
		require.Len(t, list.Duplicates, 1)
		assert.Equal(t, domain.SystemControlPlane, list.Duplicates[0].System)
		assert.Equal(t, "cp-2", list.Duplicates[0].ID)
	})

	t.Run("Consumer Falls Back To Custom ID", func(t *testing.T) {
		gw := []domain.Entity{{"id": "gw-1", "custom_id": "ext-42"}}
		cp := []domain.Entity{{"id": "cp-1", "custom_id": "ext-42"}}
		list := service.MergeEntities(domain.EntityTypeConsumer, gw, cp, opts)
		require.Len(t, list.Entities, 1)
		assert.Equal(t, "ext-42", list.Entities[0].Key)
		assert.Equal(t, domain.SourceBoth, list.Entities[0].Source)
		assert.False(t, list.Entities[0].HasDrift)
	})

	t.Run("Timestamps Are Not Drift", func(t *testing.T) {
		gw := []domain.Entity{{"id": "gw-1", "name": "api", "created_at": 1, "updated_at": 2}}
		cp := []domain.Entity{{"id": "cp-1", "name": "api", "created_at": 7, "updated_at": 9}}
		list := service.MergeEntities(domain.EntityTypeService, gw, cp, opts)
		assert.False(t, list.Entities[0].HasDrift)
	})

	t.Run("Explicit Compare Fields", func(t *testing.T) {
		gw := []domain.Entity{{"id": "gw-1", "name": "api", "host": "a", "port": 80}}
		cp := []domain.Entity{{"id": "cp-1", "name": "api", "host": "b", "port": 81}}
		list := service.MergeEntities(domain.EntityTypeService, gw, cp, service.UnifyOptions{CompareFields: []string{"port"}})
		assert.Equal(t, []string{"port"}, list.Entities[0].DriftFields)
	})
}

func TestDetectDrift(t *testing.T) {
	t.Run("Identical Payloads", func(t *testing.T) {
		x := domain.Entity{"id": "1", "name": "api", "tags": []any{"a", "b"}, "nested": map[string]any{"k": 1}}
		drift, fields := service.DetectDrift(x, x.Clone(), nil)
		assert.False(t, drift)
		assert.Empty(t, fields)
	})

	t.Run("Identity Never Drifts", func(t *testing.T) {
		drift, fields := service.DetectDrift(
			domain.Entity{"id": "gw-1", "name": "api"},
			domain.Entity{"id": "cp-1", "name": "api"},
			[]string{"id", "name"},
		)
		assert.False(t, drift)
		assert.NotContains(t, fields, "id")
	})

	t.Run("Absent Equals Null", func(t *testing.T) {
		drift, _ := service.DetectDrift(domain.Entity{"name": "api"}, domain.Entity{"name": "api", "path": nil}, nil)
		assert.False(t, drift)
	})

	t.Run("Numbers Compare By Value", func(t *testing.T) {
		drift, _ := service.DetectDrift(domain.Entity{"port": 8080}, domain.Entity{"port": 8080.0}, nil)
		assert.False(t, drift)
	})

	t.Run("Ordered Drift Fields", func(t *testing.T) {
		drift, fields := service.DetectDrift(
			domain.Entity{"host": "a", "port": 1, "path": "/x"},
			domain.Entity{"host": "b", "port": 2, "path": "/x"},
			[]string{"port", "path", "host", "port"},
		)
		assert.True(t, drift)
		assert.Equal(t, []string{"port", "host"}, fields)
	})

	t.Run("Missing Side", func(t *testing.T) {
		drift, fields := service.DetectDrift(domain.Entity{"name": "api"}, nil, nil)
		assert.False(t, drift)
		assert.Empty(t, fields)
	})
}
