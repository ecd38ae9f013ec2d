package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/adapters/audit/memory"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	"github.com/olusolaa/gateway-sync/internal/log"
	"github.com/olusolaa/gateway-sync/internal/testutil"
)

// fixture wires in-memory managers for both systems and an in-memory audit
// trail.
type fixture struct {
	registry *service.ManagerRegistry
	store    *memory.Store
	audit    *service.SyncAuditLog
	gateway  map[domain.EntityType]*testutil.MemoryManager
	cp       map[domain.EntityType]*testutil.MemoryManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		registry: service.NewManagerRegistry(),
		store:    memory.New(),
		gateway:  make(map[domain.EntityType]*testutil.MemoryManager),
		cp:       make(map[domain.EntityType]*testutil.MemoryManager),
	}
	for _, et := range domain.AllEntityTypes() {
		f.gateway[et] = testutil.NewMemoryManager(et, "gw")
		f.cp[et] = testutil.NewMemoryManager(et, "cp")
		require.NoError(t, f.registry.Register(domain.SystemGateway, et, f.gateway[et]))
		require.NoError(t, f.registry.Register(domain.SystemControlPlane, et, f.cp[et]))
	}
	audit, err := service.NewSyncAuditLog(f.store, log.Nop())
	require.NoError(t, err)
	f.audit = audit
	return f
}

func (f *fixture) on(system domain.System, et domain.EntityType) *testutil.MemoryManager {
	if system == domain.SystemControlPlane {
		return f.cp[et]
	}
	return f.gateway[et]
}
