package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/internal/log"
	"github.com/olusolaa/gateway-sync/internal/testutil"
)

func newRollbackEngine(t *testing.T, f *fixture) *service.RollbackEngine {
	t.Helper()
	r, err := service.NewRollbackEngine(f.audit, f.registry, log.Nop())
	require.NoError(t, err)
	return r
}

func TestPreviewRollback(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	t.Run("Create Inverts To Delete", func(t *testing.T) {
		f := newFixture(t)
		e := auditEntry("s1", base, domain.EntityTypeService, "orders", domain.AuditActionCreate, domain.AuditStatusSuccess)
		e.AfterState = domain.Entity{"id": "cp-9"}
		require.NoError(t, f.audit.Record(ctx, e))

		preview, err := newRollbackEngine(t, f).PreviewRollback(ctx, "s1", nil)
		require.NoError(t, err)
		require.Len(t, preview.Actions, 1)
		assert.Equal(t, domain.RollbackAction{
			Op:         domain.RollbackOpDelete,
			Target:     domain.SystemControlPlane,
			EntityType: domain.EntityTypeService,
			EntityID:   "cp-9",
			EntityName: "orders",
		}, preview.Actions[0])
		assert.True(t, preview.CanRollback)
		assert.Empty(t, preview.Warnings)
	})

	t.Run("Delete Is Not Reversible", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "orders", domain.AuditActionDelete, domain.AuditStatusSuccess)))

		preview, err := newRollbackEngine(t, f).PreviewRollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Empty(t, preview.Actions)
		assert.Len(t, preview.Warnings, 1)
		assert.False(t, preview.CanRollback)
	})

	t.Run("Ignores Dry Run Skip And Failed", func(t *testing.T) {
		f := newFixture(t)
		dry := auditEntry("s1", base, domain.EntityTypeService, "a", domain.AuditActionCreate, domain.AuditStatusWouldCreate)
		dry.DryRun = true
		dry.AfterState = domain.Entity{"name": "a"}
		msg := "refused"
		failed := auditEntry("s1", base, domain.EntityTypeService, "b", domain.AuditActionUpdate, domain.AuditStatusFailed)
		failed.Error = &msg
		failed.BeforeState = domain.Entity{"id": "cp-2", "name": "b"}
		require.NoError(t, f.audit.Record(ctx, dry))
		require.NoError(t, f.audit.Record(ctx, failed))
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "c", domain.AuditActionSkip, domain.AuditStatusSuccess)))

		preview, err := newRollbackEngine(t, f).PreviewRollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Empty(t, preview.Actions)
		assert.Empty(t, preview.Warnings)
		assert.False(t, preview.CanRollback)
	})

	t.Run("Missing States Warn", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "a", domain.AuditActionCreate, domain.AuditStatusSuccess)))
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "b", domain.AuditActionUpdate, domain.AuditStatusSuccess)))

		preview, err := newRollbackEngine(t, f).PreviewRollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Empty(t, preview.Actions)
		assert.Len(t, preview.Warnings, 2)
	})

	t.Run("Type Filter Excludes Other Types Entirely", func(t *testing.T) {
		f := newFixture(t)
		upd := auditEntry("s1", base, domain.EntityTypeRoute, "r", domain.AuditActionUpdate, domain.AuditStatusSuccess)
		upd.EntityID = "cp-r"
		upd.BeforeState = domain.Entity{"id": "cp-r", "name": "r", "paths": []any{"/old"}}
		require.NoError(t, f.audit.Record(ctx, upd))
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "orders", domain.AuditActionDelete, domain.AuditStatusSuccess)))

		routes := domain.EntityTypeRoute
		preview, err := newRollbackEngine(t, f).PreviewRollback(ctx, "s1", &routes)
		require.NoError(t, err)
		require.Len(t, preview.Actions, 1)
		assert.Empty(t, preview.Warnings)
		assert.Equal(t, domain.RollbackOpUpdate, preview.Actions[0].Op)
		assert.Equal(t, "cp-r", preview.Actions[0].EntityID)
		assert.Equal(t, []any{"/old"}, preview.Actions[0].State["paths"])
	})

	t.Run("Preview Is Idempotent", func(t *testing.T) {
		f := newFixture(t)
		for _, name := range []string{"a", "b"} {
			e := auditEntry("s1", base, domain.EntityTypeService, name, domain.AuditActionCreate, domain.AuditStatusSuccess)
			e.AfterState = domain.Entity{"id": "cp-" + name}
			require.NoError(t, f.audit.Record(ctx, e))
		}
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "c", domain.AuditActionDelete, domain.AuditStatusSuccess)))

		r := newRollbackEngine(t, f)
		first, err := r.PreviewRollback(ctx, "s1", nil)
		require.NoError(t, err)
		second, err := r.PreviewRollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Equal(t, first.Actions, second.Actions)
		assert.Equal(t, first.Warnings, second.Warnings)
		assert.Equal(t, "cp-b", first.Actions[0].EntityID, "undo runs in reverse write order")
	})

	t.Run("Unknown Sync", func(t *testing.T) {
		_, err := newRollbackEngine(t, newFixture(t)).PreviewRollback(ctx, "nope", nil)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	t.Run("Deletes Created Entity", func(t *testing.T) {
		f := newFixture(t)
		f.cp[domain.EntityTypeService].Seed(domain.Entity{"id": "cp-9", "name": "orders"})
		e := auditEntry("s1", base, domain.EntityTypeService, "orders", domain.AuditActionCreate, domain.AuditStatusSuccess)
		e.AfterState = domain.Entity{"id": "cp-9"}
		require.NoError(t, f.audit.Record(ctx, e))

		result, err := newRollbackEngine(t, f).Rollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.RolledBack)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, []testutil.Call{{Op: testutil.OpDelete, Key: "cp-9"}}, f.cp[domain.EntityTypeService].Calls())
		assert.Empty(t, f.cp[domain.EntityTypeService].Snapshot())
	})

	t.Run("Restores Prior State", func(t *testing.T) {
		f := newFixture(t)
		f.cp[domain.EntityTypeService].Seed(domain.Entity{"id": "cp-1", "name": "api", "host": "new.local"})
		e := auditEntry("s1", base, domain.EntityTypeService, "api", domain.AuditActionUpdate, domain.AuditStatusSuccess)
		e.BeforeState = domain.Entity{"id": "cp-1", "name": "api", "host": "old.local", "created_at": 5}
		require.NoError(t, f.audit.Record(ctx, e))

		result, err := newRollbackEngine(t, f).Rollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.RolledBack)
		restored := f.cp[domain.EntityTypeService].Snapshot()[0]
		assert.Equal(t, "old.local", restored["host"])
		assert.NotContains(t, restored, "created_at")
	})

	t.Run("Fail Soft", func(t *testing.T) {
		f := newFixture(t)
		f.cp[domain.EntityTypeService].Seed(domain.Entity{"id": "cp-b", "name": "b"})
		for _, name := range []string{"a", "b"} {
			e := auditEntry("s1", base, domain.EntityTypeService, name, domain.AuditActionCreate, domain.AuditStatusSuccess)
			e.AfterState = domain.Entity{"id": "cp-" + name}
			require.NoError(t, f.audit.Record(ctx, e))
		}
		require.NoError(t, f.audit.Record(ctx, auditEntry("s1", base, domain.EntityTypeService, "c", domain.AuditActionDelete, domain.AuditStatusSuccess)))

		result, err := newRollbackEngine(t, f).Rollback(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.RolledBack)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "'a'")
	})

	t.Run("Nothing To Roll Back", func(t *testing.T) {
		f := newFixture(t)
		dry := auditEntry("s1", base, domain.EntityTypeService, "orders", domain.AuditActionCreate, domain.AuditStatusWouldCreate)
		dry.DryRun = true
		require.NoError(t, f.audit.Record(ctx, dry))

		_, err := newRollbackEngine(t, f).Rollback(ctx, "s1", nil)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeRollbackNotPossible))
	})
}
