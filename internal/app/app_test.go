package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/adapters/audit/memory"
	"github.com/olusolaa/gateway-sync/internal/app"
	"github.com/olusolaa/gateway-sync/internal/config"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/internal/log"
	"github.com/olusolaa/gateway-sync/internal/reporting/text"
	"github.com/olusolaa/gateway-sync/internal/testutil"
)

// scriptedResolver answers every conflict with one action and every
// confirmation with one answer.
type scriptedResolver struct {
	t       *testing.T
	action  domain.ResolutionAction
	confirm bool
	asked   []string
	prompts []string
}

func (r *scriptedResolver) Resolve(_ context.Context, c domain.Conflict) (domain.Resolution, error) {
	if r.action == "" {
		r.t.Fatalf("unexpected prompt for %s", c.Key())
	}
	r.asked = append(r.asked, c.Key())
	return domain.Resolution{Conflict: c, Action: r.action}, nil
}

func (r *scriptedResolver) Confirm(_ context.Context, prompt string) (bool, error) {
	r.prompts = append(r.prompts, prompt)
	return r.confirm, nil
}

type harness struct {
	app      *app.Application
	out      *bytes.Buffer
	resolver *scriptedResolver
	gateway  map[domain.EntityType]*testutil.MemoryManager
	cp       map[domain.EntityType]*testutil.MemoryManager
}

func newHarness(t *testing.T, withControlPlane bool) *harness {
	t.Helper()
	h := &harness{
		out:      &bytes.Buffer{},
		resolver: &scriptedResolver{t: t, confirm: true},
		gateway:  make(map[domain.EntityType]*testutil.MemoryManager),
		cp:       make(map[domain.EntityType]*testutil.MemoryManager),
	}
	registry := service.NewManagerRegistry()
	for _, et := range domain.AllEntityTypes() {
		h.gateway[et] = testutil.NewMemoryManager(et, "gw")
		require.NoError(t, registry.Register(domain.SystemGateway, et, h.gateway[et]))
		if withControlPlane {
			h.cp[et] = testutil.NewMemoryManager(et, "cp")
			require.NoError(t, registry.Register(domain.SystemControlPlane, et, h.cp[et]))
		}
	}
	reporter := text.NewReporterWithWriter(text.Config{NoColor: true}, h.out, log.Nop())
	a, err := app.NewApplication(config.DefaultConfig(), log.Nop(), registry, memory.New(), reporter, h.resolver)
	require.NoError(t, err)
	h.app = a
	return h
}

func (h *harness) seedDrift() {
	h.gateway[domain.EntityTypeService].Seed(
		domain.Entity{"id": "gw-1", "name": "api", "host": "new.internal"},
		domain.Entity{"id": "gw-2", "name": "orders", "host": "orders.internal"},
	)
	h.cp[domain.EntityTypeService].Seed(domain.Entity{"id": "cp-1", "name": "api", "host": "old.internal"})
}

func TestPush(t *testing.T) {
	ctx := context.Background()

	t.Run("Force Keeps Source Without Prompting", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()

		report, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.NoError(t, err)
		require.NotNil(t, report)
		totals := report.Totals()
		assert.Equal(t, 1, totals.Created)
		assert.Equal(t, 1, totals.Updated)
		assert.Empty(t, h.resolver.prompts)

		api, err := h.cp[domain.EntityTypeService].Get(ctx, "api")
		require.NoError(t, err)
		assert.Equal(t, "new.internal", api["host"])
		assert.Contains(t, h.out.String(), "Sync Plan (push: gateway -> control_plane)")
	})

	t.Run("Interactive Keep Target", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		h.resolver.action = domain.ActionKeepTarget

		report, err := h.app.Push(ctx, app.SyncOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"services:api"}, h.resolver.asked)
		assert.Equal(t, []string{"Apply changes to control_plane?"}, h.resolver.prompts)
		assert.Equal(t, 1, report.Totals().Created)
		assert.Equal(t, 1, report.Totals().Skipped)

		api, err := h.cp[domain.EntityTypeService].Get(ctx, "api")
		require.NoError(t, err)
		assert.Equal(t, "old.internal", api["host"])
	})

	t.Run("Declined Confirmation Writes Nothing", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		h.resolver.action = domain.ActionKeepSource
		h.resolver.confirm = false

		report, err := h.app.Push(ctx, app.SyncOptions{})
		require.NoError(t, err)
		assert.Nil(t, report)
		assert.Zero(t, h.cp[domain.EntityTypeService].CallCount(testutil.OpCreate))
		assert.Zero(t, h.cp[domain.EntityTypeService].CallCount(testutil.OpUpdate))

		syncs, err := h.app.Audit.ListSyncs(ctx, service.ListSyncsOptions{})
		require.NoError(t, err)
		assert.Empty(t, syncs)
	})

	t.Run("Dry Run Previews Without Prompts", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()

		report, err := h.app.Push(ctx, app.SyncOptions{DryRun: true})
		require.NoError(t, err)
		assert.Empty(t, h.resolver.prompts)
		statuses := map[domain.AuditStatus]int{}
		for _, e := range report.Entries {
			statuses[e.Status]++
		}
		assert.Equal(t, map[domain.AuditStatus]int{domain.AuditStatusWouldCreate: 1, domain.AuditStatusWouldUpdate: 1}, statuses)
		assert.Zero(t, h.cp[domain.EntityTypeService].CallCount(testutil.OpUpdate))
		assert.Contains(t, h.out.String(), "[dry run]")
	})

	t.Run("Nothing To Do", func(t *testing.T) {
		h := newHarness(t, true)

		report, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.NoError(t, err)
		assert.Nil(t, report)
		assert.Contains(t, h.out.String(), "Everything is in sync.")
	})

	t.Run("Invalid Type", func(t *testing.T) {
		h := newHarness(t, true)

		_, err := h.app.Push(ctx, app.SyncOptions{Type: "widgets"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		msg, _, ok := apperrors.GetUserFacingMessage(err)
		assert.True(t, ok)
		assert.Equal(t, "invalid entity type: widgets", msg)
	})

	t.Run("Entity Failure Fails The Run", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		h.cp[domain.EntityTypeService].FailOn(testutil.OpCreate, errors.New("503 service unavailable"))

		report, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeSyncFailed))
		require.NotNil(t, report)
		assert.Equal(t, 1, report.Totals().Failed)
		assert.Equal(t, 1, report.Totals().Updated, "other entities still sync")
	})

	t.Run("Control Plane Not Configured", func(t *testing.T) {
		h := newHarness(t, false)

		_, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotConfigured))
	})
}

func TestPull(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.cp[domain.EntityTypeConsumer].Seed(domain.Entity{"id": "cp-9", "username": "alice"})

	report, err := h.app.Pull(ctx, app.SyncOptions{Force: true, Type: "consumers"})
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionPull, report.Direction)
	assert.Equal(t, 1, report.ByType[domain.EntityTypeConsumer].Created)

	alice, err := h.gateway[domain.EntityTypeConsumer].Get(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "cp-9", alice.ID())
}

func TestRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("Reverts A Push", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		report, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.NoError(t, err)

		result, err := h.app.Rollback(ctx, report.SyncID, app.RollbackOptions{Force: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.RolledBack)

		snapshot := h.cp[domain.EntityTypeService].Snapshot()
		require.Len(t, snapshot, 1)
		assert.Equal(t, "old.internal", snapshot[0]["host"])
		assert.Contains(t, h.out.String(), "Rollback Preview for "+report.SyncID)
	})

	t.Run("Dry Run Only Previews", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		report, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.NoError(t, err)

		result, err := h.app.Rollback(ctx, report.SyncID, app.RollbackOptions{DryRun: true})
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Len(t, h.cp[domain.EntityTypeService].Snapshot(), 2)
	})

	t.Run("Not Possible For A Dry Run Sync", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		report, err := h.app.Push(ctx, app.SyncOptions{DryRun: true})
		require.NoError(t, err)

		_, err = h.app.Rollback(ctx, report.SyncID, app.RollbackOptions{Force: true})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeRollbackNotPossible))
	})

	t.Run("Every Action Failing Is An Error", func(t *testing.T) {
		h := newHarness(t, true)
		h.seedDrift()
		report, err := h.app.Push(ctx, app.SyncOptions{Force: true})
		require.NoError(t, err)
		h.cp[domain.EntityTypeService].FailOn(testutil.OpUpdate, errors.New("down"))
		h.cp[domain.EntityTypeService].FailOn(testutil.OpDelete, errors.New("down"))

		result, err := h.app.Rollback(ctx, report.SyncID, app.RollbackOptions{Force: true})
		require.Error(t, err)
		assert.Equal(t, 2, result.Failed)
	})

	t.Run("Unknown Sync", func(t *testing.T) {
		h := newHarness(t, true)

		_, err := h.app.Rollback(ctx, "nope", app.RollbackOptions{})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})
}

func TestEntityCommands(t *testing.T) {
	ctx := context.Background()
	payload := domain.Entity{"name": "billing", "host": "billing.internal", "port": 8080}

	t.Run("Create Writes Both Systems And Audits Each", func(t *testing.T) {
		h := newHarness(t, true)

		result, err := h.app.EntityCreate(ctx, "services", payload, false)
		require.NoError(t, err)
		assert.True(t, result.IsFullySynced())

		summaries, err := h.app.Audit.ListSyncs(ctx, service.ListSyncsOptions{})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, domain.DirectionPush, summaries[0].Operation)
		assert.Equal(t, 2, summaries[0].Totals.Created)

		entries, err := h.app.Audit.GetSyncDetails(ctx, summaries[0].SyncID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.SystemGateway, entries[0].Target)
		assert.Equal(t, domain.SystemControlPlane, entries[1].Target)
		assert.Equal(t, "billing", entries[1].EntityName)

		_, err = h.app.Rollback(ctx, summaries[0].SyncID, app.RollbackOptions{Force: true})
		require.NoError(t, err)
		assert.Empty(t, h.gateway[domain.EntityTypeService].Snapshot())
		assert.Empty(t, h.cp[domain.EntityTypeService].Snapshot())
	})

	t.Run("Invalid Payload Calls Nothing", func(t *testing.T) {
		h := newHarness(t, true)

		_, err := h.app.EntityCreate(ctx, "services", domain.Entity{"host": "x"}, false)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		assert.Empty(t, h.gateway[domain.EntityTypeService].Calls())
	})

	t.Run("Partial Success Is Not An Error", func(t *testing.T) {
		h := newHarness(t, true)
		h.cp[domain.EntityTypeService].FailOn(testutil.OpCreate, errors.New("connection refused"))

		result, err := h.app.EntityCreate(ctx, "services", payload, false)
		require.NoError(t, err)
		assert.True(t, result.PartialSuccess())
		assert.Contains(t, h.out.String(), "partial sync")

		history, err := h.app.Audit.GetEntityHistory(ctx, domain.EntityTypeService, "billing", 0)
		require.NoError(t, err)
		require.Len(t, history, 2)
		statuses := []domain.AuditStatus{history[0].Status, history[1].Status}
		assert.ElementsMatch(t, []domain.AuditStatus{domain.AuditStatusSuccess, domain.AuditStatusFailed}, statuses)
	})

	t.Run("Update Upserts Missing Secondary", func(t *testing.T) {
		h := newHarness(t, true)
		h.gateway[domain.EntityTypeService].Seed(domain.Entity{"id": "gw-1", "name": "billing", "host": "old"})

		result, err := h.app.EntityUpdate(ctx, "services", "billing", payload, false)
		require.NoError(t, err)
		assert.True(t, result.IsFullySynced())

		history, err := h.app.Audit.GetEntityHistory(ctx, domain.EntityTypeService, "billing", 0)
		require.NoError(t, err)
		actions := map[domain.System]domain.AuditAction{}
		for _, e := range history {
			actions[e.Target] = e.Action
		}
		assert.Equal(t, map[domain.System]domain.AuditAction{
			domain.SystemGateway:      domain.AuditActionUpdate,
			domain.SystemControlPlane: domain.AuditActionCreate,
		}, actions)
		for _, e := range history {
			if e.Target == domain.SystemGateway {
				assert.Equal(t, "old", e.BeforeState["host"])
			}
		}
	})

	t.Run("Delete Data Plane Only", func(t *testing.T) {
		h := newHarness(t, true)
		h.gateway[domain.EntityTypeService].Seed(domain.Entity{"id": "gw-1", "name": "billing", "host": "b"})
		h.cp[domain.EntityTypeService].Seed(domain.Entity{"id": "cp-1", "name": "billing", "host": "b"})

		result, err := h.app.EntityDelete(ctx, "services", "billing", true)
		require.NoError(t, err)
		assert.True(t, result.SecondarySkipped)
		assert.Len(t, h.cp[domain.EntityTypeService].Snapshot(), 1)
		assert.Empty(t, h.cp[domain.EntityTypeService].Calls())
	})

	t.Run("Primary Failure Is Recorded And Returned", func(t *testing.T) {
		h := newHarness(t, false)
		h.gateway[domain.EntityTypeService].FailOn(testutil.OpCreate, errors.New("401"))

		_, err := h.app.EntityCreate(ctx, "services", payload, false)
		require.Error(t, err)

		history, err := h.app.Audit.GetEntityHistory(ctx, domain.EntityTypeService, "billing", 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.AuditStatusFailed, history[0].Status)
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.seedDrift()
	_, err := h.app.Push(ctx, app.SyncOptions{Force: true})
	require.NoError(t, err)
	_, err = h.app.EntityCreate(ctx, "consumers", domain.Entity{"username": "alice"}, false)
	require.NoError(t, err)

	t.Run("Filtered By Type", func(t *testing.T) {
		h.out.Reset()
		require.NoError(t, h.app.History(ctx, app.HistoryOptions{EntityType: "consumers"}))
		assert.Contains(t, h.out.String(), "push")
		assert.Equal(t, 2, bytes.Count(h.out.Bytes(), []byte("\n")), "header plus one run")
	})

	t.Run("Limit", func(t *testing.T) {
		h.out.Reset()
		require.NoError(t, h.app.History(ctx, app.HistoryOptions{Limit: 1}))
		assert.Equal(t, 2, bytes.Count(h.out.Bytes(), []byte("\n")), "header plus the newest run")
	})

	t.Run("Entity Name Needs Type", func(t *testing.T) {
		err := h.app.History(ctx, app.HistoryOptions{EntityName: "alice"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})

	t.Run("Entity History", func(t *testing.T) {
		h.out.Reset()
		require.NoError(t, h.app.History(ctx, app.HistoryOptions{EntityType: "services", EntityName: "api"}))
		assert.Contains(t, h.out.String(), "api")
		assert.Contains(t, h.out.String(), "update")
	})
}
