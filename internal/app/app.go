package app

import (
	"context"
	"fmt"
	"time"

	"github.com/olusolaa/gateway-sync/internal/config"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	"github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/internal/resources"
)

// Application exposes one method per CLI verb.
type Application struct {
	Config    *config.Config
	Logger    ports.Logger
	Registry  *service.ManagerRegistry
	Audit     *service.SyncAuditLog
	Sync      *service.SyncEngine
	Rollbacks *service.RollbackEngine
	Conflicts *service.ConflictService
	Reporter  ports.Reporter
	Resolver  ports.ConflictResolver
}

// NewApplication wires the core services over an already populated
// registry and audit store.
func NewApplication(
	cfg *config.Config,
	logger ports.Logger,
	registry *service.ManagerRegistry,
	store ports.AuditStore,
	reporter ports.Reporter,
	resolver ports.ConflictResolver,
) (*Application, error) {
	auditLog, err := service.NewSyncAuditLog(store, logger.WithFields(map[string]any{"component": "audit"}))
	if err != nil {
		return nil, err
	}
	engine, err := service.NewSyncEngine(registry, auditLog, logger.WithFields(map[string]any{"component": "sync"}),
		service.SyncEngineOptions{
			CompareFields: cfg.CompareFields(),
			IgnoreFields:  cfg.Sync.IgnoreFields,
			PageSize:      cfg.Sync.PageSize,
			SelectTags:    cfg.Sync.SelectTags,
		})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize sync engine")
	}
	rollbacks, err := service.NewRollbackEngine(auditLog, registry, logger.WithFields(map[string]any{"component": "rollback"}))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize rollback engine")
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Audit:     auditLog,
		Sync:      engine,
		Rollbacks: rollbacks,
		Conflicts: service.NewConflictService(logger.WithFields(map[string]any{"component": "conflicts"})),
		Reporter:  reporter,
		Resolver:  resolver,
	}, nil
}

type SyncOptions struct {
	DryRun bool
	// Force skips confirmation and resolves every conflict with the source
	// state.
	Force bool
	Prune bool
	// Type restricts the run to one entity type; empty means all.
	Type string
}

func parseTypes(s string) ([]domain.EntityType, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseEntityType(s)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeValidation, fmt.Sprintf("invalid entity type: %s", s),
			"Use one of: services, routes, consumers, plugins, upstreams, certificates.")
	}
	return []domain.EntityType{t}, nil
}

func (a *Application) Push(ctx context.Context, opts SyncOptions) (*domain.SyncReport, error) {
	return a.runSync(ctx, domain.DirectionPush, opts)
}

func (a *Application) Pull(ctx context.Context, opts SyncOptions) (*domain.SyncReport, error) {
	return a.runSync(ctx, domain.DirectionPull, opts)
}

// runSync plans, resolves conflicts, confirms and executes one run. A nil
// report without error means nothing was executed.
func (a *Application) runSync(ctx context.Context, direction domain.Direction, opts SyncOptions) (*domain.SyncReport, error) {
	types, err := parseTypes(opts.Type)
	if err != nil {
		return nil, err
	}

	plan, err := a.Sync.Plan(ctx, domain.SyncRequest{
		Direction: direction,
		DryRun:    opts.DryRun,
		Types:     types,
		Prune:     opts.Prune,
	})
	if err != nil {
		return nil, err
	}

	a.Conflicts.Clear()
	conflicts := a.Conflicts.CollectConflicts(ctx, plan.Lists(), direction)
	if err := a.resolveConflicts(ctx, conflicts, opts); err != nil {
		return nil, err
	}
	resolutions := a.Conflicts.Resolutions()

	if err := a.Reporter.ReportPlan(ctx, plan, a.Conflicts.BuildPreview(resolutions)); err != nil {
		return nil, err
	}
	if plan.ChangeCount() == 0 {
		return nil, nil
	}

	if !opts.DryRun && !opts.Force {
		ok, err := a.Resolver.Confirm(ctx, fmt.Sprintf("Apply changes to %s?", direction.Target()))
		if err != nil {
			return nil, err
		}
		if !ok {
			a.Logger.Infof(ctx, "%s aborted by operator", direction)
			return nil, nil
		}
	}

	report, err := a.Sync.Execute(ctx, plan, resolutions)
	if report != nil {
		if reportErr := a.Reporter.ReportSync(ctx, report); reportErr != nil && err == nil {
			err = reportErr
		}
	}
	if err != nil {
		return report, err
	}
	if report.HasFailures() {
		return report, errors.NewUserFacing(errors.CodeSyncFailed,
			fmt.Sprintf("%d entities failed to %s", report.Totals().Failed, direction),
			fmt.Sprintf("Inspect them with 'gateway-sync history --sync-id %s'.", report.SyncID))
	}
	return report, nil
}

// resolveConflicts records a resolution for every conflict. Forced and
// dry runs take the source state without prompting.
func (a *Application) resolveConflicts(ctx context.Context, conflicts []domain.Conflict, opts SyncOptions) error {
	if len(conflicts) == 0 {
		return nil
	}
	if opts.Force || opts.DryRun {
		_, err := a.Conflicts.ApplyBatchResolution(conflicts, domain.ActionKeepSource, nil)
		return err
	}
	if a.Resolver == nil {
		return errors.NewUserFacing(errors.CodeValidation, fmt.Sprintf("%d conflicts need a decision", len(conflicts)),
			"Run interactively or pass --force to keep the source state.")
	}
	for _, c := range conflicts {
		res, err := a.Resolver.Resolve(ctx, c)
		if err != nil {
			return err
		}
		if err := a.Conflicts.SetResolution(res); err != nil {
			return err
		}
	}
	summary := a.Conflicts.GetConflictSummary(conflicts)
	a.Logger.Debugf(ctx, "Resolved %d of %d conflicts", summary.Resolved, summary.Total)
	return nil
}

func (a *Application) Status(ctx context.Context, entityType string) ([]domain.TypeStatus, error) {
	types, err := parseTypes(entityType)
	if err != nil {
		return nil, err
	}
	statuses, err := a.Sync.Status(ctx, types)
	if err != nil {
		return nil, err
	}
	return statuses, a.Reporter.ReportStatus(ctx, statuses)
}

type HistoryOptions struct {
	SyncID     string
	EntityType string
	EntityName string
	Since      time.Time
	Limit      int
}

func (a *Application) History(ctx context.Context, opts HistoryOptions) error {
	if opts.SyncID != "" {
		entries, err := a.Audit.GetSyncDetails(ctx, opts.SyncID)
		if err != nil {
			return err
		}
		return a.Reporter.ReportEntries(ctx, entries)
	}

	types, err := parseTypes(opts.EntityType)
	if err != nil {
		return err
	}
	if opts.EntityName != "" {
		if len(types) == 0 {
			return errors.NewUserFacing(errors.CodeValidation, "--entity-name requires --entity-type", "")
		}
		entries, err := a.Audit.GetEntityHistory(ctx, types[0], opts.EntityName, opts.Limit)
		if err != nil {
			return err
		}
		return a.Reporter.ReportEntries(ctx, entries)
	}

	listOpts := service.ListSyncsOptions{Limit: opts.Limit, Since: opts.Since}
	if len(types) == 1 {
		listOpts.EntityType = types[0]
	}
	summaries, err := a.Audit.ListSyncs(ctx, listOpts)
	if err != nil {
		return err
	}
	return a.Reporter.ReportHistory(ctx, summaries)
}

type RollbackOptions struct {
	DryRun bool
	Force  bool
	Type   string
}

// Rollback previews and, unless dry-run, reverts the writes of one run. It
// fails when nothing can be rolled back or every action failed.
func (a *Application) Rollback(ctx context.Context, syncID string, opts RollbackOptions) (*domain.RollbackResult, error) {
	var filter *domain.EntityType
	types, err := parseTypes(opts.Type)
	if err != nil {
		return nil, err
	}
	if len(types) == 1 {
		filter = &types[0]
	}

	preview, err := a.Rollbacks.PreviewRollback(ctx, syncID, filter)
	if err != nil {
		return nil, err
	}
	if err := a.Reporter.ReportRollbackPreview(ctx, preview); err != nil {
		return nil, err
	}
	if !preview.CanRollback {
		return nil, errors.NewUserFacing(errors.CodeRollbackNotPossible,
			fmt.Sprintf("sync %s has no changes that can be rolled back", syncID), "")
	}
	if opts.DryRun {
		return nil, nil
	}
	if !opts.Force {
		ok, err := a.Resolver.Confirm(ctx, fmt.Sprintf("Roll back %d changes of %s?", len(preview.Actions), syncID))
		if err != nil {
			return nil, err
		}
		if !ok {
			a.Logger.Infof(ctx, "Rollback of %s aborted by operator", syncID)
			return nil, nil
		}
	}

	result, err := a.Rollbacks.Rollback(ctx, syncID, filter)
	if err != nil {
		return nil, err
	}
	if err := a.Reporter.ReportRollback(ctx, result); err != nil {
		return result, err
	}
	if result.RolledBack == 0 && result.Failed > 0 {
		return result, errors.NewUserFacing(errors.CodeSyncFailed,
			fmt.Sprintf("all %d rollback actions of %s failed", result.Failed, syncID), "")
	}
	return result, nil
}

// EntityCreate validates payload and writes it to the gateway, mirroring it
// to the control plane unless dataPlaneOnly.
func (a *Application) EntityCreate(ctx context.Context, entityType string, payload domain.Entity, dataPlaneOnly bool) (*domain.DualWriteResult, error) {
	t, writer, err := a.entityWriter(entityType)
	if err != nil {
		return nil, err
	}
	if err := resources.Validate(t, payload); err != nil {
		return nil, err
	}
	name := payload.DisplayName(t)
	if name == "" {
		name = payload.ID()
	}
	rec := a.newEntityRecorder(t, domain.AuditActionCreate, name)
	rec.snapshot(ctx, writer, "", payload, dataPlaneOnly)

	result, err := writer.Create(ctx, payload, dataPlaneOnly)
	return a.finishEntityWrite(ctx, rec, t, result, err)
}

func (a *Application) EntityUpdate(ctx context.Context, entityType, idOrName string, payload domain.Entity, dataPlaneOnly bool) (*domain.DualWriteResult, error) {
	t, writer, err := a.entityWriter(entityType)
	if err != nil {
		return nil, err
	}
	if err := resources.Validate(t, payload); err != nil {
		return nil, err
	}
	rec := a.newEntityRecorder(t, domain.AuditActionUpdate, idOrName)
	rec.snapshot(ctx, writer, idOrName, payload, dataPlaneOnly)

	result, err := writer.Update(ctx, idOrName, payload, dataPlaneOnly)
	return a.finishEntityWrite(ctx, rec, t, result, err)
}

func (a *Application) EntityDelete(ctx context.Context, entityType, idOrName string, dataPlaneOnly bool) (*domain.DualWriteResult, error) {
	t, writer, err := a.entityWriter(entityType)
	if err != nil {
		return nil, err
	}
	rec := a.newEntityRecorder(t, domain.AuditActionDelete, idOrName)
	rec.snapshot(ctx, writer, idOrName, nil, dataPlaneOnly)

	result, err := writer.Delete(ctx, idOrName, dataPlaneOnly)
	return a.finishEntityWrite(ctx, rec, t, result, err)
}

func (a *Application) entityWriter(entityType string) (domain.EntityType, *service.DualWriter, error) {
	types, err := parseTypes(entityType)
	if err != nil {
		return "", nil, err
	}
	if len(types) == 0 {
		return "", nil, errors.NewUserFacing(errors.CodeValidation, "entity type is required", "")
	}
	writer, err := service.NewDualWriterFromRegistry(a.Registry, types[0], a.Logger)
	if err != nil {
		return "", nil, err
	}
	return types[0], writer, nil
}

func (a *Application) finishEntityWrite(ctx context.Context, rec *entityRecorder, t domain.EntityType, result *domain.DualWriteResult, writeErr error) (*domain.DualWriteResult, error) {
	if err := rec.record(ctx, result, writeErr); err != nil {
		a.Logger.Errorf(ctx, err, "Failed to record audit entries for %s '%s'", t.Singular(), rec.name)
		if writeErr == nil {
			writeErr = err
		}
	}
	if result == nil {
		return nil, writeErr
	}
	if err := a.Reporter.ReportDualWrite(ctx, t, result); err != nil && writeErr == nil {
		writeErr = err
	}
	return result, writeErr
}
