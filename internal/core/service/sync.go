package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

const DefaultPageSize = 100

type SyncEngineOptions struct {
	// CompareFields overrides the schema field order per type.
	CompareFields map[domain.EntityType][]string
	IgnoreFields  []string
	PageSize      int

	// SelectTags scopes every listing to entities carrying all of these
	// tags.
	SelectTags []string
}

// SyncEngine drives push and pull: it plans the changes needed to align a
// target system with a source system and executes them entity by entity,
// recording every attempt in the audit log.
type SyncEngine struct {
	registry *ManagerRegistry
	audit    *SyncAuditLog
	logger   ports.Logger
	opts     SyncEngineOptions
}

func NewSyncEngine(registry *ManagerRegistry, audit *SyncAuditLog, logger ports.Logger, opts SyncEngineOptions) (*SyncEngine, error) {
	if registry == nil {
		return nil, errors.New(errors.CodeConfigValidation, "manager registry cannot be nil")
	}
	if audit == nil {
		return nil, errors.New(errors.CodeConfigValidation, "audit log cannot be nil")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.IgnoreFields == nil {
		opts.IgnoreFields = domain.DefaultIgnoredFields
	}
	return &SyncEngine{
		registry: registry,
		audit:    audit,
		logger:   logger.WithFields(map[string]any{"component": "sync"}),
		opts:     opts,
	}, nil
}

// ListAll drains every page of manager. opts.PageToken is ignored.
func ListAll(ctx context.Context, manager ports.EntityManager, opts ports.ListOptions) ([]domain.Entity, error) {
	var all []domain.Entity
	token := ""
	seen := make(map[string]bool)
	for {
		opts.PageToken = token
		page, next, err := manager.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		if seen[next] {
			return nil, errors.New(errors.CodePlatformAPIError, fmt.Sprintf("pagination loop detected at token '%s'", next))
		}
		seen[next] = true
		token = next
	}
}

func (e *SyncEngine) listOptions() ports.ListOptions {
	return ports.ListOptions{PageSize: e.opts.PageSize, Tags: e.opts.SelectTags}
}

// requestedTypes resolves the types of req in dependency order.
func requestedTypes(req domain.SyncRequest) []domain.EntityType {
	if len(req.Types) == 0 {
		return domain.AllEntityTypes()
	}
	return domain.SortEntityTypes(req.Types)
}

// planningTypes adds the parent types needed to translate the references of
// the requested ones. Parents not requested are unified for their ids only.
func planningTypes(requested []domain.EntityType) []domain.EntityType {
	maxOrder := -1
	for _, t := range requested {
		if t.Order() > maxOrder {
			maxOrder = t.Order()
		}
	}
	parents := make(map[domain.EntityType]bool)
	for _, t := range domain.ReferencedTypes() {
		parents[t] = true
	}
	types := append([]domain.EntityType(nil), requested...)
	for _, t := range domain.AllEntityTypes() {
		if t.Order() < maxOrder && parents[t] {
			types = append(types, t)
		}
	}
	return domain.SortEntityTypes(types)
}

// unify lists both sides of entityType concurrently and unifies them after
// rewriting the source side references through ids.
func (e *SyncEngine) unify(ctx context.Context, entityType domain.EntityType, direction domain.Direction, ids domain.IDMap) (*domain.UnifiedEntityList, error) {
	sourceManager, err := e.registry.Manager(direction.Source(), entityType)
	if err != nil {
		return nil, err
	}
	targetManager, err := e.registry.Manager(direction.Target(), entityType)
	if err != nil {
		return nil, err
	}

	var sourceList, targetList []domain.Entity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := ListAll(gctx, sourceManager, e.listOptions())
		if err != nil {
			return errors.Wrap(err, errors.CodeSyncFailed, fmt.Sprintf("failed to list %s on %s", entityType, direction.Source()))
		}
		sourceList = list
		return nil
	})
	g.Go(func() error {
		list, err := ListAll(gctx, targetManager, e.listOptions())
		if err != nil {
			return errors.Wrap(err, errors.CodeSyncFailed, fmt.Sprintf("failed to list %s on %s", entityType, direction.Target()))
		}
		targetList = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, entity := range sourceList {
		sourceList[i] = ids.RewriteReferences(entity)
	}

	gatewayList, controlPlaneList := sourceList, targetList
	if direction.Source() == domain.SystemControlPlane {
		gatewayList, controlPlaneList = targetList, sourceList
	}

	list := MergeEntities(entityType, gatewayList, controlPlaneList, UnifyOptions{
		CompareFields: e.opts.CompareFields[entityType],
		IgnoreFields:  e.opts.IgnoreFields,
	})
	for _, d := range list.Duplicates {
		e.logger.Warnf(ctx, "Ignoring %s %s on %s: key '%s' is already taken by another %s",
			entityType.Singular(), d.ID, d.System, d.Key, entityType.Singular())
	}
	for _, u := range list.InBoth() {
		ids.Add(entityType, u.SideID(direction.Source()), u.SideID(direction.Target()))
	}
	return list, nil
}

// Plan reads both systems and derives the changes that would align the
// target with the source. Drifted entities become conflicts; they need a
// resolution before Execute acts on them.
func (e *SyncEngine) Plan(ctx context.Context, req domain.SyncRequest) (*domain.SyncPlan, error) {
	if _, err := domain.ParseDirection(string(req.Direction)); err != nil {
		return nil, err
	}
	for _, t := range req.Types {
		if !t.Valid() {
			return nil, errors.NewUserFacing(errors.CodeValidation, fmt.Sprintf("invalid entity type: %s", t), "")
		}
	}

	requested := requestedTypes(req)
	wanted := make(map[domain.EntityType]bool, len(requested))
	for _, t := range requested {
		wanted[t] = true
	}

	plan := &domain.SyncPlan{Request: req, IDs: domain.IDMap{}}
	for _, entityType := range planningTypes(requested) {
		list, err := e.unify(ctx, entityType, req.Direction, plan.IDs)
		if err != nil {
			return nil, err
		}
		if !wanted[entityType] {
			continue
		}

		tp := domain.TypePlan{EntityType: entityType, List: list, Changes: make([]domain.PlannedChange, 0)}
		for _, u := range list.All() {
			switch {
			case u.OnlyOn(req.Direction.Source()):
				tp.Changes = append(tp.Changes, domain.PlannedChange{Kind: domain.ChangeCreate, Entity: u})
			case u.OnlyOn(req.Direction.Target()):
				if req.Prune {
					tp.Changes = append(tp.Changes, domain.PlannedChange{Kind: domain.ChangeDelete, Entity: u})
				}
			case u.HasDrift:
				conflict, err := domain.NewConflict(u, req.Direction)
				if err != nil {
					return nil, err
				}
				tp.Changes = append(tp.Changes, domain.PlannedChange{Kind: domain.ChangeConflict, Entity: u, Conflict: &conflict})
			}
		}
		e.logger.Debugf(ctx, "Planned %d change(s) for %s", len(tp.Changes), entityType)
		plan.Types = append(plan.Types, tp)
	}

	return plan, nil
}

// Status unifies each type without planning any change.
func (e *SyncEngine) Status(ctx context.Context, types []domain.EntityType) ([]domain.TypeStatus, error) {
	requested := requestedTypes(domain.SyncRequest{Types: types})
	wanted := make(map[domain.EntityType]bool, len(requested))
	for _, t := range requested {
		wanted[t] = true
	}

	ids := domain.IDMap{}
	statuses := make([]domain.TypeStatus, 0, len(requested))
	for _, entityType := range planningTypes(requested) {
		list, err := e.unify(ctx, entityType, domain.DirectionPush, ids)
		if err != nil {
			return nil, err
		}
		if !wanted[entityType] {
			continue
		}
		statuses = append(statuses, domain.TypeStatus{
			EntityType: entityType,
			Counts:     list.Counts(),
			Drifted:    list.WithDrift(),
		})
	}
	return statuses, nil
}

// Execute applies plan under a new sync id. A failure on one entity is
// recorded and the run continues; the run stops only when the audit trail
// cannot be written or ctx is done. Dry runs record intended actions
// without calling any manager.
func (e *SyncEngine) Execute(ctx context.Context, plan *domain.SyncPlan, resolutions []domain.Resolution) (*domain.SyncReport, error) {
	if plan == nil {
		return nil, errors.New(errors.CodeInternal, "sync plan cannot be nil")
	}
	req := plan.Request
	syncID, err := e.audit.StartSync(ctx, req.Direction, req.DryRun)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.Resolution, len(resolutions))
	for _, r := range resolutions {
		byKey[r.Conflict.Key()] = r
	}

	report := &domain.SyncReport{
		SyncID:    syncID,
		Direction: req.Direction,
		DryRun:    req.DryRun,
		ByType:    make(map[domain.EntityType]domain.ActionCounts),
	}
	ids := plan.IDs.Clone()
	if ids == nil {
		ids = domain.IDMap{}
	}

	for _, tp := range plan.Types {
		counts := report.ByType[tp.EntityType]
		for _, change := range tp.Changes {
			if err := ctx.Err(); err != nil {
				report.ByType[tp.EntityType] = counts
				return report, errors.Wrap(err, errors.CodeSyncFailed, "sync interrupted")
			}

			entry := e.apply(ctx, syncID, req, change, byKey, ids)
			if err := e.audit.Record(ctx, entry); err != nil {
				report.ByType[tp.EntityType] = counts
				return report, err
			}
			counts.Add(entry)
			report.Entries = append(report.Entries, entry)
		}
		report.ByType[tp.EntityType] = counts
	}

	totals := report.Totals()
	e.logger.Infof(ctx, "Sync %s finished: %d created, %d updated, %d deleted, %d skipped, %d failed",
		syncID, totals.Created, totals.Updated, totals.Deleted, totals.Skipped, totals.Failed)
	return report, nil
}

// apply performs one planned change and describes it as an audit entry.
func (e *SyncEngine) apply(ctx context.Context, syncID string, req domain.SyncRequest, change domain.PlannedChange, resolutions map[string]domain.Resolution, ids domain.IDMap) domain.SyncAuditEntry {
	u := change.Entity
	source, target := req.Direction.Source(), req.Direction.Target()
	entry := domain.SyncAuditEntry{
		SyncID:      syncID,
		Operation:   req.Direction,
		DryRun:      req.DryRun,
		EntityType:  u.EntityType,
		EntityName:  u.Name(),
		Source:      source,
		Target:      target,
		DriftFields: u.DriftFields,
	}

	var payload domain.Entity
	switch change.Kind {
	case domain.ChangeCreate:
		entry.Action = domain.AuditActionCreate
		entry.EntityID = u.SideID(source)
		payload = writablePayload(u.EntityType, ids.RewriteReferences(u.SideEntity(source)))
	case domain.ChangeDelete:
		entry.Action = domain.AuditActionDelete
		entry.EntityID = u.SideID(target)
		entry.BeforeState = u.SideEntity(target).Clone()
	case domain.ChangeConflict:
		entry.EntityID = u.SideID(target)
		resolution, ok := resolutions[domain.ConflictKey(u.EntityType, u.Key)]
		if !ok {
			e.logger.Warnf(ctx, "No resolution for %s '%s', skipping", u.EntityType.Singular(), u.Name())
			entry.Action = domain.AuditActionSkip
			entry.Status = domain.AuditStatusSuccess
			return entry
		}
		switch resolution.Action {
		case domain.ActionKeepSource:
			payload = u.SideEntity(source)
		case domain.ActionMerge:
			payload = resolution.MergedState
		default:
			entry.Action = domain.AuditActionSkip
			entry.Status = domain.AuditStatusSuccess
			return entry
		}
		entry.Action = domain.AuditActionUpdate
		entry.BeforeState = u.SideEntity(target).Clone()
		payload = writablePayload(u.EntityType, ids.RewriteReferences(payload))
	}

	if req.DryRun {
		entry.Status = domain.WouldStatus(entry.Action)
		entry.AfterState = payload
		return entry
	}

	manager, err := e.registry.Manager(target, u.EntityType)
	if err != nil {
		return failedEntry(entry, err)
	}

	switch entry.Action {
	case domain.AuditActionCreate:
		created, err := manager.Create(ctx, payload)
		if err != nil {
			e.logger.Errorf(ctx, err, "Failed to create %s '%s' on %s", u.EntityType.Singular(), u.Name(), target)
			return failedEntry(entry, err)
		}
		ids.Add(u.EntityType, u.SideID(source), created.ID())
		entry.AfterState = created
	case domain.AuditActionUpdate:
		updated, err := manager.Update(ctx, targetRef(u, target), payload)
		if err != nil {
			e.logger.Errorf(ctx, err, "Failed to update %s '%s' on %s", u.EntityType.Singular(), u.Name(), target)
			return failedEntry(entry, err)
		}
		entry.AfterState = updated
	case domain.AuditActionDelete:
		if err := manager.Delete(ctx, targetRef(u, target)); err != nil {
			e.logger.Errorf(ctx, err, "Failed to delete %s '%s' on %s", u.EntityType.Singular(), u.Name(), target)
			return failedEntry(entry, err)
		}
	}
	entry.Status = domain.AuditStatusSuccess
	return entry
}

func targetRef(u domain.UnifiedEntity, target domain.System) string {
	if id := u.SideID(target); id != "" {
		return id
	}
	return u.Key
}

func failedEntry(entry domain.SyncAuditEntry, err error) domain.SyncAuditEntry {
	msg := err.Error()
	entry.Status = domain.AuditStatusFailed
	entry.Error = &msg
	return entry
}
