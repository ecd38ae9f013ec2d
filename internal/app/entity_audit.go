package app

import (
	"context"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// entityRecorder captures the state around one dual write and records an
// audit entry per system touched, so entity commands can be rolled back
// like sync runs.
type entityRecorder struct {
	app        *Application
	entityType domain.EntityType
	action     domain.AuditAction
	name       string

	primaryBefore   domain.Entity
	secondaryBefore domain.Entity
}

func (a *Application) newEntityRecorder(t domain.EntityType, action domain.AuditAction, name string) *entityRecorder {
	return &entityRecorder{app: a, entityType: t, action: action, name: name}
}

// snapshot reads the current state on both systems. Missing entities and
// read failures leave the snapshot empty; the write itself reports them.
func (r *entityRecorder) snapshot(ctx context.Context, writer *service.DualWriter, idOrName string, payload domain.Entity, dataPlaneOnly bool) {
	registry := r.app.Registry
	if idOrName != "" {
		if primary, err := registry.Manager(domain.SystemGateway, r.entityType); err == nil {
			if before, err := primary.Get(ctx, idOrName); err == nil {
				r.primaryBefore = before
				if n := before.DisplayName(r.entityType); n != "" {
					r.name = n
				}
			}
		}
	}
	if r.action == domain.AuditActionCreate || dataPlaneOnly {
		return
	}

	primary := r.primaryBefore
	if primary == nil {
		primary = payload
	}
	if before, err := writer.SecondaryState(ctx, primary, idOrName); err == nil {
		r.secondaryBefore = before
	}
}

func (r *entityRecorder) entry(syncID string, target domain.System, action domain.AuditAction) domain.SyncAuditEntry {
	return domain.SyncAuditEntry{
		SyncID:     syncID,
		Operation:  domain.DirectionPush,
		EntityType: r.entityType,
		EntityName: r.name,
		Action:     action,
		Source:     domain.SystemGateway,
		Target:     target,
		Status:     domain.AuditStatusSuccess,
	}
}

func withError(e domain.SyncAuditEntry, msg string) domain.SyncAuditEntry {
	e.Status = domain.AuditStatusFailed
	e.Error = &msg
	return e
}

func (r *entityRecorder) record(ctx context.Context, result *domain.DualWriteResult, writeErr error) error {
	syncID, err := r.app.Audit.StartSync(ctx, domain.DirectionPush, false)
	if err != nil {
		return err
	}

	primary := r.entry(syncID, domain.SystemGateway, r.action)
	primary.EntityID = r.primaryBefore.ID()
	primary.BeforeState = r.primaryBefore
	if writeErr != nil || result == nil {
		msg := "write failed"
		if writeErr != nil {
			msg = writeErr.Error()
		}
		return r.app.Audit.Record(ctx, withError(primary, msg))
	}

	if n := result.PrimaryResult.DisplayName(r.entityType); n != "" {
		r.name = n
		primary.EntityName = n
	}
	if id := result.PrimaryResult.ID(); id != "" {
		primary.EntityID = id
	}
	if r.action == domain.AuditActionDelete {
		primary.BeforeState = result.PrimaryResult
	} else {
		primary.AfterState = result.PrimaryResult
	}
	if err := r.app.Audit.Record(ctx, primary); err != nil {
		return err
	}

	if result.SecondarySkipped || result.SecondaryNotConfigured {
		return nil
	}
	return r.recordSecondary(ctx, syncID, result)
}

func (r *entityRecorder) recordSecondary(ctx context.Context, syncID string, result *domain.DualWriteResult) error {
	action := r.action
	if action == domain.AuditActionUpdate && r.secondaryBefore == nil {
		// the update was applied as an upsert
		action = domain.AuditActionCreate
	}
	if action == domain.AuditActionDelete && r.secondaryBefore == nil && result.SecondaryError == nil {
		return nil
	}

	secondary := r.entry(syncID, result.SecondarySystem, action)
	secondary.EntityID = r.secondaryBefore.ID()
	secondary.BeforeState = r.secondaryBefore
	if result.SecondaryError != nil {
		return r.app.Audit.Record(ctx, withError(secondary, result.SecondaryErrorMessage()))
	}
	if id := result.SecondaryResult.ID(); id != "" {
		secondary.EntityID = id
	}
	if action != domain.AuditActionDelete {
		secondary.AfterState = result.SecondaryResult
	}
	if err := r.app.Audit.Record(ctx, secondary); err != nil {
		return errors.Wrap(err, errors.CodeAuditStore, "failed to record secondary audit entry")
	}
	return nil
}
