package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// RollbackEngine undoes a completed sync run by replaying the inverse of
// its successful entries against the systems they targeted. It assumes no
// other sync or rollback runs against the same sync id concurrently.
type RollbackEngine struct {
	audit    *SyncAuditLog
	registry *ManagerRegistry
	logger   ports.Logger
}

func NewRollbackEngine(audit *SyncAuditLog, registry *ManagerRegistry, logger ports.Logger) (*RollbackEngine, error) {
	if audit == nil {
		return nil, errors.New(errors.CodeConfigValidation, "audit log cannot be nil")
	}
	if registry == nil {
		return nil, errors.New(errors.CodeConfigValidation, "manager registry cannot be nil")
	}
	return &RollbackEngine{
		audit:    audit,
		registry: registry,
		logger:   logger.WithFields(map[string]any{"component": "rollback"}),
	}, nil
}

// PreviewRollback derives the inverse actions of syncID without side
// effects. Dry-run, skipped and unsuccessful entries are ignored. Creates
// invert to deletes and updates to restores of the prior state; deletes
// cannot be inverted and only produce a warning. Actions are returned in
// reverse write order so dependants are undone before their parents.
func (r *RollbackEngine) PreviewRollback(ctx context.Context, syncID string, entityTypeFilter *domain.EntityType) (*domain.RollbackPreview, error) {
	entries, err := r.audit.GetSyncDetails(ctx, syncID)
	if err != nil {
		return nil, err
	}

	preview := &domain.RollbackPreview{
		SyncID:   syncID,
		Actions:  make([]domain.RollbackAction, 0),
		Warnings: make([]string, 0),
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if entityTypeFilter != nil && e.EntityType != *entityTypeFilter {
			continue
		}
		if e.DryRun || e.Action == domain.AuditActionSkip || e.Status != domain.AuditStatusSuccess {
			continue
		}

		label := fmt.Sprintf("%s '%s' on %s", e.EntityType.Singular(), e.EntityName, e.Target)
		switch e.Action {
		case domain.AuditActionCreate:
			id := e.AfterState.ID()
			if id == "" {
				preview.Warnings = append(preview.Warnings,
					fmt.Sprintf("cannot undo create of %s: no identity recorded after the write", label))
				continue
			}
			preview.Actions = append(preview.Actions, domain.RollbackAction{
				Op:         domain.RollbackOpDelete,
				Target:     e.Target,
				EntityType: e.EntityType,
				EntityID:   id,
				EntityName: e.EntityName,
			})
		case domain.AuditActionUpdate:
			if e.BeforeState == nil {
				preview.Warnings = append(preview.Warnings,
					fmt.Sprintf("cannot undo update of %s: no prior state recorded", label))
				continue
			}
			id := e.BeforeState.ID()
			if id == "" {
				id = e.EntityID
			}
			if id == "" {
				id = e.EntityName
			}
			preview.Actions = append(preview.Actions, domain.RollbackAction{
				Op:         domain.RollbackOpUpdate,
				Target:     e.Target,
				EntityType: e.EntityType,
				EntityID:   id,
				EntityName: e.EntityName,
				State:      e.BeforeState.Clone(),
			})
		case domain.AuditActionDelete:
			preview.Warnings = append(preview.Warnings,
				fmt.Sprintf("cannot undo delete of %s: deletes are not reversible", label))
		}
	}

	preview.CanRollback = len(preview.Actions) > 0
	return preview, nil
}

// Rollback executes the preview of syncID. Each action runs independently;
// failures are counted and collected while the rest continue. It fails with
// ROLLBACK_NOT_POSSIBLE when there is nothing to undo.
func (r *RollbackEngine) Rollback(ctx context.Context, syncID string, entityTypeFilter *domain.EntityType) (*domain.RollbackResult, error) {
	preview, err := r.PreviewRollback(ctx, syncID, entityTypeFilter)
	if err != nil {
		return nil, err
	}
	if !preview.CanRollback {
		return nil, errors.NewUserFacing(errors.CodeRollbackNotPossible,
			fmt.Sprintf("sync %s has no reversible operations", syncID),
			"Only successful, non dry-run creates and updates can be rolled back.")
	}

	result := &domain.RollbackResult{
		SyncID:  syncID,
		Skipped: len(preview.Warnings),
		Errors:  make([]string, 0),
	}
	for _, action := range preview.Actions {
		if err := ctx.Err(); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s '%s': %v", action.Op, action.EntityType.Singular(), action.EntityName, err))
			continue
		}
		if err := r.execute(ctx, action); err != nil {
			r.logger.Errorf(ctx, err, "Rollback %s of %s '%s' on %s failed", action.Op, action.EntityType.Singular(), action.EntityName, action.Target)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s '%s': %v", action.Op, action.EntityType.Singular(), action.EntityName, err))
			continue
		}
		r.logger.Infof(ctx, "Rolled back %s '%s' on %s (%s)", action.EntityType.Singular(), action.EntityName, action.Target, action.Op)
		result.RolledBack++
	}
	return result, nil
}

func (r *RollbackEngine) execute(ctx context.Context, action domain.RollbackAction) error {
	manager, err := r.registry.Manager(action.Target, action.EntityType)
	if err != nil {
		return err
	}
	switch action.Op {
	case domain.RollbackOpDelete:
		return manager.Delete(ctx, action.EntityID)
	case domain.RollbackOpUpdate:
		_, err := manager.Update(ctx, action.EntityID, writablePayload(action.EntityType, action.State))
		return err
	default:
		return errors.New(errors.CodeInternal, fmt.Sprintf("unknown rollback op '%s'", action.Op))
	}
}
