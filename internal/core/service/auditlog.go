package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// SyncAuditLog is the append-only trail of every attempted sync operation.
type SyncAuditLog struct {
	store  ports.AuditStore
	logger ports.Logger
	now    func() time.Time
	newID  func() (uuid.UUID, error)
}

func NewSyncAuditLog(store ports.AuditStore, logger ports.Logger) (*SyncAuditLog, error) {
	if store == nil {
		return nil, errors.New(errors.CodeConfigValidation, "audit store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil")
	}
	return &SyncAuditLog{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewV7,
	}, nil
}

// StartSync allocates the identifier grouping the entries of one run.
// Nothing is written until the first Record.
func (a *SyncAuditLog) StartSync(ctx context.Context, operation domain.Direction, dryRun bool) (string, error) {
	if _, err := domain.ParseDirection(string(operation)); err != nil {
		return "", err
	}
	id, err := a.newID()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to allocate sync id")
	}
	a.logger.Debugf(ctx, "Started %s sync %s (dry run: %t)", operation, id, dryRun)
	return id.String(), nil
}

// Record appends one entry. A zero timestamp is set to the current time.
func (a *SyncAuditLog) Record(ctx context.Context, entry domain.SyncAuditEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = a.now()
	}
	if err := a.store.Append(ctx, entry.Clone()); err != nil {
		return errors.Wrap(err, errors.CodeAuditStore, "failed to append audit entry")
	}
	return nil
}

// GetSyncDetails returns every entry of syncID in write order. An unknown
// id fails with VALIDATION_ERROR.
func (a *SyncAuditLog) GetSyncDetails(ctx context.Context, syncID string) ([]domain.SyncAuditEntry, error) {
	if syncID == "" {
		return nil, errors.NewUserFacing(errors.CodeValidation, "sync id is required", "")
	}
	entries, err := a.store.BySyncID(ctx, syncID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAuditStore, "failed to read audit entries")
	}
	if len(entries) == 0 {
		return nil, errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("unknown sync id: %s", syncID), "Run 'gateway-sync history' to list recorded syncs.")
	}
	return entries, nil
}

type ListSyncsOptions struct {
	Limit int
	// Since keeps runs started at or after it.
	Since time.Time
	// EntityType keeps runs that touched it, when set.
	EntityType domain.EntityType
}

// ListSyncs summarises recorded runs, newest first. Runs are summarised
// from all of their entries before any filter applies.
func (a *SyncAuditLog) ListSyncs(ctx context.Context, opts ListSyncsOptions) ([]domain.SyncSummary, error) {
	entries, err := a.store.All(ctx, time.Time{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAuditStore, "failed to read audit entries")
	}

	bySync := make(map[string]*domain.SyncSummary)
	for _, e := range entries {
		s, ok := bySync[e.SyncID]
		if !ok {
			s = &domain.SyncSummary{
				SyncID:     e.SyncID,
				Operation:  e.Operation,
				DryRun:     e.DryRun,
				StartedAt:  e.Timestamp,
				FinishedAt: e.Timestamp,
				ByType:     make(map[domain.EntityType]domain.ActionCounts),
			}
			bySync[e.SyncID] = s
		}
		if e.Timestamp.Before(s.StartedAt) {
			s.StartedAt = e.Timestamp
		}
		if e.Timestamp.After(s.FinishedAt) {
			s.FinishedAt = e.Timestamp
		}
		s.EntryCount++
		counts := s.ByType[e.EntityType]
		counts.Add(e)
		s.ByType[e.EntityType] = counts
		s.Totals.Add(e)
	}

	summaries := make([]domain.SyncSummary, 0, len(bySync))
	for _, s := range bySync {
		if s.StartedAt.Before(opts.Since) {
			continue
		}
		if opts.EntityType != "" {
			if _, ok := s.ByType[opts.EntityType]; !ok {
				continue
			}
		}
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].StartedAt.Equal(summaries[j].StartedAt) {
			return summaries[i].StartedAt.After(summaries[j].StartedAt)
		}
		return summaries[i].SyncID > summaries[j].SyncID
	})
	if opts.Limit > 0 && len(summaries) > opts.Limit {
		summaries = summaries[:opts.Limit]
	}
	return summaries, nil
}

// GetEntityHistory returns the entries touching one entity, newest first.
func (a *SyncAuditLog) GetEntityHistory(ctx context.Context, entityType domain.EntityType, entityName string, limit int) ([]domain.SyncAuditEntry, error) {
	if !entityType.Valid() {
		return nil, errors.NewUserFacing(errors.CodeValidation, fmt.Sprintf("invalid entity type: %s", entityType), "")
	}
	entries, err := a.store.ByEntity(ctx, entityType, entityName)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAuditStore, "failed to read audit entries")
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func validateEntry(e domain.SyncAuditEntry) error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.CodeValidation, "invalid audit entry: "+fmt.Sprintf(format, args...))
	}
	if e.SyncID == "" {
		return invalid("sync id is required")
	}
	if _, err := domain.ParseDirection(string(e.Operation)); err != nil {
		return invalid("unknown operation '%s'", e.Operation)
	}
	if !e.EntityType.Valid() {
		return invalid("unknown entity type '%s'", e.EntityType)
	}
	switch e.Action {
	case domain.AuditActionCreate, domain.AuditActionUpdate, domain.AuditActionDelete, domain.AuditActionSkip:
	default:
		return invalid("unknown action '%s'", e.Action)
	}

	switch e.Status {
	case domain.AuditStatusWouldCreate, domain.AuditStatusWouldUpdate, domain.AuditStatusWouldDelete:
		if !e.DryRun {
			return invalid("status '%s' requires a dry run", e.Status)
		}
		if e.Status != domain.WouldStatus(e.Action) {
			return invalid("status '%s' does not match action '%s'", e.Status, e.Action)
		}
	case domain.AuditStatusSuccess:
		if e.DryRun && e.Action != domain.AuditActionSkip {
			return invalid("dry run %s must use status '%s'", e.Action, domain.WouldStatus(e.Action))
		}
	case domain.AuditStatusFailed:
		if e.DryRun {
			return invalid("dry run entries cannot fail")
		}
		if e.Error == nil {
			return invalid("failed entries must carry an error")
		}
	default:
		return invalid("unknown status '%s'", e.Status)
	}
	return nil
}
