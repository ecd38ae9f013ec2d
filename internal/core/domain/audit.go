package domain

import (
	"time"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionSkip   AuditAction = "skip"
)

type AuditStatus string

const (
	AuditStatusSuccess     AuditStatus = "success"
	AuditStatusFailed      AuditStatus = "failed"
	AuditStatusWouldCreate AuditStatus = "would_create"
	AuditStatusWouldUpdate AuditStatus = "would_update"
	AuditStatusWouldDelete AuditStatus = "would_delete"
)

// WouldStatus maps an action to its dry-run status.
func WouldStatus(a AuditAction) AuditStatus {
	switch a {
	case AuditActionCreate:
		return AuditStatusWouldCreate
	case AuditActionUpdate:
		return AuditStatusWouldUpdate
	case AuditActionDelete:
		return AuditStatusWouldDelete
	default:
		return AuditStatusSuccess
	}
}

// SyncAuditEntry is one immutable row of the audit trail.
type SyncAuditEntry struct {
	SyncID      string      `json:"sync_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Operation   Direction   `json:"operation"`
	DryRun      bool        `json:"dry_run"`
	EntityType  EntityType  `json:"entity_type"`
	EntityID    string      `json:"entity_id,omitempty"`
	EntityName  string      `json:"entity_name"`
	Action      AuditAction `json:"action"`
	Source      System      `json:"source"`
	Target      System      `json:"target"`
	Status      AuditStatus `json:"status"`
	BeforeState Entity      `json:"before_state,omitempty"`
	AfterState  Entity      `json:"after_state,omitempty"`
	DriftFields []string    `json:"drift_fields,omitempty"`
	Error       *string     `json:"error,omitempty"`
}

func (e SyncAuditEntry) Clone() SyncAuditEntry {
	out := e
	out.BeforeState = e.BeforeState.Clone()
	out.AfterState = e.AfterState.Clone()
	if e.DriftFields != nil {
		out.DriftFields = append([]string(nil), e.DriftFields...)
	}
	if e.Error != nil {
		msg := *e.Error
		out.Error = &msg
	}
	return out
}

func (e SyncAuditEntry) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// ActionCounts tallies entries of one entity type within a run.
type ActionCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (c *ActionCounts) Add(e SyncAuditEntry) {
	if e.Status == AuditStatusFailed {
		c.Failed++
		return
	}
	switch e.Action {
	case AuditActionCreate:
		c.Created++
	case AuditActionUpdate:
		c.Updated++
	case AuditActionDelete:
		c.Deleted++
	case AuditActionSkip:
		c.Skipped++
	}
}

func (c ActionCounts) Plus(o ActionCounts) ActionCounts {
	return ActionCounts{
		Created: c.Created + o.Created,
		Updated: c.Updated + o.Updated,
		Deleted: c.Deleted + o.Deleted,
		Skipped: c.Skipped + o.Skipped,
		Failed:  c.Failed + o.Failed,
	}
}

// SyncSummary aggregates the entries of one run.
type SyncSummary struct {
	SyncID     string                      `json:"sync_id"`
	Operation  Direction                   `json:"operation"`
	DryRun     bool                        `json:"dry_run"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	EntryCount int                         `json:"entry_count"`
	Totals     ActionCounts                `json:"totals"`
	ByType     map[EntityType]ActionCounts `json:"by_type"`
}
