package json

import (
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

const ReporterTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Indent bool `mapstructure:"indent" yaml:"indent"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	return &Reporter{
		config: cfg,
		writer: w,
		logger: logger,
	}
}

func (r *Reporter) encode(ctx context.Context, v any) error {
	if ctx.Err() != nil {
		r.logger.Warnf(ctx, "JSON report generation cancelled.")
		return ctx.Err()
	}
	encoder := json.NewEncoder(r.writer)
	if r.config.Indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return errors.Wrap(err, errors.CodeInternal, "failed to encode JSON report")
	}
	return nil
}

type jsonStatus struct {
	EntityType domain.EntityType `json:"entity_type"`
	Counts     domain.Counts     `json:"counts"`
	Drifted    []jsonDrift       `json:"drifted,omitempty"`
}

type jsonDrift struct {
	Name           string   `json:"name"`
	GatewayID      string   `json:"gateway_id,omitempty"`
	ControlPlaneID string   `json:"control_plane_id,omitempty"`
	DriftFields    []string `json:"drift_fields"`
}

func (r *Reporter) ReportStatus(ctx context.Context, statuses []domain.TypeStatus) error {
	out := make([]jsonStatus, 0, len(statuses))
	for _, st := range statuses {
		item := jsonStatus{EntityType: st.EntityType, Counts: st.Counts}
		for _, u := range st.Drifted {
			item.Drifted = append(item.Drifted, jsonDrift{
				Name:           u.Name(),
				GatewayID:      u.GatewaySideID,
				ControlPlaneID: u.ControlPlaneSideID,
				DriftFields:    u.DriftFields,
			})
		}
		out = append(out, item)
	}
	return r.encode(ctx, map[string]any{"status": out})
}

type jsonChange struct {
	Kind        domain.ChangeKind `json:"kind"`
	EntityType  domain.EntityType `json:"entity_type"`
	Name        string            `json:"name"`
	DriftFields []string          `json:"drift_fields,omitempty"`
}

type jsonPlan struct {
	Direction domain.Direction `json:"direction"`
	DryRun    bool             `json:"dry_run"`
	Prune     bool             `json:"prune"`
	Changes   []jsonChange     `json:"changes"`
	Conflicts int              `json:"conflicts"`
	Updates   int              `json:"conflict_updates"`
	Skips     int              `json:"conflict_skips"`
}

func (r *Reporter) ReportPlan(ctx context.Context, plan *domain.SyncPlan, preview domain.ResolutionPreview) error {
	out := jsonPlan{
		Direction: plan.Request.Direction,
		DryRun:    plan.Request.DryRun,
		Prune:     plan.Request.Prune,
		Changes:   make([]jsonChange, 0, plan.ChangeCount()),
		Conflicts: len(plan.Conflicts()),
		Updates:   preview.UpdateCount(),
		Skips:     preview.SkipCount(),
	}
	for _, tp := range plan.Types {
		for _, c := range tp.Changes {
			out.Changes = append(out.Changes, jsonChange{
				Kind:        c.Kind,
				EntityType:  tp.EntityType,
				Name:        c.Entity.Name(),
				DriftFields: c.Entity.DriftFields,
			})
		}
	}
	return r.encode(ctx, out)
}

type jsonSync struct {
	SyncID  string                                    `json:"sync_id"`
	Action  domain.Direction                          `json:"operation"`
	DryRun  bool                                      `json:"dry_run"`
	Totals  domain.ActionCounts                       `json:"totals"`
	ByType  map[domain.EntityType]domain.ActionCounts `json:"by_type"`
	Entries []domain.SyncAuditEntry                   `json:"entries"`
}

func (r *Reporter) ReportSync(ctx context.Context, report *domain.SyncReport) error {
	entries := report.Entries
	if entries == nil {
		entries = []domain.SyncAuditEntry{}
	}
	return r.encode(ctx, jsonSync{
		SyncID:  report.SyncID,
		Action:  report.Direction,
		DryRun:  report.DryRun,
		Totals:  report.Totals(),
		ByType:  report.ByType,
		Entries: entries,
	})
}

type jsonDualWrite struct {
	EntityType             domain.EntityType  `json:"entity_type"`
	Operation              domain.AuditAction `json:"operation"`
	PrimarySystem          domain.System      `json:"primary_system"`
	SecondarySystem        domain.System      `json:"secondary_system"`
	PrimaryResult          domain.Entity      `json:"primary_result,omitempty"`
	SecondaryResult        domain.Entity      `json:"secondary_result,omitempty"`
	SecondarySkipped       bool               `json:"secondary_skipped"`
	SecondaryNotConfigured bool               `json:"secondary_not_configured"`
	SecondaryError         string             `json:"secondary_error,omitempty"`
	PartialSuccess         bool               `json:"partial_success"`
}

func (r *Reporter) ReportDualWrite(ctx context.Context, entityType domain.EntityType, result *domain.DualWriteResult) error {
	return r.encode(ctx, jsonDualWrite{
		EntityType:             entityType,
		Operation:              result.Operation,
		PrimarySystem:          result.PrimarySystem,
		SecondarySystem:        result.SecondarySystem,
		PrimaryResult:          result.PrimaryResult,
		SecondaryResult:        result.SecondaryResult,
		SecondarySkipped:       result.SecondarySkipped,
		SecondaryNotConfigured: result.SecondaryNotConfigured,
		SecondaryError:         result.SecondaryErrorMessage(),
		PartialSuccess:         result.PartialSuccess(),
	})
}

func (r *Reporter) ReportHistory(ctx context.Context, summaries []domain.SyncSummary) error {
	if summaries == nil {
		summaries = []domain.SyncSummary{}
	}
	return r.encode(ctx, map[string]any{"syncs": summaries})
}

func (r *Reporter) ReportEntries(ctx context.Context, entries []domain.SyncAuditEntry) error {
	if entries == nil {
		entries = []domain.SyncAuditEntry{}
	}
	return r.encode(ctx, map[string]any{"entries": entries})
}

func (r *Reporter) ReportRollbackPreview(ctx context.Context, preview *domain.RollbackPreview) error {
	return r.encode(ctx, preview)
}

func (r *Reporter) ReportRollback(ctx context.Context, result *domain.RollbackResult) error {
	return r.encode(ctx, result)
}
