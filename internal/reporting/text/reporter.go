package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger

	red     func(a ...any) string
	yellow  func(a ...any) string
	green   func(a ...any) string
	cyan    func(a ...any) string
	magenta func(a ...any) string
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if !isTerminal(os.Stdout) {
		cfg.NoColor = true
	}
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	if cfg.NoColor {
		color.NoColor = true
	}
	return &Reporter{
		config:  cfg,
		writer:  w,
		logger:  logger,
		red:     color.New(color.FgRed).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		green:   color.New(color.FgGreen).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		magenta: color.New(color.FgMagenta).SprintFunc(),
	}
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
}

func (r *Reporter) ReportStatus(ctx context.Context, statuses []domain.TypeStatus) error {
	tw := r.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "Sync Status")
	fmt.Fprintln(tw, "===========")
	fmt.Fprintln(tw, "Type\tGateway only\tControl plane only\tIn both\tDrifted\tIn sync")
	fmt.Fprintln(tw, "----\t------------\t------------------\t-------\t-------\t-------")

	var drifted []domain.UnifiedEntity
	for _, st := range statuses {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c := st.Counts
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", st.EntityType,
			r.cyan(c.GatewayOnly), r.cyan(c.ControlPlaneOnly), c.InBoth,
			r.red(c.WithDrift), r.green(c.Synced))
		drifted = append(drifted, st.Drifted...)
	}

	if len(drifted) > 0 {
		fmt.Fprintln(tw, "\nDrifted:")
		for _, u := range drifted {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.red("~"), u.EntityType.Singular()+" '"+u.Name()+"'", strings.Join(u.DriftFields, ", "))
		}
	}
	return nil
}

func (r *Reporter) ReportPlan(ctx context.Context, plan *domain.SyncPlan, preview domain.ResolutionPreview) error {
	tw := r.table()
	defer tw.Flush()

	req := plan.Request
	fmt.Fprintf(tw, "Sync Plan (%s: %s -> %s)\n", req.Direction, req.Direction.Source(), req.Direction.Target())
	if req.DryRun {
		fmt.Fprintln(tw, r.yellow("Dry run: no changes will be written."))
	}
	if plan.ChangeCount() == 0 {
		fmt.Fprintln(tw, r.green("Everything is in sync."))
		return nil
	}

	fmt.Fprintln(tw, "Change\tType\tName\tDetails")
	fmt.Fprintln(tw, "------\t----\t----\t-------")
	for _, tp := range plan.Types {
		for _, c := range tp.Changes {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var mark, details string
			switch c.Kind {
			case domain.ChangeCreate:
				mark, details = r.green("+ create"), "missing on "+req.Direction.Target().String()
			case domain.ChangeDelete:
				mark, details = r.red("- delete"), "only on "+req.Direction.Target().String()
			case domain.ChangeConflict:
				mark, details = r.yellow("~ conflict"), strings.Join(c.Entity.DriftFields, ", ")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, tp.EntityType, c.Entity.Name(), details)
		}
	}

	if n := len(plan.Conflicts()); n > 0 {
		fmt.Fprintf(tw, "\nConflicts: %d (update %d, skip %d)\n", n, preview.UpdateCount(), preview.SkipCount())
	}
	return nil
}

func (r *Reporter) ReportSync(ctx context.Context, report *domain.SyncReport) error {
	tw := r.table()
	defer tw.Flush()

	title := fmt.Sprintf("Sync %s (%s)", report.SyncID, report.Direction)
	if report.DryRun {
		title += " [dry run]"
	}
	fmt.Fprintln(tw, title)
	fmt.Fprintln(tw, "Status\tAction\tType\tName\tDetails")
	fmt.Fprintln(tw, "------\t------\t----\t----\t-------")
	for _, e := range report.Entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.status(e.Status), e.Action, e.EntityType, e.EntityName, e.ErrorMessage())
	}

	r.writeCounts(tw, report.ByType, report.Totals())
	return nil
}

func (r *Reporter) status(s domain.AuditStatus) string {
	switch s {
	case domain.AuditStatusSuccess:
		return r.green("[OK]")
	case domain.AuditStatusFailed:
		return r.magenta("[FAILED]")
	default:
		return r.yellow("[" + strings.ToUpper(string(s)) + "]")
	}
}

func (r *Reporter) writeCounts(tw io.Writer, byType map[domain.EntityType]domain.ActionCounts, totals domain.ActionCounts) {
	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintln(tw, "-------")
	fmt.Fprintln(tw, "Type\tCreated\tUpdated\tDeleted\tSkipped\tFailed")
	types := make([]domain.EntityType, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	for _, t := range domain.SortEntityTypes(types) {
		c := byType[t]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", t, c.Created, c.Updated, c.Deleted, c.Skipped, r.magenta(c.Failed))
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t%d\t%s\n",
		r.green(totals.Created), r.green(totals.Updated), r.green(totals.Deleted), totals.Skipped, r.magenta(totals.Failed))
}

func (r *Reporter) ReportDualWrite(ctx context.Context, entityType domain.EntityType, result *domain.DualWriteResult) error {
	name := result.PrimaryResult.DisplayName(entityType)
	if name == "" {
		name = result.PrimaryResult.ID()
	}
	fmt.Fprintf(r.writer, "%s %s %s '%s' on %s\n", r.green("[OK]"), result.Operation, entityType.Singular(), name, result.PrimarySystem)

	switch {
	case result.SecondaryNotConfigured:
		fmt.Fprintf(r.writer, "%s %s is not configured; change applied to %s only\n", r.yellow("[WARN]"), result.SecondarySystem, result.PrimarySystem)
	case result.SecondarySkipped:
		fmt.Fprintf(r.writer, "%s %s skipped (data plane only)\n", r.cyan("[SKIP]"), result.SecondarySystem)
	case result.PartialSuccess():
		fmt.Fprintf(r.writer, "%s partial sync: %s write failed: %s\n", r.yellow("[WARN]"), result.SecondarySystem, result.SecondaryErrorMessage())
		fmt.Fprintln(r.writer, "Run 'gateway-sync push' to reconcile.")
	default:
		fmt.Fprintf(r.writer, "%s synced to %s\n", r.green("[OK]"), result.SecondarySystem)
	}
	return nil
}

func (r *Reporter) ReportHistory(ctx context.Context, summaries []domain.SyncSummary) error {
	if len(summaries) == 0 {
		fmt.Fprintln(r.writer, "No sync history found.")
		return nil
	}
	tw := r.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "Sync ID\tOperation\tStarted\tEntries\tCreated\tUpdated\tDeleted\tSkipped\tFailed")
	for _, s := range summaries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		op := string(s.Operation)
		if s.DryRun {
			op += " (dry run)"
		}
		t := s.Totals
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n", s.SyncID, op, s.StartedAt.Format(time.RFC3339),
			s.EntryCount, t.Created, t.Updated, t.Deleted, t.Skipped, r.magenta(t.Failed))
	}
	return nil
}

func (r *Reporter) ReportEntries(ctx context.Context, entries []domain.SyncAuditEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(r.writer, "No audit entries found.")
		return nil
	}
	tw := r.table()
	defer tw.Flush()

	fmt.Fprintln(tw, "Time\tSync ID\tStatus\tAction\tType\tName\tTarget\tDetails")
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		details := e.ErrorMessage()
		if details == "" && len(e.DriftFields) > 0 {
			details = "drift: " + strings.Join(e.DriftFields, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.SyncID,
			r.status(e.Status), e.Action, e.EntityType, e.EntityName, e.Target, details)
	}
	return nil
}

func (r *Reporter) ReportRollbackPreview(ctx context.Context, preview *domain.RollbackPreview) error {
	tw := r.table()
	defer tw.Flush()

	fmt.Fprintf(tw, "Rollback Preview for %s\n", preview.SyncID)
	if len(preview.Actions) > 0 {
		fmt.Fprintln(tw, "Action\tTarget\tType\tName")
		for _, a := range preview.Actions {
			mark := r.red("- delete")
			if a.Op == domain.RollbackOpUpdate {
				mark = r.yellow("~ restore")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, a.Target, a.EntityType, a.EntityName)
		}
	}
	for _, w := range preview.Warnings {
		fmt.Fprintf(tw, "%s %s\n", r.yellow("[WARN]"), w)
	}
	if !preview.CanRollback {
		fmt.Fprintln(tw, r.magenta("Nothing can be rolled back."))
	}
	return nil
}

func (r *Reporter) ReportRollback(ctx context.Context, result *domain.RollbackResult) error {
	fmt.Fprintf(r.writer, "Rollback of %s: rolled back %s, failed %s, skipped %d\n",
		result.SyncID, r.green(result.RolledBack), r.magenta(result.Failed), result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(r.writer, "  %s %s\n", r.magenta("[FAILED]"), e)
	}
	return nil
}
