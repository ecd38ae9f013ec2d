package ports

import (
	"context"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
)

type Reporter interface {
	ReportStatus(ctx context.Context, statuses []domain.TypeStatus) error
	ReportPlan(ctx context.Context, plan *domain.SyncPlan, preview domain.ResolutionPreview) error
	ReportSync(ctx context.Context, report *domain.SyncReport) error
	ReportDualWrite(ctx context.Context, entityType domain.EntityType, result *domain.DualWriteResult) error
	ReportHistory(ctx context.Context, summaries []domain.SyncSummary) error
	ReportEntries(ctx context.Context, entries []domain.SyncAuditEntry) error
	ReportRollbackPreview(ctx context.Context, preview *domain.RollbackPreview) error
	ReportRollback(ctx context.Context, result *domain.RollbackResult) error
}
