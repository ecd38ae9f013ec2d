package ports

import (
	"context"
	"time"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
)

// AuditStore persists sync audit entries. Append must be atomic per entry
// across processes sharing the store: a concurrent reader sees either the
// whole entry or none of it. No ordering or locking across entries is
// required.
type AuditStore interface {
	Append(ctx context.Context, entry domain.SyncAuditEntry) error
	BySyncID(ctx context.Context, syncID string) ([]domain.SyncAuditEntry, error)
	// All returns every entry at or after since, oldest first. A zero since
	// means no lower bound.
	All(ctx context.Context, since time.Time) ([]domain.SyncAuditEntry, error)
	ByEntity(ctx context.Context, entityType domain.EntityType, entityName string) ([]domain.SyncAuditEntry, error)
}
