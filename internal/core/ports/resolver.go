package ports

import (
	"context"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
)

// ConflictResolver asks an operator to decide a conflict. Confirm gates a
// destructive step and returns false when the operator declines.
type ConflictResolver interface {
	Resolve(ctx context.Context, conflict domain.Conflict) (domain.Resolution, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}
