// Package memory is an AuditStore kept in process memory, used when no
// audit path is configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
)

type Store struct {
	mu      sync.RWMutex
	entries []domain.SyncAuditEntry
}

var _ ports.AuditStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, entry domain.SyncAuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry.Clone())
	return nil
}

func (s *Store) BySyncID(_ context.Context, syncID string) ([]domain.SyncAuditEntry, error) {
	return s.filter(func(e domain.SyncAuditEntry) bool { return e.SyncID == syncID }), nil
}

func (s *Store) All(_ context.Context, since time.Time) ([]domain.SyncAuditEntry, error) {
	return s.filter(func(e domain.SyncAuditEntry) bool {
		return since.IsZero() || !e.Timestamp.Before(since)
	}), nil
}

func (s *Store) ByEntity(_ context.Context, entityType domain.EntityType, entityName string) ([]domain.SyncAuditEntry, error) {
	return s.filter(func(e domain.SyncAuditEntry) bool {
		return e.EntityType == entityType && e.EntityName == entityName
	}), nil
}

func (s *Store) filter(keep func(domain.SyncAuditEntry) bool) []domain.SyncAuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncAuditEntry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}
