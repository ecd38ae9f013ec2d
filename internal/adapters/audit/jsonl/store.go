// Package jsonl stores the sync audit trail as one JSON object per line.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

const (
	lockRetryDelay = 25 * time.Millisecond
	maxLineBytes   = 16 * 1024 * 1024
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store appends entries under an exclusive lock on <path>.lock and reads
// under a shared one, so concurrent CLI invocations never interleave
// partial lines. Lines that fail to decode are skipped with a warning.
type Store struct {
	path   string
	mu     sync.RWMutex
	lock   *flock.Flock
	logger ports.Logger
}

var _ ports.AuditStore = (*Store)(nil)

func New(path string, logger ports.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "audit path cannot be empty", "Set audit.path in your configuration file.")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeAuditStore, fmt.Sprintf("failed to create audit directory for %s", path))
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.WithFields(map[string]any{"component": "audit_store", "path": path}),
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Append(ctx context.Context, entry domain.SyncAuditEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, errors.CodeAuditStore, "failed to encode audit entry")
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return errors.Wrap(lockError(err), errors.CodeAuditStore, "failed to lock audit log")
	}
	defer func() { _ = s.lock.Unlock() }()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.CodeAuditStore, "failed to open audit log")
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.CodeAuditStore, "failed to write audit entry")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.CodeAuditStore, "failed to sync audit log")
	}
	return f.Close()
}

func (s *Store) BySyncID(ctx context.Context, syncID string) ([]domain.SyncAuditEntry, error) {
	return s.read(ctx, func(e domain.SyncAuditEntry) bool {
		return e.SyncID == syncID
	})
}

func (s *Store) All(ctx context.Context, since time.Time) ([]domain.SyncAuditEntry, error) {
	return s.read(ctx, func(e domain.SyncAuditEntry) bool {
		return since.IsZero() || !e.Timestamp.Before(since)
	})
}

func (s *Store) ByEntity(ctx context.Context, entityType domain.EntityType, entityName string) ([]domain.SyncAuditEntry, error) {
	return s.read(ctx, func(e domain.SyncAuditEntry) bool {
		return e.EntityType == entityType && e.EntityName == entityName
	})
}

// read returns matching entries in file order. A missing file is an empty
// log.
func (s *Store) read(ctx context.Context, keep func(domain.SyncAuditEntry) bool) ([]domain.SyncAuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return nil, errors.Wrap(lockError(err), errors.CodeAuditStore, "failed to lock audit log")
	}
	defer func() { _ = s.lock.Unlock() }()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []domain.SyncAuditEntry{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAuditStore, "failed to open audit log")
	}
	defer f.Close()

	entries := make([]domain.SyncAuditEntry, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry domain.SyncAuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			s.logger.Warnf(ctx, "Skipping corrupt audit line %d: %v", lineNo, err)
			continue
		}
		if keep(entry) {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeAuditStore, "failed to read audit log")
	}
	return entries, nil
}

func lockError(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("lock not acquired")
}
