package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// ConflictService tracks operator decisions for the conflicts of one
// interactive session. Resolutions are held in memory only.
type ConflictService struct {
	mu          sync.RWMutex
	resolutions map[string]domain.Resolution
	order       []string
	logger      ports.Logger
	now         func() time.Time
}

func NewConflictService(logger ports.Logger) *ConflictService {
	return &ConflictService{
		resolutions: make(map[string]domain.Resolution),
		logger:      logger.WithFields(map[string]any{"component": "conflicts"}),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CollectConflicts builds a conflict for every drifted entity of the given
// lists. Entities that cannot form a conflict are logged and skipped.
// Types are visited in dependency order for stable output.
func (s *ConflictService) CollectConflicts(ctx context.Context, lists map[domain.EntityType]*domain.UnifiedEntityList, direction domain.Direction) []domain.Conflict {
	types := make([]domain.EntityType, 0, len(lists))
	for t := range lists {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Order() != types[j].Order() {
			return types[i].Order() < types[j].Order()
		}
		return types[i] < types[j]
	})

	conflicts := make([]domain.Conflict, 0)
	for _, t := range types {
		for _, u := range lists[t].WithDrift() {
			c, err := domain.NewConflict(u, direction)
			if err != nil {
				s.logger.Warnf(ctx, "Skipping %s '%s': %v", t.Singular(), u.Key, err)
				continue
			}
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func (s *ConflictService) GetConflictSummary(conflicts []domain.Conflict) domain.ConflictSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.ConflictSummary{
		Total:  len(conflicts),
		ByType: make(map[domain.EntityType]int),
	}
	for _, c := range conflicts {
		summary.ByType[c.EntityType]++
		if _, ok := s.resolutions[c.Key()]; ok {
			summary.Resolved++
		}
	}
	summary.Pending = summary.Total - summary.Resolved
	return summary
}

// SetResolution stores r, replacing any earlier decision for the same
// conflict. MERGE requires a merged state.
func (s *ConflictService) SetResolution(r domain.Resolution) error {
	if _, err := domain.ParseResolutionAction(string(r.Action)); err != nil {
		return err
	}
	if r.Action == domain.ActionMerge && r.MergedState == nil {
		return errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("merge resolution for %s requires a merged state", r.Key()), "")
	}
	if r.Conflict.EntityName == "" {
		return errors.New(errors.CodeValidation, "resolution must reference a named conflict")
	}
	if r.ResolvedAt.IsZero() {
		r.ResolvedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Key()
	if _, exists := s.resolutions[key]; !exists {
		s.order = append(s.order, key)
	}
	s.resolutions[key] = r
	return nil
}

func (s *ConflictService) GetResolution(c domain.Conflict) (domain.Resolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resolutions[c.Key()]
	return r, ok
}

// Resolutions returns stored decisions in the order they were first set.
func (s *ConflictService) Resolutions() []domain.Resolution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Resolution, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.resolutions[key])
	}
	return out
}

// ApplyBatchResolution sets action on every conflict, optionally only those
// of one type, and returns how many were set. MERGE cannot be batched.
func (s *ConflictService) ApplyBatchResolution(conflicts []domain.Conflict, action domain.ResolutionAction, entityTypeFilter *domain.EntityType) (int, error) {
	if action == domain.ActionMerge {
		return 0, errors.NewUserFacing(errors.CodeValidation, "merge cannot be applied in batch", "Resolve merges one conflict at a time.")
	}
	count := 0
	for _, c := range conflicts {
		if entityTypeFilter != nil && c.EntityType != *entityTypeFilter {
			continue
		}
		if err := s.SetResolution(domain.Resolution{Conflict: c, Action: action, Note: "batch"}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// BuildPreview classifies resolutions by effect: KEEP_SOURCE updates the
// target, MERGE writes the merged state, the rest leave the target alone.
func (s *ConflictService) BuildPreview(resolutions []domain.Resolution) domain.ResolutionPreview {
	preview := domain.ResolutionPreview{
		WillUpdate: make([]domain.Resolution, 0),
		WillSkip:   make([]domain.Resolution, 0),
		WillMerge:  make([]domain.Resolution, 0),
	}
	for _, r := range resolutions {
		switch r.Action {
		case domain.ActionKeepSource:
			preview.WillUpdate = append(preview.WillUpdate, r)
		case domain.ActionMerge:
			preview.WillMerge = append(preview.WillMerge, r)
		default:
			preview.WillSkip = append(preview.WillSkip, r)
		}
	}
	return preview
}

// Clear drops every stored resolution.
func (s *ConflictService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolutions = make(map[string]domain.Resolution)
	s.order = nil
}

// MergeFields builds a merged state from the target state with the given
// top-level fields taken from the source.
func MergeFields(c domain.Conflict, fromSource []string) domain.Entity {
	return domain.MergeEntities(c.TargetState, domain.PickFields(c.SourceState, fromSource))
}
