package domain

import (
	"fmt"
	"time"

	"github.com/olusolaa/gateway-sync/internal/errors"
)

// Conflict is a snapshot of one drifted entity for a chosen direction.
// SourceState belongs to the side being copied from.
type Conflict struct {
	EntityType     EntityType
	EntityID       string
	EntityName     string
	Direction      Direction
	SourceState    Entity
	TargetState    Entity
	DriftFields    []string
	SourceSystemID string
	TargetSystemID string

	// MatchKey is the unified key of the entity. It is empty for conflicts
	// built by hand, which are then keyed by name.
	MatchKey string
}

// NewConflict snapshots u. It fails with CodeInvalidConflict unless u is
// present on both sides with drift.
func NewConflict(u UnifiedEntity, direction Direction) (Conflict, error) {
	if u.Source != SourceBoth {
		return Conflict{}, errors.New(errors.CodeInvalidConflict,
			fmt.Sprintf("%s '%s' exists only on %s", u.EntityType.Singular(), u.Key, u.Source))
	}
	if !u.HasDrift {
		return Conflict{}, errors.New(errors.CodeInvalidConflict,
			fmt.Sprintf("%s '%s' has no drift", u.EntityType.Singular(), u.Key))
	}
	source := u.SideEntity(direction.Source())
	target := u.SideEntity(direction.Target())
	if source == nil || target == nil {
		return Conflict{}, errors.New(errors.CodeInvalidConflict,
			fmt.Sprintf("%s '%s' is missing a side payload", u.EntityType.Singular(), u.Key))
	}

	fields := make([]string, len(u.DriftFields))
	copy(fields, u.DriftFields)

	return Conflict{
		EntityType:     u.EntityType,
		EntityID:       u.SideID(direction.Source()),
		EntityName:     u.Name(),
		MatchKey:       u.Key,
		Direction:      direction,
		SourceState:    source.Clone(),
		TargetState:    target.Clone(),
		DriftFields:    fields,
		SourceSystemID: u.SideID(direction.Source()),
		TargetSystemID: u.SideID(direction.Target()),
	}, nil
}

// Key identifies the conflict for resolution bookkeeping.
func (c Conflict) Key() string {
	if c.MatchKey != "" {
		return ConflictKey(c.EntityType, c.MatchKey)
	}
	return ConflictKey(c.EntityType, c.EntityName)
}

func ConflictKey(t EntityType, name string) string {
	return fmt.Sprintf("%s:%s", t, name)
}

type ResolutionAction string

const (
	ActionKeepSource ResolutionAction = "KEEP_SOURCE"
	ActionKeepTarget ResolutionAction = "KEEP_TARGET"
	ActionSkip       ResolutionAction = "SKIP"
	ActionMerge      ResolutionAction = "MERGE"
)

func ParseResolutionAction(s string) (ResolutionAction, error) {
	switch a := ResolutionAction(s); a {
	case ActionKeepSource, ActionKeepTarget, ActionSkip, ActionMerge:
		return a, nil
	}
	return "", errors.New(errors.CodeValidation, fmt.Sprintf("invalid resolution action: %s", s))
}

// Resolution is an operator decision for one conflict.
type Resolution struct {
	Conflict    Conflict
	Action      ResolutionAction
	ResolvedAt  time.Time
	Note        string
	MergedState Entity
}

func (r Resolution) Key() string {
	return r.Conflict.Key()
}

// ResolutionPreview groups resolutions by their effect on the target.
type ResolutionPreview struct {
	WillUpdate []Resolution
	WillSkip   []Resolution
	WillMerge  []Resolution
}

func (p ResolutionPreview) UpdateCount() int {
	return len(p.WillUpdate) + len(p.WillMerge)
}

func (p ResolutionPreview) SkipCount() int {
	return len(p.WillSkip)
}

type ConflictSummary struct {
	Total    int                `json:"total"`
	ByType   map[EntityType]int `json:"by_type"`
	Resolved int                `json:"resolved"`
	Pending  int                `json:"pending"`
}
