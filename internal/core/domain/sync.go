package domain

// SyncRequest describes one push or pull invocation.
type SyncRequest struct {
	Direction Direction
	DryRun    bool
	// Types restricts the run; empty means every supported type.
	Types []EntityType
	// Prune deletes entities that exist only on the target.
	Prune bool
}

type ChangeKind string

const (
	ChangeCreate   ChangeKind = "create"
	ChangeDelete   ChangeKind = "delete"
	ChangeConflict ChangeKind = "conflict"
)

// PlannedChange is a pending write against the target for one entity.
// Conflicts carry no payload of their own; their effect depends on the
// resolution chosen before execution.
type PlannedChange struct {
	Kind     ChangeKind
	Entity   UnifiedEntity
	Conflict *Conflict
}

// TypePlan is the unified view of one entity type and the changes derived
// from it.
type TypePlan struct {
	EntityType EntityType
	List       *UnifiedEntityList
	Changes    []PlannedChange
}

type SyncPlan struct {
	Request SyncRequest
	Types   []TypePlan
	// IDs maps source ids to target ids for every entity found on both
	// sides, used to rewrite references at write time.
	IDs IDMap
}

func (p *SyncPlan) Conflicts() []Conflict {
	var out []Conflict
	for _, tp := range p.Types {
		for _, c := range tp.Changes {
			if c.Kind == ChangeConflict && c.Conflict != nil {
				out = append(out, *c.Conflict)
			}
		}
	}
	return out
}

// Lists returns the unified list of every planned type.
func (p *SyncPlan) Lists() map[EntityType]*UnifiedEntityList {
	out := make(map[EntityType]*UnifiedEntityList, len(p.Types))
	for _, tp := range p.Types {
		out[tp.EntityType] = tp.List
	}
	return out
}

func (p *SyncPlan) ChangeCount() int {
	n := 0
	for _, tp := range p.Types {
		n += len(tp.Changes)
	}
	return n
}

// SyncReport is the outcome of executing a plan.
type SyncReport struct {
	SyncID    string
	Direction Direction
	DryRun    bool
	ByType    map[EntityType]ActionCounts
	Entries   []SyncAuditEntry
}

func (r *SyncReport) Totals() ActionCounts {
	var total ActionCounts
	for _, c := range r.ByType {
		total = total.Plus(c)
	}
	return total
}

func (r *SyncReport) HasFailures() bool {
	return r.Totals().Failed > 0
}

// TypeStatus is the drift overview of one type, used by the status command.
type TypeStatus struct {
	EntityType EntityType
	Counts     Counts
	Drifted    []UnifiedEntity
}
