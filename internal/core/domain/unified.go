package domain

// Source records where a unified entity was found.
type Source string

const (
	SourceGateway      Source = "GATEWAY"
	SourceControlPlane Source = "CONTROL_PLANE"
	SourceBoth         Source = "BOTH"
)

// UnifiedEntity is one logical entity with its provenance on both systems.
type UnifiedEntity struct {
	EntityType         EntityType
	Key                string
	Source             Source
	GatewaySideID      string
	ControlPlaneSideID string
	HasDrift           bool
	DriftFields        []string
	GatewayEntity      Entity
	ControlPlaneEntity Entity
}

// Name returns the natural name of the entity, or its key when the type has
// no name field.
func (u UnifiedEntity) Name() string {
	if n := u.GatewayEntity.DisplayName(u.EntityType); n != "" {
		return n
	}
	if n := u.ControlPlaneEntity.DisplayName(u.EntityType); n != "" {
		return n
	}
	return u.Key
}

// SideEntity returns the payload held on the given system, or nil.
func (u UnifiedEntity) SideEntity(s System) Entity {
	if s == SystemControlPlane {
		return u.ControlPlaneEntity
	}
	return u.GatewayEntity
}

// SideID returns the system-assigned id on the given system, or "".
func (u UnifiedEntity) SideID(s System) string {
	if s == SystemControlPlane {
		return u.ControlPlaneSideID
	}
	return u.GatewaySideID
}

// OnlyOn reports whether the entity exists exclusively on s.
func (u UnifiedEntity) OnlyOn(s System) bool {
	if s == SystemControlPlane {
		return u.Source == SourceControlPlane
	}
	return u.Source == SourceGateway
}

// UnifiedEntityList is sorted by natural key ascending.
type UnifiedEntityList struct {
	EntityType EntityType
	Entities   []UnifiedEntity

	// Duplicates are entities left out because an earlier entity of the
	// same system already held their key.
	Duplicates []DuplicateKey
}

type DuplicateKey struct {
	System System
	Key    string
	ID     string
}

func (l *UnifiedEntityList) All() []UnifiedEntity {
	if l == nil {
		return nil
	}
	return l.Entities
}

func (l *UnifiedEntityList) filter(keep func(UnifiedEntity) bool) []UnifiedEntity {
	out := make([]UnifiedEntity, 0)
	if l == nil {
		return out
	}
	for _, e := range l.Entities {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (l *UnifiedEntityList) GatewayOnly() []UnifiedEntity {
	return l.filter(func(e UnifiedEntity) bool { return e.Source == SourceGateway })
}

func (l *UnifiedEntityList) ControlPlaneOnly() []UnifiedEntity {
	return l.filter(func(e UnifiedEntity) bool { return e.Source == SourceControlPlane })
}

func (l *UnifiedEntityList) InBoth() []UnifiedEntity {
	return l.filter(func(e UnifiedEntity) bool { return e.Source == SourceBoth })
}

func (l *UnifiedEntityList) WithDrift() []UnifiedEntity {
	return l.filter(func(e UnifiedEntity) bool { return e.HasDrift })
}

func (l *UnifiedEntityList) Synced() []UnifiedEntity {
	return l.filter(func(e UnifiedEntity) bool { return e.Source == SourceBoth && !e.HasDrift })
}

func (l *UnifiedEntityList) Total() int {
	if l == nil {
		return 0
	}
	return len(l.Entities)
}

// Counts summarises the derived views of the list.
type Counts struct {
	Total            int `json:"total"`
	GatewayOnly      int `json:"gateway_only"`
	ControlPlaneOnly int `json:"control_plane_only"`
	InBoth           int `json:"in_both"`
	WithDrift        int `json:"with_drift"`
	Synced           int `json:"synced"`
}

func (l *UnifiedEntityList) Counts() Counts {
	return Counts{
		Total:            l.Total(),
		GatewayOnly:      len(l.GatewayOnly()),
		ControlPlaneOnly: len(l.ControlPlaneOnly()),
		InBoth:           len(l.InBoth()),
		WithDrift:        len(l.WithDrift()),
		Synced:           len(l.Synced()),
	}
}
