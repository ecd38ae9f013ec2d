package domain

// IDMap translates the id of an entity on one system into the id of the
// same logical entity on the other, per entity type.
type IDMap map[EntityType]map[string]string

func (m IDMap) Add(t EntityType, from, to string) {
	if from == "" || to == "" {
		return
	}
	ids, ok := m[t]
	if !ok {
		ids = make(map[string]string)
		m[t] = ids
	}
	ids[from] = to
}

func (m IDMap) Lookup(t EntityType, from string) (string, bool) {
	to, ok := m[t][from]
	return to, ok
}

func (m IDMap) Clone() IDMap {
	out := make(IDMap, len(m))
	for t, ids := range m {
		for from, to := range ids {
			out.Add(t, from, to)
		}
	}
	return out
}

// RewriteReferences returns a copy of e whose foreign references point at
// mapped ids. References without a mapping are kept as they are.
func (m IDMap) RewriteReferences(e Entity) Entity {
	if e == nil {
		return nil
	}
	out := e.Clone()
	for field, refType := range ReferenceKeys {
		ref, ok := out[field].(map[string]any)
		if !ok {
			continue
		}
		id, _ := ref[KeyID].(string)
		if to, found := m.Lookup(refType, id); found {
			ref[KeyID] = to
		}
	}
	return out
}
