// Package testutil provides in-memory collaborators for service tests.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/pkg/convert"
)

type Op string

const (
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpExists Op = "exists"
	OpList   Op = "list"
)

// Call records one invocation of a MemoryManager method.
type Call struct {
	Op  Op
	Key string
}

// MemoryManager is a ports.EntityManager holding entities in memory.
// Entities are addressed by id or by natural name. Ids are assigned as
// "<prefix>-<n>" on create when the payload has none.
type MemoryManager struct {
	mu         sync.Mutex
	entityType domain.EntityType
	prefix     string
	seq        int
	order      []string
	entities   map[string]domain.Entity
	failures   map[Op]error
	calls      []Call
}

var _ ports.EntityManager = (*MemoryManager)(nil)

func NewMemoryManager(entityType domain.EntityType, idPrefix string, seed ...domain.Entity) *MemoryManager {
	m := &MemoryManager{
		entityType: entityType,
		prefix:     idPrefix,
		entities:   make(map[string]domain.Entity),
		failures:   make(map[Op]error),
	}
	m.Seed(seed...)
	return m
}

// Seed stores copies of entities without recording calls.
func (m *MemoryManager) Seed(entities ...domain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		m.put(e.Clone())
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (m *MemoryManager) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *MemoryManager) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount counts recorded calls of op.
func (m *MemoryManager) CallCount(op Op) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Snapshot returns copies of the stored entities in insertion order.
func (m *MemoryManager) Snapshot() []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Entity, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entities[id].Clone())
	}
	return out
}

func (m *MemoryManager) Get(ctx context.Context, idOrName string) (domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGet, idOrName); err != nil {
		return nil, err
	}
	id, ok := m.resolve(idOrName)
	if !ok {
		return nil, m.notFound(idOrName)
	}
	return m.entities[id].Clone(), nil
}

func (m *MemoryManager) Create(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreate, entity.DisplayName(m.entityType)); err != nil {
		return nil, err
	}
	if id := entity.ID(); id != "" {
		if _, exists := m.entities[id]; exists {
			return nil, errors.New(errors.CodeValidation, fmt.Sprintf("%s %s already exists", m.entityType.Singular(), id))
		}
	}
	if entity.DisplayName(m.entityType) != "" {
		key := entity.NaturalKeyFor(m.entityType)
		for _, id := range m.order {
			if m.entities[id].NaturalKeyFor(m.entityType) == key {
				return nil, errors.New(errors.CodeValidation, fmt.Sprintf("%s '%s' already exists", m.entityType.Singular(), key))
			}
		}
	}
	stored := entity.Clone()
	if stored == nil {
		stored = domain.Entity{}
	}
	m.put(stored)
	return stored.Clone(), nil
}

func (m *MemoryManager) Update(ctx context.Context, idOrName string, entity domain.Entity) (domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpUpdate, idOrName); err != nil {
		return nil, err
	}
	id, ok := m.resolve(idOrName)
	if !ok {
		return nil, m.notFound(idOrName)
	}
	stored := entity.Clone()
	if stored == nil {
		stored = domain.Entity{}
	}
	stored[domain.KeyID] = id
	m.entities[id] = stored
	return stored.Clone(), nil
}

func (m *MemoryManager) Delete(ctx context.Context, idOrName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDelete, idOrName); err != nil {
		return err
	}
	id, ok := m.resolve(idOrName)
	if !ok {
		return m.notFound(idOrName)
	}
	delete(m.entities, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryManager) Exists(ctx context.Context, idOrName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpExists, idOrName); err != nil {
		return false, err
	}
	_, ok := m.resolve(idOrName)
	return ok, nil
}

// List pages through entities in insertion order; tokens are offsets.
func (m *MemoryManager) List(ctx context.Context, opts ports.ListOptions) ([]domain.Entity, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpList, opts.PageToken); err != nil {
		return nil, "", err
	}
	offset := 0
	if opts.PageToken != "" {
		n, err := strconv.Atoi(opts.PageToken)
		if err != nil {
			return nil, "", errors.New(errors.CodeValidation, fmt.Sprintf("invalid page token '%s'", opts.PageToken))
		}
		offset = n
	}
	ids := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if hasTags(m.entities[id], opts.Tags) {
			ids = append(ids, id)
		}
	}
	offset = min(offset, len(ids))
	size := opts.PageSize
	if size <= 0 {
		size = len(ids)
	}
	end := offset + size
	if end > len(ids) {
		end = len(ids)
	}

	page := make([]domain.Entity, 0, end-offset)
	for _, id := range ids[offset:end] {
		page = append(page, m.entities[id].Clone())
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

// hasTags reports whether e carries every tag.
func hasTags(e domain.Entity, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	list, err := convert.ToSliceOfString(e[domain.KeyTags])
	if err != nil {
		return false
	}
	have := make(map[string]bool, len(list))
	for _, t := range list {
		have[t] = true
	}
	for _, t := range tags {
		if !have[t] {
			return false
		}
	}
	return true
}

func (m *MemoryManager) record(op Op, key string) error {
	m.calls = append(m.calls, Call{Op: op, Key: key})
	return m.failures[op]
}

func (m *MemoryManager) put(e domain.Entity) {
	id := e.ID()
	if id == "" {
		id = m.nextID()
		e[domain.KeyID] = id
	}
	if _, exists := m.entities[id]; !exists {
		m.order = append(m.order, id)
	}
	m.entities[id] = e
}

func (m *MemoryManager) nextID() string {
	for {
		m.seq++
		id := m.prefix + "-" + strconv.Itoa(m.seq)
		if _, taken := m.entities[id]; !taken {
			return id
		}
	}
}

func (m *MemoryManager) resolve(idOrName string) (string, bool) {
	if _, ok := m.entities[idOrName]; ok {
		return idOrName, true
	}
	for _, id := range m.order {
		if m.entities[id].DisplayName(m.entityType) == idOrName {
			return id, true
		}
	}
	return "", false
}

func (m *MemoryManager) notFound(idOrName string) error {
	return errors.New(errors.CodeNotFound, fmt.Sprintf("%s '%s' not found", m.entityType.Singular(), idOrName))
}
