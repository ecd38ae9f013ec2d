package service

import (
	"fmt"
	"sync"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

type managerKey struct {
	system     domain.System
	entityType domain.EntityType
}

// ManagerRegistry holds the entity managers of each system, one per entity
// type. It is built once at bootstrap and passed to the services that need
// it.
type ManagerRegistry struct {
	mu       sync.RWMutex
	managers map[managerKey]ports.EntityManager
}

func NewManagerRegistry() *ManagerRegistry {
	return &ManagerRegistry{
		managers: make(map[managerKey]ports.EntityManager),
	}
}

func (r *ManagerRegistry) Register(system domain.System, entityType domain.EntityType, manager ports.EntityManager) error {
	if manager == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil entity manager")
	}
	if !system.Valid() {
		return errors.New(errors.CodeInternal, fmt.Sprintf("unknown system '%s'", system))
	}
	if !entityType.Valid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid entity type: %s", entityType))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := managerKey{system: system, entityType: entityType}
	if _, exists := r.managers[key]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("%s manager for '%s' already registered", system, entityType))
	}
	r.managers[key] = manager
	return nil
}

// Manager returns the manager for entityType on system, failing with
// NOT_CONFIGURED when none is registered.
func (r *ManagerRegistry) Manager(system domain.System, entityType domain.EntityType) (ports.EntityManager, error) {
	if !entityType.Valid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid entity type: %s", entityType))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	manager, exists := r.managers[managerKey{system: system, entityType: entityType}]
	if !exists {
		return nil, errors.NewUserFacing(errors.CodeNotConfigured,
			fmt.Sprintf("%s is not configured for %s", system, entityType),
			fmt.Sprintf("Configure the %s section in your configuration file.", system))
	}
	return manager, nil
}

// Configured reports whether any manager is registered for system.
func (r *ManagerRegistry) Configured(system domain.System) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key := range r.managers {
		if key.system == system {
			return true
		}
	}
	return false
}
