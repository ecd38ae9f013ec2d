package rest

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// Manager is a ports.EntityManager over one collection of an admin API,
// e.g. /services.
type Manager struct {
	client     *Client
	entityType domain.EntityType
	collection string
	pagination Pagination
	// byName reports whether the API accepts the natural key in entity
	// paths. When false, names are first resolved to ids by listing.
	byName bool
	logger ports.Logger
}

var _ ports.EntityManager = (*Manager)(nil)

func NewManager(client *Client, entityType domain.EntityType, collection string, pagination Pagination, byName bool, logger ports.Logger) *Manager {
	return &Manager{
		client:     client,
		entityType: entityType,
		collection: collection,
		pagination: pagination,
		byName:     byName,
		logger: logger.WithFields(map[string]any{
			"system":      client.System(),
			"entity_type": entityType,
		}),
	}
}

func (m *Manager) subject(idOrName string) string {
	if idOrName == "" {
		return m.entityType.Singular()
	}
	return fmt.Sprintf("%s '%s'", m.entityType.Singular(), idOrName)
}

func (m *Manager) entityPath(id string) string {
	return path.Join(m.collection, id)
}

// resolve turns idOrName into the path segment the API accepts. A name
// shared by several entities, as plugin names are across scopes, must be
// replaced by an id.
func (m *Manager) resolve(ctx context.Context, idOrName string) (string, error) {
	if m.byName {
		return idOrName, nil
	}
	var named []string
	token := ""
	for {
		page, next, err := m.List(ctx, ports.ListOptions{PageSize: 1000, PageToken: token})
		if err != nil {
			return "", err
		}
		for _, e := range page {
			if e.ID() == idOrName {
				return e.ID(), nil
			}
			if e.DisplayName(m.entityType) == idOrName {
				named = append(named, e.ID())
			}
		}
		if next == "" || next == token {
			break
		}
		token = next
	}

	switch len(named) {
	case 0:
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("%s not found on %s", m.subject(idOrName), m.client.System()))
	case 1:
		return named[0], nil
	default:
		return "", errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("%d %s entities on %s are named '%s'", len(named), m.entityType, m.client.System(), idOrName),
			"Address the entity by id.")
	}
}

func (m *Manager) Get(ctx context.Context, idOrName string) (domain.Entity, error) {
	id, err := m.resolve(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	var out domain.Entity
	if err := m.client.Do(ctx, http.MethodGet, m.entityPath(id), nil, nil, &out, m.subject(idOrName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) Create(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	var out domain.Entity
	subject := m.subject(entity.NaturalKeyFor(m.entityType))
	if err := m.client.Do(ctx, http.MethodPost, m.collection, nil, entity, &out, subject); err != nil {
		return nil, err
	}
	m.logger.Debugf(ctx, "Created %s (id %s)", subject, out.ID())
	return out, nil
}

// Update replaces the entity with the given payload.
func (m *Manager) Update(ctx context.Context, idOrName string, entity domain.Entity) (domain.Entity, error) {
	id, err := m.resolve(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	var out domain.Entity
	if err := m.client.Do(ctx, http.MethodPut, m.entityPath(id), nil, entity, &out, m.subject(idOrName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) Delete(ctx context.Context, idOrName string) error {
	id, err := m.resolve(ctx, idOrName)
	if err != nil {
		return err
	}
	return m.client.Do(ctx, http.MethodDelete, m.entityPath(id), nil, nil, nil, m.subject(idOrName))
}

func (m *Manager) Exists(ctx context.Context, idOrName string) (bool, error) {
	_, err := m.Get(ctx, idOrName)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.CodeNotFound) {
		return false, nil
	}
	return false, err
}

func (m *Manager) List(ctx context.Context, opts ports.ListOptions) ([]domain.Entity, string, error) {
	var page Page
	if err := m.client.Do(ctx, http.MethodGet, m.collection, m.pagination.Query(opts), nil, &page, m.entityType.String()); err != nil {
		return nil, "", err
	}
	data := page.Data
	if data == nil {
		data = []domain.Entity{}
	}
	return data, m.pagination.NextToken(page), nil
}

// NewManagerSet builds one manager per supported entity type, each on the
// collection named after the type. Plugins cannot be addressed by name and
// are resolved by listing.
func NewManagerSet(client *Client, pagination Pagination, logger ports.Logger) map[domain.EntityType]ports.EntityManager {
	managers := make(map[domain.EntityType]ports.EntityManager)
	for _, t := range domain.AllEntityTypes() {
		byName := t != domain.EntityTypePlugin
		managers[t] = NewManager(client, t, "/"+t.String(), pagination, byName, logger)
	}
	return managers
}
