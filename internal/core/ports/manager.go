package ports

import (
	"context"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
)

type ListOptions struct {
	PageSize  int
	PageToken string
	Tags      []string
}

// EntityManager performs CRUD against one entity type on one system.
// Get returns an error with code NOT_FOUND when the entity is absent;
// callers probing for presence use Exists instead.
//
//go:generate mockery --name EntityManager --output ./mocks --outpkg mocks --case underscore
type EntityManager interface {
	Get(ctx context.Context, idOrName string) (domain.Entity, error)
	Create(ctx context.Context, entity domain.Entity) (domain.Entity, error)
	Update(ctx context.Context, idOrName string, entity domain.Entity) (domain.Entity, error)
	Delete(ctx context.Context, idOrName string) error
	Exists(ctx context.Context, idOrName string) (bool, error)
	// List returns one page and the token of the next; "" ends paging.
	List(ctx context.Context, opts ListOptions) ([]domain.Entity, string, error)
}
