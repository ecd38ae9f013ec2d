package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/internal/testutil"
)

func TestManagerRegistry(t *testing.T) {
	registry := service.NewManagerRegistry()
	manager := testutil.NewMemoryManager(domain.EntityTypeService, "gw")

	require.NoError(t, registry.Register(domain.SystemGateway, domain.EntityTypeService, manager))

	t.Run("Duplicate Registration", func(t *testing.T) {
		err := registry.Register(domain.SystemGateway, domain.EntityTypeService, manager)
		assert.True(t, apperrors.Is(err, apperrors.CodeInternal))
	})

	t.Run("Invalid Inputs", func(t *testing.T) {
		assert.Error(t, registry.Register(domain.System("edge"), domain.EntityTypeService, manager))
		assert.Error(t, registry.Register(domain.SystemGateway, domain.EntityType("widgets"), manager))
		assert.Error(t, registry.Register(domain.SystemGateway, domain.EntityTypeRoute, nil))
	})

	t.Run("Lookup", func(t *testing.T) {
		got, err := registry.Manager(domain.SystemGateway, domain.EntityTypeService)
		require.NoError(t, err)
		assert.Same(t, manager, got)

		_, err = registry.Manager(domain.SystemControlPlane, domain.EntityTypeService)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotConfigured))
		_, _, userFacing := apperrors.GetUserFacingMessage(err)
		assert.True(t, userFacing)
	})

	t.Run("Configured", func(t *testing.T) {
		assert.True(t, registry.Configured(domain.SystemGateway))
		assert.False(t, registry.Configured(domain.SystemControlPlane))
	})
}
