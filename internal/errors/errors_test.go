package errors_test

import (
	stderrs "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/errors"
)

func TestWrap(t *testing.T) {
	t.Run("Nil Error", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
	})

	t.Run("Plain Error", func(t *testing.T) {
		base := stderrs.New("dial tcp: connection refused")
		err := errors.Wrap(base, errors.CodeConnection, "gateway unreachable")
		require.NotNil(t, err)
		assert.Equal(t, errors.CodeConnection, err.Code)
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("Keeps Inner Code", func(t *testing.T) {
		inner := errors.New(errors.CodeNotFound, "service 'api' not found")
		err := errors.Wrap(inner, errors.CodeInternal, "outer")
		assert.Equal(t, errors.CodeNotFound, err.Code)
	})
}

func TestIs(t *testing.T) {
	inner := errors.New(errors.CodeNotFound, "missing")
	outer := errors.WrapUserFacing(inner, errors.CodeSyncFailed, "sync failed", "")

	assert.True(t, errors.Is(outer, errors.CodeSyncFailed))
	assert.True(t, errors.Is(outer, errors.CodeNotFound))
	assert.False(t, errors.Is(outer, errors.CodeConnection))
	assert.False(t, errors.Is(stderrs.New("plain"), errors.CodeNotFound))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrs.New("plain")))
}

func TestSystemOf(t *testing.T) {
	inner := errors.New(errors.CodePlatformAuthError, "control_plane returned 401").WithSystem("control_plane", 401)
	outer := errors.WrapUserFacing(inner, errors.CodePartialSync, "partial sync", "")

	system, status := errors.SystemOf(outer)
	assert.Equal(t, "control_plane", system)
	assert.Equal(t, 401, status)

	system, status = errors.SystemOf(stderrs.New("plain"))
	assert.Empty(t, system)
	assert.Zero(t, status)
}

func TestGetUserFacingMessage(t *testing.T) {
	err := errors.NewUserFacing(errors.CodeValidation, "invalid entity type: widgets", "Use one of: services, routes")
	msg, suggestion, ok := errors.GetUserFacingMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "invalid entity type: widgets", msg)
	assert.Equal(t, "Use one of: services, routes", suggestion)

	_, _, ok = errors.GetUserFacingMessage(stderrs.New("boom"))
	assert.False(t, ok)
}
