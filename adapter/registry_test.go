package adapter

import (
	"context"
	"testing"

	"github.com/arloliu/sqlexec/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCleanRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := registry
	registry = make(map[types.Backend]Factory)
	registryMu.Unlock()

	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})
}

func TestRegisterAndOpen(t *testing.T) {
	withCleanRegistry(t)

	var gotDSN string
	Register(types.BackendOracle, func(_ context.Context, dsn string, _ types.Logger) (Transport, error) {
		gotDSN = dsn
		return nil, nil
	})
	Register(types.BackendPostgres, func(context.Context, string, types.Logger) (Transport, error) {
		return nil, nil
	})

	assert.True(t, IsRegistered(types.BackendOracle))
	assert.False(t, IsRegistered(types.BackendSQLServer))
	assert.Equal(t, []types.Backend{types.BackendOracle, types.BackendPostgres}, Backends())

	_, err := Open(context.Background(), types.BackendOracle, "oracle://scott@db/XE", nil)
	require.NoError(t, err)
	assert.Equal(t, "oracle://scott@db/XE", gotDSN)
}

func TestOpenNotRegistered(t *testing.T) {
	withCleanRegistry(t)

	_, err := Open(context.Background(), types.BackendSQLServer, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownBackend)

	var nre *NotRegisteredError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, types.BackendSQLServer, nre.Backend)
	assert.Contains(t, err.Error(), "adapter/sqlserver")
}
