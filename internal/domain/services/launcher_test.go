package services

import (
	"context"
	"testing"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	mockroute "mock_env_server/internal/domain/model/mock_route"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instanceWithRoutes(id, projectID, key string, paths ...string) *mockinstance.MockInstance {
	routes := make([]mockroute.Route, 0, len(paths))
	for _, p := range paths {
		routes = append(routes, mockroute.Route{Method: "GET", Path: p})
	}
	return &mockinstance.MockInstance{
		ID:        id,
		ProjectID: projectID,
		BaseURL:   "https://mocks.example.com/mock",
		Status:    mockinstance.StatusStopped,
		Config:    mockinstance.InstanceConfig{RegistryKey: key, Routes: routes},
	}
}

func TestRegistryLauncher(t *testing.T) {
	reg := quietRegistry()
	l := NewRegistryLauncher(reg)
	ctx := context.Background()

	older := instanceWithRoutes("i1", "p1", "project:p1", "/old")
	newer := instanceWithRoutes("i2", "p1", "project:p1", "/new")

	require.NoError(t, l.Start(ctx, older))
	require.NoError(t, l.Start(ctx, newer))
	_, found := reg.Lookup("GET", "/old")
	assert.False(t, found)
	_, found = reg.Lookup("GET", "/new")
	assert.True(t, found)

	// the older instance no longer owns the key
	require.NoError(t, l.Stop(ctx, older))
	_, found = reg.Lookup("GET", "/new")
	assert.True(t, found)

	require.NoError(t, l.Stop(ctx, newer))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryLauncherNeedsRoutes(t *testing.T) {
	l := NewRegistryLauncher(quietRegistry())
	err := l.Start(context.Background(), &mockinstance.MockInstance{ID: "empty"})
	assert.Error(t, err)
}

func TestRegistryLauncherDefaultsKeyToInstanceID(t *testing.T) {
	reg := quietRegistry()
	l := NewRegistryLauncher(reg)

	require.NoError(t, l.Start(context.Background(), instanceWithRoutes("i9", "p1", "", "/x")))
	assert.Equal(t, []string{"i9"}, reg.Keys())
}
