package services

import (
	"context"
	"testing"

	"mock_env_server/internal/domain/errs"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	"mock_env_server/internal/domain/model/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFixture(instances ...*mockinstance.MockInstance) (*OriginResolverService, *fakeInstanceRepo, *countingLauncher) {
	projects := newFakeProjectRepo(
		&project.Project{ID: "p-ok", Config: project.RawConfig(`{"testSettings":{"envOrigins":{"SANDBOX":"https://sandbox.vendor.com/api","PROD":"https://api.vendor.com"},"allowedHostnames":["sandbox.vendor.com"]}}`)},
		&project.Project{ID: "p-empty", Config: project.RawConfig(`{"name":"x"}`)},
		&project.Project{ID: "p-private", Config: project.RawConfig(`{"testSettings":{"envOrigins":{"SANDBOX":"https://127.0.0.1"},"allowedHostnames":["127.0.0.1"]}}`)},
		&project.Project{ID: "p-broken", Config: project.RawConfig(`not json`)},
	)
	instanceRepo := newFakeInstanceRepo(instances...)
	launcher := &countingLauncher{}
	manager := NewInstanceManagerService(instanceRepo, launcher, testHealthConfig())
	return NewOriginResolverService(instanceRepo, projects, manager), instanceRepo, launcher
}

func TestResolveMockStartsNewestInstance(t *testing.T) {
	older := instanceWithRoutes("i-old", "p-ok", "", "/a")
	older.BaseURL = "https://mocks.example.com/old"
	newer := instanceWithRoutes("i-new", "p-ok", "", "/a")
	resolver, repo, launcher := resolverFixture(older, newer)

	origin, err := resolver.Resolve(context.Background(), project.EnvMock, "p-ok")
	require.NoError(t, err)
	assert.Equal(t, "https://mocks.example.com/mock", origin)
	assert.Equal(t, mockinstance.StatusRunning, repo.get("i-new").Status)
	assert.Equal(t, mockinstance.StatusStopped, repo.get("i-old").Status)
	assert.Equal(t, 1, launcher.startCount())

	// already running: no further start
	_, err = resolver.Resolve(context.Background(), project.EnvMock, "p-ok")
	require.NoError(t, err)
	assert.Equal(t, 1, launcher.startCount())
}

func TestResolveMockWithoutInstance(t *testing.T) {
	resolver, _, _ := resolverFixture()
	_, err := resolver.Resolve(context.Background(), project.EnvMock, "p-ok")
	require.Error(t, err)
	assert.IsType(t, &errs.NoMockInstanceError{}, err)
}

func TestResolveMockStartFailure(t *testing.T) {
	resolver, repo, launcher := resolverFixture(instanceWithRoutes("i1", "p-ok", "", "/a"))
	launcher.failStarts = 10

	_, err := resolver.Resolve(context.Background(), project.EnvMock, "p-ok")
	require.Error(t, err)
	assert.Equal(t, errs.KindTransient, errs.KindOf(err))
	assert.Equal(t, mockinstance.StatusStopped, repo.get("i1").Status)
}

func TestResolveExternal(t *testing.T) {
	resolver, _, _ := resolverFixture()

	tests := []struct {
		name      string
		envKey    project.EnvKey
		projectID string
		want      string
		wantErr   interface{}
	}{
		{name: "sandbox", envKey: project.EnvSandbox, projectID: "p-ok", want: "https://sandbox.vendor.com"},
		{name: "prod host not allowed", envKey: project.EnvProd, projectID: "p-ok", wantErr: &errs.HostNotAllowedError{}},
		{name: "no settings", envKey: project.EnvSandbox, projectID: "p-empty", wantErr: &errs.OriginNotConfiguredError{}},
		{name: "private target", envKey: project.EnvSandbox, projectID: "p-private", wantErr: &errs.PrivateNetworkBlockedError{}},
		{name: "unknown project", envKey: project.EnvProd, projectID: "nope", wantErr: &errs.ProjectNotFoundError{}},
		{name: "unknown env", envKey: project.EnvKey("STAGING"), projectID: "p-ok", wantErr: &errs.ValidationError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(context.Background(), tt.envKey, tt.projectID)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.IsType(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveExternalBrokenConfig(t *testing.T) {
	resolver, _, _ := resolverFixture()
	_, err := resolver.Resolve(context.Background(), project.EnvSandbox, "p-broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p-broken")
}
