package services

import (
	"context"
	"strings"
	"time"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	mockroute "mock_env_server/internal/domain/model/mock_route"
)

type MockServeService struct {
	registry *mockroute.Registry
	launcher *RegistryLauncher
}

var _ iface.MockServeService = (*MockServeService)(nil)

func NewMockServeService(registry *mockroute.Registry, launcher *RegistryLauncher) *MockServeService {
	return &MockServeService{registry: registry, launcher: launcher}
}

// Serve looks the request up and holds it for the entry latency. The wait ends
// early, with the context error, when the caller goes away.
func (s *MockServeService) Serve(ctx context.Context, method, path string) (*mockroute.Match, error) {
	normalized := mockroute.NormalizePath(path)
	match, ok := s.registry.Lookup(method, normalized)
	if !ok {
		return nil, &errs.RouteNotFoundError{Method: strings.ToUpper(method), Path: normalized}
	}

	if d := match.Latency(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return match, nil
}

func (s *MockServeService) Entries() []string {
	return s.registry.Keys()
}

func (s *MockServeService) InstanceServing(instanceID string) bool {
	return s.launcher.Serving(instanceID)
}
