package http_mock_app

import (
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/ratelimit"

	"github.com/google/wire"
)

// Schemas is every REST schema the server registers.
type Schemas struct {
	MockProxy    *MockProxyController
	Health       *HealthController
	TestRun      *TestRunController
	MockInstance *MockInstanceController
}

func (s *Schemas) All() []interface{} {
	return []interface{}{s.MockProxy, s.Health, s.TestRun, s.MockInstance}
}

var ControllerSet = wire.NewSet(
	configs.NewRateLimitConfig,
	ratelimit.NewLimiter,
	NewSessionAuth,
	NewMockProxyController,
	NewHealthController,
	NewTestRunController,
	NewMockInstanceController,
	wire.Struct(new(Schemas), "*"),
)
