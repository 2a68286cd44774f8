package services

import (
	"mock_env_server/internal/domain/iface"
	mockroute "mock_env_server/internal/domain/model/mock_route"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/utils"

	"github.com/google/wire"
)

// NewMockRegistry creates the process registry. The composition root owns it.
func NewMockRegistry() *mockroute.Registry {
	return mockroute.NewRegistry(utils.GetLogger())
}

var ServiceSet = wire.NewSet(
	configs.NewHealthConfig,
	configs.NewRunnerConfig,
	configs.NewSecurityConfig,
	NewMockRegistry,
	NewRegistryLauncher,
	wire.Bind(new(Launcher), new(*RegistryLauncher)),
	NewMockServeService,
	wire.Bind(new(iface.MockServeService), new(*MockServeService)),
	NewInstanceManagerService,
	wire.Bind(new(iface.InstanceManager), new(*InstanceManagerService)),
	NewHTTPProber,
	wire.Bind(new(iface.Prober), new(*HTTPProber)),
	NewHealthMonitorService,
	wire.Bind(new(iface.HealthMonitor), new(*HealthMonitorService)),
	NewOriginResolverService,
	wire.Bind(new(iface.OriginResolver), new(*OriginResolverService)),
	NewHTTPCaseExecutor,
	wire.Bind(new(iface.CaseExecutor), new(*HTTPCaseExecutor)),
	NewTestCoordinatorService,
	wire.Bind(new(iface.TestCoordinator), new(*TestCoordinatorService)),
	NewMockProvisionService,
	wire.Bind(new(iface.MockProvisioner), new(*MockProvisionService)),
	NewSettingsMigrationService,
)
