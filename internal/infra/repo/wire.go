package repo

import (
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/storage"

	"github.com/google/wire"
)

var RepoSet = wire.NewSet(
	configs.NewRepoConfig,
	storage.StorageSet,
	NewInstanceRepoImpl,
	NewProjectRepoImpl,
	NewSuiteRepoImpl,
	NewRunRepoImpl,
)
