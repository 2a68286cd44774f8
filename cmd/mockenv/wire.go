//go:build wireinject
// +build wireinject

package main

import (
	"mock_env_server/app/http_mock_app"
	"mock_env_server/internal/domain/services"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/repo"

	"github.com/google/wire"
)

func initializeApp(c *configs.AppConfig) (*App, func(), error) {
	wire.Build(
		repo.RepoSet,
		services.ServiceSet,
		http_mock_app.ControllerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
