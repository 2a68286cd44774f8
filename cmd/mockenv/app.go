package main

import (
	"mock_env_server/app/http_mock_app"
	"mock_env_server/internal/domain/iface"
	"mock_env_server/internal/domain/services"
)

// App is the object graph every command starts from.
type App struct {
	Schemas           *http_mock_app.Schemas
	Monitor           iface.HealthMonitor
	Manager           iface.InstanceManager
	SettingsMigration *services.SettingsMigrationService
}
