package mockinstance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	mockroute "mock_env_server/internal/domain/model/mock_route"
)

// MockInstance is one simulated backend deployment of a project. Records are
// retained for audit and never hard-deleted.
type MockInstance struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID     string         `gorm:"type:varchar(36);index:idx_project_created,priority:1" json:"projectId"`
	BaseURL       string         `gorm:"type:varchar(255)" json:"baseUrl"`
	Status        Status         `gorm:"type:varchar(20);index" json:"status"`
	HealthStatus  HealthStatus   `gorm:"type:varchar(20)" json:"healthStatus"`
	LastHealthAt  *time.Time     `json:"lastHealthAt,omitempty"`
	LastStoppedAt *time.Time     `json:"lastStoppedAt,omitempty"`
	Config        InstanceConfig `gorm:"type:json" json:"config"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index:idx_project_created,priority:2" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MockInstance) TableName() string { return "mock_instances" }

func (m *MockInstance) IsRunning() bool {
	return m.Status == StatusRunning
}

// ProbePathPrefix is the mock proxy path that answers for one instance.
const ProbePathPrefix = "/_instances/"

// ProbeURL is the liveness target of the instance. The proxy answers it only
// while the routes of that instance are registered.
func (m *MockInstance) ProbeURL() string {
	return strings.TrimRight(m.BaseURL, "/") + ProbePathPrefix + m.ID
}

// InstanceConfig is the generated mock set plus free-form settings.
type InstanceConfig struct {
	RegistryKey string            `json:"registryKey"`
	LatencyMs   int               `json:"latencyMs,omitempty"`
	Routes      []mockroute.Route `json:"routes,omitempty"`
	Extra       map[string]any    `json:"extra,omitempty"`
}

// Entry converts the config into a registry entry.
func (c InstanceConfig) Entry() mockroute.Entry {
	return mockroute.Entry{Routes: c.Routes, LatencyMs: c.LatencyMs}
}

func (c *InstanceConfig) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*c = InstanceConfig{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for mock instance config")
	}
	if len(data) == 0 {
		*c = InstanceConfig{}
		return nil
	}
	return json.Unmarshal(data, c)
}

func (c InstanceConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
