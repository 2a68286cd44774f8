package project

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvKey names the environment a test run targets.
type EnvKey string

const (
	EnvMock    EnvKey = "MOCK"
	EnvSandbox EnvKey = "SANDBOX"
	EnvProd    EnvKey = "PROD"
)

// ParseEnvKey accepts MOCK, SANDBOX or PROD in any case; empty means MOCK.
func ParseEnvKey(s string) (EnvKey, error) {
	switch EnvKey(strings.ToUpper(strings.TrimSpace(s))) {
	case "", EnvMock:
		return EnvMock, nil
	case EnvSandbox:
		return EnvSandbox, nil
	case EnvProd:
		return EnvProd, nil
	default:
		return "", fmt.Errorf("unknown environment %q", s)
	}
}

func (k EnvKey) IsExternal() bool {
	return k == EnvSandbox || k == EnvProd
}

// Project is the slice of the project aggregate this layer reads.
type Project struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	Config    RawConfig `gorm:"type:json" json:"config"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }

// RawConfig is the project's free-form configuration blob.
type RawConfig json.RawMessage

func (c *RawConfig) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = nil
	case []byte:
		*c = append((*c)[:0], v...)
	case string:
		*c = RawConfig(v)
	default:
		return errors.New("unsupported type for project config")
	}
	return nil
}

func (c RawConfig) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "{}", nil
	}
	return string(c), nil
}

func (c RawConfig) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("{}"), nil
	}
	return []byte(c), nil
}

func (c *RawConfig) UnmarshalJSON(data []byte) error {
	*c = append((*c)[:0], data...)
	return nil
}

// TestSettings is the per-project configuration for external environments.
type TestSettings struct {
	EnvOrigins       map[EnvKey]string `json:"envOrigins,omitempty" validate:"omitempty,dive,keys,oneof=SANDBOX PROD,endkeys,required"`
	AllowedHostnames []string          `json:"allowedHostnames,omitempty" validate:"omitempty,dive,required"`
}

type configDocument struct {
	TestSettings *TestSettings `json:"testSettings,omitempty"`
}

var settingsValidator = validator.New()

// TestSettings parses the testSettings section of the config blob. A blob without
// the section yields empty settings, which external environments reject.
func (p *Project) TestSettings() (TestSettings, error) {
	return ParseTestSettings(p.Config)
}

func ParseTestSettings(raw []byte) (TestSettings, error) {
	if len(raw) == 0 {
		return TestSettings{}, nil
	}
	var doc configDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return TestSettings{}, fmt.Errorf("invalid project config: %w", err)
	}
	if doc.TestSettings == nil {
		return TestSettings{}, nil
	}
	if err := settingsValidator.Struct(doc.TestSettings); err != nil {
		return TestSettings{}, fmt.Errorf("invalid test settings: %w", err)
	}
	return *doc.TestSettings, nil
}

// Origin returns the configured origin for key.
func (s TestSettings) Origin(key EnvKey) (string, bool) {
	v, ok := s.EnvOrigins[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// AllowsHost reports a case-insensitive allow-list hit.
func (s TestSettings) AllowsHost(hostname string) bool {
	for _, h := range s.AllowedHostnames {
		if strings.EqualFold(strings.TrimSpace(h), hostname) {
			return true
		}
	}
	return false
}
