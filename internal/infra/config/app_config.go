package configs

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "MOCKENV_CONFIG_PATH"
	configEnvEnv     = "MOCKENV_ENV"
	healthSecretEnv  = "MOCKENV_HEALTH_SECRET"
	jwtSecretEnv     = "MOCKENV_JWT_SECRET"
	publicBaseURLEnv = "MOCKENV_PUBLIC_BASE_URL"
)

// AppConfig is the service configuration.
type AppConfig struct {
	DatabaseConfig       DatabaseConfig       `yaml:"database"`
	DatabaseOptionConfig DatabaseOptionConfig `yaml:"databaseConfig"`
	RedisConfig          RedisConfig          `yaml:"redis"`
	RepoConfig           RepoConfig           `yaml:"repo"`
	HealthConfig         HealthConfig         `yaml:"health"`
	RunnerConfig         RunnerConfig         `yaml:"runner"`
	SecurityConfig       SecurityConfig       `yaml:"security"`
	RateLimitConfig      RateLimitConfig      `yaml:"rateLimit"`
}

// RepoConfig retry and pool settings for the repositories.
type RepoConfig struct {
	RedisCacheRetryCount int           `json:"redisCacheRetryCount" yaml:"redisCacheRetryCount" validate:"min=1"`
	RedisCacheRetryDelay time.Duration `json:"redisCacheRetryDelay" yaml:"redisCacheRetryDelay" validate:"gte=0"`
	SuiteCacheTTL        time.Duration `json:"suiteCacheTTL" yaml:"suiteCacheTTL" validate:"gt=0"`
	SaveDBRetryCount     int           `json:"saveDBRetryCount" yaml:"saveDBRetryCount" validate:"min=1"`
	SaveDBRetryDelay     time.Duration `json:"saveDBRetryDelay" yaml:"saveDBRetryDelay" validate:"gte=0"`
	CacheFillPoolSize    int           `json:"cacheFillPoolSize" yaml:"cacheFillPoolSize" validate:"min=1"`
}

// HealthConfig drives the health monitor and the instance manager.
type HealthConfig struct {
	Interval         time.Duration `yaml:"interval" validate:"gt=0"`
	ProbeTimeout     time.Duration `yaml:"probeTimeout" validate:"gt=0"`
	AutoRestart      bool          `yaml:"autoRestart"`
	PoolSize         int           `yaml:"poolSize" validate:"min=1"`
	StartRetryCount  int           `yaml:"startRetryCount" validate:"min=1"`
	StartRetryDelay  time.Duration `yaml:"startRetryDelay" validate:"gte=0"`
	RehydrateOnBoot  bool          `yaml:"rehydrateOnBoot"`
	DefaultLatencyMs int           `yaml:"defaultLatencyMs" validate:"gte=0,lte=60000"`
}

// RunnerConfig drives suite case execution.
type RunnerConfig struct {
	CaseTimeout time.Duration `yaml:"caseTimeout" validate:"gt=0"`
	MaxRepeat   int           `yaml:"maxRepeat" validate:"min=1"`
}

type SecurityConfig struct {
	HealthSecret  string `yaml:"healthSecret"`
	JWTSecret     string `yaml:"jwtSecret"`
	PublicBaseURL string `yaml:"publicBaseUrl" validate:"omitempty,url"`
}

// RateLimitConfig for partner-triggered runs. Backend is memory or redis.
type RateLimitConfig struct {
	Backend   string        `yaml:"backend" validate:"omitempty,oneof=memory redis"`
	Requests  int           `yaml:"requests" validate:"min=1"`
	Window    time.Duration `yaml:"window" validate:"gt=0"`
	Burst     int           `yaml:"burst" validate:"min=1"`
	TableSize int           `yaml:"tableSize" validate:"min=1"`
}

// LoadAppConfig loads .env, then the YAML file, then environment overrides.
func LoadAppConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	configPath := getConfigPath()
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseAppConfig(configFile)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// ParseAppConfig parses YAML, applies defaults and environment overrides, and validates.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	config := &AppConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()
	config.applyEnv()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func NewRepoConfig(c *AppConfig) *RepoConfig           { return &c.RepoConfig }
func NewHealthConfig(c *AppConfig) *HealthConfig       { return &c.HealthConfig }
func NewRunnerConfig(c *AppConfig) *RunnerConfig       { return &c.RunnerConfig }
func NewSecurityConfig(c *AppConfig) *SecurityConfig   { return &c.SecurityConfig }
func NewRateLimitConfig(c *AppConfig) *RateLimitConfig { return &c.RateLimitConfig }

func getConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	env := os.Getenv(configEnvEnv)
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("conf/mockenv.%s.yaml", env)
}

func (c *AppConfig) applyDefaults() {
	if c.DatabaseOptionConfig.MaxIdleConns == 0 {
		c.DatabaseOptionConfig.MaxIdleConns = 5
	}
	if c.DatabaseOptionConfig.MaxOpenConns == 0 {
		c.DatabaseOptionConfig.MaxOpenConns = 20
	}
	r := &c.RepoConfig
	if r.RedisCacheRetryCount == 0 {
		r.RedisCacheRetryCount = 3
	}
	if r.RedisCacheRetryDelay == 0 {
		r.RedisCacheRetryDelay = 50 * time.Millisecond
	}
	if r.SuiteCacheTTL == 0 {
		r.SuiteCacheTTL = 10 * time.Minute
	}
	if r.SaveDBRetryCount == 0 {
		r.SaveDBRetryCount = 3
	}
	if r.SaveDBRetryDelay == 0 {
		r.SaveDBRetryDelay = 100 * time.Millisecond
	}
	if r.CacheFillPoolSize == 0 {
		r.CacheFillPoolSize = 8
	}
	h := &c.HealthConfig
	if h.Interval == 0 {
		h.Interval = time.Minute
	}
	if h.ProbeTimeout == 0 {
		h.ProbeTimeout = 5 * time.Second
	}
	if h.PoolSize == 0 {
		h.PoolSize = 16
	}
	if h.StartRetryCount == 0 {
		h.StartRetryCount = 3
	}
	if h.StartRetryDelay == 0 {
		h.StartRetryDelay = 200 * time.Millisecond
	}
	if c.RunnerConfig.CaseTimeout == 0 {
		c.RunnerConfig.CaseTimeout = 15 * time.Second
	}
	if c.RunnerConfig.MaxRepeat == 0 {
		c.RunnerConfig.MaxRepeat = 50
	}
	rl := &c.RateLimitConfig
	if rl.Backend == "" {
		rl.Backend = "memory"
	}
	if rl.Requests == 0 {
		rl.Requests = 10
	}
	if rl.Window == 0 {
		rl.Window = time.Minute
	}
	if rl.Burst == 0 {
		rl.Burst = 3
	}
	if rl.TableSize == 0 {
		rl.TableSize = 4096
	}
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv(healthSecretEnv); v != "" {
		c.SecurityConfig.HealthSecret = v
	}
	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.SecurityConfig.JWTSecret = v
	}
	if v := os.Getenv(publicBaseURLEnv); v != "" {
		c.SecurityConfig.PublicBaseURL = v
	}
	c.SecurityConfig.PublicBaseURL = strings.TrimRight(c.SecurityConfig.PublicBaseURL, "/")
}

func (c *AppConfig) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	dbConfig := c.DatabaseOptionConfig
	if dbConfig.MaxOpenConns < dbConfig.MaxIdleConns {
		return fmt.Errorf("maxOpenConns must be greater than or equal to maxIdleConns")
	}
	if c.SecurityConfig.JWTSecret == "" {
		return fmt.Errorf("security.jwtSecret is required")
	}
	if c.SecurityConfig.PublicBaseURL == "" {
		return fmt.Errorf("security.publicBaseUrl is required")
	}
	if c.RedisConfig.Host == "" || c.RedisConfig.Port == 0 {
		return fmt.Errorf("redis.host and redis.port are required")
	}
	return nil
}
