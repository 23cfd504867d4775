package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Lock backends.
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

type Config struct {
	Server struct {
		Port            int `yaml:"port"`
		ShutdownSeconds int `yaml:"shutdown_seconds"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Lock struct {
		Backend    string `yaml:"backend"` // local | redis
		TTLSeconds int    `yaml:"ttl_seconds"`
		Prefix     string `yaml:"prefix"`
	} `yaml:"lock"`

	API struct {
		RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
		RateLimitBurst     int     `yaml:"rate_limit_burst"`
	} `yaml:"api"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console | json
	} `yaml:"logging"`

	// Settings file seeds an empty database. With Watch on the file is
	// authoritative and every edit replaces the stored settings.
	Settings struct {
		Path                 string `yaml:"path"`
		Watch                bool   `yaml:"watch"`
		WatchIntervalSeconds int    `yaml:"watch_interval_seconds"`
		CacheTTLSeconds      int    `yaml:"cache_ttl_seconds"`
	} `yaml:"settings"`
}

// Load reads the service configuration. Variables from a .env file in the
// working directory are loaded first so ${VAR} placeholders can use them.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = 10
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/prenota.db"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Lock.Backend == "" {
		c.Lock.Backend = LockBackendLocal
	}
	if c.Lock.TTLSeconds <= 0 {
		c.Lock.TTLSeconds = 10
	}
	if c.Lock.Prefix == "" {
		c.Lock.Prefix = "prenota:lock:"
	}
	if c.API.RateLimitPerSecond <= 0 {
		c.API.RateLimitPerSecond = 20
	}
	if c.API.RateLimitBurst <= 0 {
		c.API.RateLimitBurst = 40
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8081
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Settings.WatchIntervalSeconds <= 0 {
		c.Settings.WatchIntervalSeconds = 30
	}
	if c.Settings.CacheTTLSeconds <= 0 {
		c.Settings.CacheTTLSeconds = 15
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Lock.Backend {
	case LockBackendLocal:
	case LockBackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("lock: redis backend requires redis.address")
		}
	default:
		return fmt.Errorf("lock: unknown backend %q", c.Lock.Backend)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	return nil
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Lock.TTLSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) SettingsWatchInterval() time.Duration {
	return time.Duration(c.Settings.WatchIntervalSeconds) * time.Second
}

func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.Settings.CacheTTLSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}
