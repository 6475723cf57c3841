package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
	// PositionMaxAge is how long, in seconds, a drone fix may be used as a start point.
	PositionMaxAge int `mapstructure:"position_max_age"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

// PlannerConfig tunes the coverage planner.
type PlannerConfig struct {
	Footprint      string  `mapstructure:"footprint"` // "angular" or "linear"
	CruiseSpeed    float64 `mapstructure:"cruise_speed"`
	Workers        int     `mapstructure:"workers"`
	MaxGridCells   int     `mapstructure:"max_grid_cells"`
	MaxAbsLatitude float64 `mapstructure:"max_abs_latitude"`
	MaxSpanMeters  float64 `mapstructure:"max_span_meters"`
	CacheTTL       int     `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skyscan")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "skyscan")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.position_max_age", 30)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "mission-dispatch")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("planner.footprint", "angular")
	v.SetDefault("planner.cruise_speed", 10.0)
	v.SetDefault("planner.workers", 1)
	v.SetDefault("planner.max_grid_cells", 1_000_000)
	v.SetDefault("planner.max_abs_latitude", 80.0)
	v.SetDefault("planner.max_span_meters", 50_000.0)
	v.SetDefault("planner.cache_ttl", 600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SKYSCAN_PLANNER_CRUISE_SPEED → planner.cruise_speed
	v.SetEnvPrefix("SKYSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.Enabled && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal is enabled")
	}
	switch c.Planner.Footprint {
	case "angular", "linear":
	default:
		errs = append(errs, fmt.Sprintf("planner.footprint must be angular or linear, got %q", c.Planner.Footprint))
	}
	if c.Planner.CruiseSpeed <= 0 {
		errs = append(errs, "planner.cruise_speed must be positive")
	}
	if c.Planner.Workers < 1 {
		errs = append(errs, "planner.workers must be at least 1")
	}
	if c.Planner.MaxGridCells < 0 || c.Planner.MaxAbsLatitude < 0 || c.Planner.MaxSpanMeters < 0 {
		errs = append(errs, "planner limits must not be negative (0 disables a limit)")
	}
	if c.Planner.MaxAbsLatitude > 90 {
		errs = append(errs, "planner.max_abs_latitude must be at most 90")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
