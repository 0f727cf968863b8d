package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort      = 3001
	DefaultStaticDir = "build"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	StaticDir   string `toml:"static_dir"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	MetricsEnabled        bool   `toml:"metrics_enabled"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis, used only for rate limiting new notes; empty host disables it
	RedisHost              string `toml:"redis_host"`
	RedisPort              string `toml:"redis_port"`
	NotesCreateLimitPerMin int    `toml:"notes_create_limit_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Default() *Config {
	return &Config{
		Host:                   "",
		Port:                   DefaultPort,
		StaticDir:              DefaultStaticDir,
		LogLevel:               "info",
		LogToStdout:            true,
		PrometheusMetricsHost:  "localhost",
		PrometheusMetricsPort:  "9090",
		RedisPort:              "6379",
		NotesCreateLimitPerMin: 60,
	}
}

// Load reads the config for env from the TOML file at path. A missing file is
// not an error, defaults are used instead. The PORT env var always wins.
func Load(env, path string) (*Config, error) {
	cfg := Default()

	var tomlCfg Toml
	_, err := toml.DecodeFile(path, &tomlCfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	default:
		envCfg, err := tomlCfg.Get(env)
		if err != nil {
			return nil, err
		}
		if envCfg == nil {
			return nil, fmt.Errorf("config for env [%s] not found in [%s]", env, path)
		}
		cfg.merge(envCfg)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Environment = env
	return cfg, nil
}

func (c *Config) merge(other *Config) {
	if other.Host != "" {
		c.Host = other.Host
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.StaticDir != "" {
		c.StaticDir = other.StaticDir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.PrometheusMetricsHost != "" {
		c.PrometheusMetricsHost = other.PrometheusMetricsHost
	}
	if other.PrometheusMetricsPort != "" {
		c.PrometheusMetricsPort = other.PrometheusMetricsPort
	}
	if other.RedisPort != "" {
		c.RedisPort = other.RedisPort
	}
	if other.NotesCreateLimitPerMin != 0 {
		c.NotesCreateLimitPerMin = other.NotesCreateLimitPerMin
	}
	c.LogsPath = other.LogsPath
	c.LogToStdout = other.LogToStdout
	c.LogFormatJSON = other.LogFormatJSON
	c.SentryEnabled = other.SentryEnabled
	c.MetricsEnabled = other.MetricsEnabled
	c.RedisHost = other.RedisHost
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	portStr, ok := lookup("PORT")
	if !ok || portStr == "" {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid PORT env var [%s]", portStr)
	}
	c.Port = port
	return nil
}

func (c *Config) RateLimitEnabled() bool {
	return c.RedisHost != "" && c.NotesCreateLimitPerMin > 0
}
