package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SourceStatic = "static"
	SourceSQLite = "sqlite"
	SourceHTTP   = "http"
)

type Config struct {
	Env        string           `yaml:"env" env:"APP_ENV" env-default:"prod"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

type ThresholdsConfig struct {
	Source    string       `yaml:"source" env:"THRESHOLDS_SOURCE" env-default:"static"`
	TablePath string       `yaml:"table_path" env:"THRESHOLDS_TABLE_PATH" env-default:"config/thresholds.yaml"`
	DBPath    string       `yaml:"db_path" env:"THRESHOLDS_DB_PATH" env-default:"/var/lib/labelscore/thresholds.db"`
	Remote    RemoteConfig `yaml:"remote"`
}

type RemoteConfig struct {
	URL     string        `yaml:"url" env:"THRESHOLDS_URL"`
	Token   string        `yaml:"token" env:"THRESHOLDS_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" env-default:"3"`
	InitialDelay time.Duration `yaml:"initial_delay" env-default:"200ms"`
	MaxDelay     time.Duration `yaml:"max_delay" env-default:"5s"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ResolvePath picks the config path: the explicit argument, then CONFIG_PATH,
// then config/config.yaml.
func ResolvePath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	return configPath
}

func Load(configPath string) (*Config, error) {
	configPath = ResolvePath(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Thresholds.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ThresholdsConfig) validate() error {
	switch c.Source {
	case SourceStatic, SourceSQLite:
		return nil
	case SourceHTTP:
		if c.Remote.URL == "" {
			return fmt.Errorf("thresholds.remote.url is required for source %q", SourceHTTP)
		}
		if c.Remote.Retry.MaxAttempts < 1 {
			c.Remote.Retry.MaxAttempts = 1
		}
		return nil
	default:
		return fmt.Errorf("unknown thresholds source %q", c.Source)
	}
}
