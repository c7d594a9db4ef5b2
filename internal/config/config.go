package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"taskboard/internal/storage"
	"taskboard/internal/store"
)

// EnvPrefix is prepended to every environment override, e.g.
// TASKBOARD_STORAGE_DRIVER.
const EnvPrefix = "TASKBOARD"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	Path       string `mapstructure:"path"`
	RedisURL   string `mapstructure:"redis_url"`
	Key        string `mapstructure:"key"`
	QuotaBytes int    `mapstructure:"quota_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment overrides
// registered. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.port", "8008")
	v.SetDefault("storage.driver", storage.DriverSQLite)
	v.SetDefault("storage.path", "taskboard.db")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.key", store.DefaultKey)
	v.SetDefault("storage.quota_bytes", 5*1024*1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env (if present) and the optional config file, then decodes
// everything into a Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("could not read .env, using system environment variables")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("config.server.port is required")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("config.storage.key is required")
	}
	switch strings.ToLower(c.Storage.Driver) {
	case storage.DriverSQLite, storage.DriverMemory:
	case storage.DriverRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("config.storage.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("config.storage.driver must be one of sqlite, redis, memory; got %q", c.Storage.Driver)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config.log.level: %w", err)
	}
	return nil
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:     c.Storage.Driver,
		Path:       c.Storage.Path,
		RedisURL:   c.Storage.RedisURL,
		QuotaBytes: c.Storage.QuotaBytes,
		Debug:      strings.EqualFold(c.Log.Level, "debug") || strings.EqualFold(c.Log.Level, "trace"),
	}
}

// ConfigureLogging applies the log settings to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if strings.EqualFold(c.Log.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
