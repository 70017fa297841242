// Package config resolves runtime settings from defaults, an optional TOML
// file, an optional .env file and HABITD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/sandeepkv93/habitd/internal/storage"
)

const envPrefix = "HABITD_"

type RuntimeConfig struct {
	Backend              string `toml:"backend"`
	StateDir             string `toml:"state_dir"`
	SQLitePath           string `toml:"sqlite_path"`
	RedisURL             string `toml:"redis_url"`
	RedisNamespace       string `toml:"redis_namespace"`
	PostgresURL          string `toml:"postgres_url"`
	Timezone             string `toml:"timezone"`
	BannerSeconds        int    `toml:"banner_seconds"`
	SchedulerBuffer      int    `toml:"scheduler_buffer"`
	DesktopNotifications bool   `toml:"desktop_notifications"`
	AMQPURL              string `toml:"amqp_url"`
	LogLevel             string `toml:"log_level"`
	LogFile              string `toml:"log_file"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Backend:              storage.BackendFile,
		StateDir:             ".habitd",
		RedisNamespace:       "habitd",
		Timezone:             "Local",
		BannerSeconds:        4,
		SchedulerBuffer:      64,
		DesktopNotifications: false,
		LogLevel:             "info",
	}
}

// Load applies, in order: defaults, the TOML file at path (when non-empty),
// a .env file in the working directory and the environment.
func Load(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	if path != "" {
		var err error
		cfg, err = LoadFile(path, cfg)
		if err != nil {
			return RuntimeConfig{}, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return RuntimeConfig{}, fmt.Errorf("read .env: %w", err)
	}
	cfg = RuntimeConfigFromEnv(cfg)
	return cfg, cfg.Validate()
}

// LoadFile overlays the keys present in the TOML file onto base.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("BACKEND"); ok {
		cfg.Backend = v
	}
	if v, ok := getEnvString("STATE_DIR"); ok {
		cfg.StateDir = v
	}
	if v, ok := getEnvString("SQLITE_PATH"); ok {
		cfg.SQLitePath = v
	}
	if v, ok := getEnvString("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := getEnvString("REDIS_NAMESPACE"); ok {
		cfg.RedisNamespace = v
	}
	if v, ok := getEnvString("POSTGRES_URL"); ok {
		cfg.PostgresURL = v
	}
	if v, ok := getEnvString("TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvInt("BANNER_SECONDS"); ok && v > 0 {
		cfg.BannerSeconds = v
	}
	if v, ok := getEnvInt("SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("AMQP_URL"); ok {
		cfg.AMQPURL = v
	}
	if v, ok := getEnvString("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	switch strings.ToLower(c.Backend) {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	case storage.BackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: redis backend requires redis_url")
		}
	case storage.BackendPostgres:
		if c.PostgresURL == "" {
			return errors.New("config: postgres backend requires postgres_url")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.BannerSeconds <= 0 {
		return errors.New("config: banner_seconds must be positive")
	}
	if c.SchedulerBuffer <= 0 {
		return errors.New("config: scheduler_buffer must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" mean the host zone.
func (c RuntimeConfig) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c RuntimeConfig) BannerDelay() time.Duration {
	return time.Duration(c.BannerSeconds) * time.Second
}

func (c RuntimeConfig) StorageOptions() storage.Options {
	sqlitePath := c.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(c.StateDir, "habitd.db")
	}
	return storage.Options{
		Backend:        c.Backend,
		StateDir:       c.StateDir,
		SQLitePath:     sqlitePath,
		RedisURL:       c.RedisURL,
		RedisNamespace: c.RedisNamespace,
		PostgresURL:    c.PostgresURL,
	}
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
