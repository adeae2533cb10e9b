// Package config handles application configuration. Values come from
// environment variables (with a .env file loaded when present) and an
// optional YAML file pointed at by VIP_CONFIG_FILE; the file wins over
// defaults, environment variables win over both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable values for the backend.
type Config struct {
	Env            string        `yaml:"env"`
	Port           string        `yaml:"port"`
	DBPath         string        `yaml:"db_path"`
	FleetSyncPause time.Duration `yaml:"fleet_sync_pause"`
}

// Load populates a Config from the YAML file (if any) and the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; deployed environments set real vars.
	_ = godotenv.Load()

	cfg := &Config{
		Env:            "development",
		Port:           "8080",
		DBPath:         "vip.db",
		FleetSyncPause: 2 * time.Second,
	}

	if path := os.Getenv("VIP_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)

	if v := os.Getenv("FLEET_SYNC_PAUSE"); v != "" {
		pause, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FLEET_SYNC_PAUSE: %w", err)
		}
		cfg.FleetSyncPause = pause
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid port %q", cfg.Port)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
