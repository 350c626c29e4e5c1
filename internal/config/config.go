// Package config reads server settings from the environment and game
// tuning from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tempest/internal/domain/sim"
	"tempest/internal/domain/world"
)

type Config struct {
	HTTPAddr        string
	DBDSN           string
	SQLitePath      string
	MigrationsDir   string
	GeminiAPIKey    string
	OracleModel     string
	OracleRetries   int
	OracleBaseDelay time.Duration
	TuningFile      string
	TerrainMode     world.TerrainMode
	ViewRadius      int
	LogFormat       string
	LogLevel        string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:        stringEnv("TEMPEST_HTTP_ADDR", ":8080"),
		DBDSN:           stringEnv("TEMPEST_DB_DSN", ""),
		SQLitePath:      stringEnv("TEMPEST_SQLITE_PATH", ""),
		MigrationsDir:   stringEnv("TEMPEST_MIGRATIONS_DIR", "db/migrations"),
		GeminiAPIKey:    stringEnv("GEMINI_API_KEY", ""),
		OracleModel:     stringEnv("TEMPEST_ORACLE_MODEL", ""),
		OracleRetries:   intEnv("TEMPEST_ORACLE_RETRIES", 5),
		OracleBaseDelay: time.Duration(intEnv("TEMPEST_ORACLE_BASE_DELAY_MS", 1000)) * time.Millisecond,
		TuningFile:      stringEnv("TEMPEST_TUNING_FILE", ""),
		TerrainMode:     world.TerrainMode(strings.ToLower(stringEnv("TEMPEST_TERRAIN_MODE", ""))),
		ViewRadius:      intEnv("TEMPEST_VIEW_RADIUS", 7),
		LogFormat:       stringEnv("TEMPEST_LOG_FORMAT", "text"),
		LogLevel:        stringEnv("TEMPEST_LOG_LEVEL", "info"),
	}
}

// Tuning resolves the game tuning: defaults, then the YAML file if one is
// set, then the terrain mode override.
func (c Config) Tuning() (sim.Tuning, error) {
	t := sim.DefaultTuning()
	if c.TuningFile != "" {
		var err error
		if t, err = LoadTuning(c.TuningFile); err != nil {
			return sim.Tuning{}, err
		}
	}
	switch c.TerrainMode {
	case "":
	case world.TerrainUniform, world.TerrainClustered:
		t.TerrainMode = c.TerrainMode
	default:
		return sim.Tuning{}, fmt.Errorf("unknown terrain mode %q", c.TerrainMode)
	}
	return t, nil
}

// LoadTuning overlays a YAML file on the default tuning. Keys missing from
// the file keep their default values.
func LoadTuning(path string) (sim.Tuning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return sim.Tuning{}, fmt.Errorf("read tuning %s: %w", path, err)
	}
	t := sim.DefaultTuning()
	if err := yaml.Unmarshal(b, &t); err != nil {
		return sim.Tuning{}, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if t.Width <= 0 || t.Height <= 0 {
		return sim.Tuning{}, fmt.Errorf("tuning %s: map size must be positive", path)
	}
	if t.ActionsPerDay <= 0 {
		return sim.Tuning{}, fmt.Errorf("tuning %s: actions_per_day must be positive", path)
	}
	return t, nil
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
