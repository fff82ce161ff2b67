// Package config loads driver settings from a JSON file layered over
// built-in defaults. ${VAR} references in the file are replaced with
// environment variables before parsing.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/chester/internal/engine"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "CHESTER_CONFIG"

// ErrInvalidConfig is returned by Validate and Load for out-of-range values.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings shared by the drivers.
type Config struct {
	Engine EngineConfig `json:"engine"`
	Log    LogConfig    `json:"log"`
}

// EngineConfig holds the search settings.
type EngineConfig struct {
	Depth            int    `json:"depth"`
	MoveTimeMS       int    `json:"moveTimeMs"` // 0 = no limit
	Workers          int    `json:"workers"`
	CacheEntries     int    `json:"cacheEntries"` // 0 disables the score cache
	StalematePenalty int    `json:"stalematePenalty"`
	StateProbeCutoff int    `json:"stateProbeCutoff"` // negative disables the probe
	Difficulty       string `json:"difficulty"`       // optional: easy, medium, hard
	Book             string `json:"book"`             // optional opening book file
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Verbosity int `json:"verbosity"`
}

// Default returns the built-in settings.
func Default() *Config {
	ec := engine.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Depth:            ec.Depth,
			Workers:          ec.Workers,
			CacheEntries:     ec.CacheEntries,
			StalematePenalty: ec.StalematePenalty,
			StateProbeCutoff: ec.StateProbeCutoff,
		},
	}
}

// Load reads the JSON file at path over the defaults. An empty path
// returns the defaults. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Replace environment variables in the config
	configStr := expandEnvVars(string(data))

	if err := json.Unmarshal([]byte(configStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.Depth < 0 || e.Depth > engine.MaxDepth:
		return fmt.Errorf("%w: engine.depth %d not in [0, %d]", ErrInvalidConfig, e.Depth, engine.MaxDepth)
	case e.MoveTimeMS < 0:
		return fmt.Errorf("%w: engine.moveTimeMs %d is negative", ErrInvalidConfig, e.MoveTimeMS)
	case e.Workers < 1:
		return fmt.Errorf("%w: engine.workers %d is less than 1", ErrInvalidConfig, e.Workers)
	case e.CacheEntries < 0:
		return fmt.Errorf("%w: engine.cacheEntries %d is negative", ErrInvalidConfig, e.CacheEntries)
	case c.Log.Verbosity < 0:
		return fmt.Errorf("%w: log.verbosity %d is negative", ErrInvalidConfig, c.Log.Verbosity)
	}
	if e.Difficulty != "" {
		if _, err := engine.ParseDifficulty(e.Difficulty); err != nil {
			return fmt.Errorf("%w: engine.difficulty: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// EngineConfig converts the settings to engine parameters.
func (c *Config) EngineConfig(log logr.Logger) engine.Config {
	return engine.Config{
		Depth:            c.Engine.Depth,
		StateProbeCutoff: c.Engine.StateProbeCutoff,
		StalematePenalty: c.Engine.StalematePenalty,
		Workers:          c.Engine.Workers,
		CacheEntries:     c.Engine.CacheEntries,
		Logger:           log,
	}
}

// Limits returns the per-move search limits. A configured difficulty
// takes precedence over depth and move time.
func (c *Config) Limits() engine.Limits {
	if c.Engine.Difficulty != "" {
		if d, err := engine.ParseDifficulty(c.Engine.Difficulty); err == nil {
			return engine.DifficultySettings[d]
		}
	}
	return engine.Limits{
		Depth:    c.Engine.Depth,
		MoveTime: time.Duration(c.Engine.MoveTimeMS) * time.Millisecond,
	}
}
