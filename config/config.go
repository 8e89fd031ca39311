/*
Package config loads server configuration from an optional YAML file with
environment variable overrides on top.

Precedence, lowest to highest: built-in defaults, config.yaml, environment.
A missing config file is fine; a present but unparseable one is an error.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minagawaharuto/shift-automation-tools/engine"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	DBPath   string `yaml:"db_path"`

	// Solver knobs. Zero values fall back to the engine defaults.
	BudgetSeconds int `yaml:"budget_seconds"`
	RestMin       int `yaml:"rest_min"`
	RestMax       int `yaml:"rest_max"`
	RestTarget    int `yaml:"rest_target"`
	RewardEarly   int `yaml:"reward_early"`
	RewardLate    int `yaml:"reward_late"`
	RewardRest    int `yaml:"reward_rest"`
	RewardAny     int `yaml:"reward_any"`
}

// Load reads path (if it exists), applies environment overrides, fills in
// defaults, and validates.
func Load(path string) (Config, error) {
	cfg := Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	envOverride(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverride(&cfg.DBPath, "DB_PATH")
	if err := firstErr(
		envOverrideInt(&cfg.BudgetSeconds, "BUDGET_SECONDS"),
		envOverrideInt(&cfg.RestMin, "REST_MIN"),
		envOverrideInt(&cfg.RestMax, "REST_MAX"),
		envOverrideInt(&cfg.RestTarget, "REST_TARGET"),
		envOverrideInt(&cfg.RewardEarly, "REWARD_EARLY"),
		envOverrideInt(&cfg.RewardLate, "REWARD_LATE"),
		envOverrideInt(&cfg.RewardRest, "REWARD_REST"),
		envOverrideInt(&cfg.RewardAny, "REWARD_ANY"),
	); err != nil {
		return Config{}, err
	}

	def := engine.DefaultPolicy()
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./shifts.db"
	}
	if cfg.BudgetSeconds == 0 {
		cfg.BudgetSeconds = int(def.Budget / time.Second)
	}
	if cfg.RestMin == 0 {
		cfg.RestMin = def.RestMin
	}
	if cfg.RestMax == 0 {
		cfg.RestMax = def.RestMax
	}
	if cfg.RestTarget == 0 {
		cfg.RestTarget = def.RestTarget
	}
	if cfg.RewardEarly == 0 {
		cfg.RewardEarly = def.RewardEarly
	}
	if cfg.RewardLate == 0 {
		cfg.RewardLate = def.RewardLate
	}
	if cfg.RewardRest == 0 {
		cfg.RewardRest = def.RewardRest
	}
	if cfg.RewardAny == 0 {
		cfg.RewardAny = def.RewardAny
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BudgetSeconds < 1 {
		return fmt.Errorf("budget_seconds must be >= 1, got %d", c.BudgetSeconds)
	}
	if c.RestMin < 0 || c.RestMax < c.RestMin {
		return fmt.Errorf("rest band [%d, %d] is not a valid range", c.RestMin, c.RestMax)
	}
	if c.RestTarget < c.RestMin || c.RestTarget > c.RestMax {
		return fmt.Errorf("rest_target %d outside band [%d, %d]", c.RestTarget, c.RestMin, c.RestMax)
	}
	for name, v := range map[string]int{
		"reward_early": c.RewardEarly,
		"reward_late":  c.RewardLate,
		"reward_rest":  c.RewardRest,
		"reward_any":   c.RewardAny,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", name, v)
		}
	}
	return nil
}

// Policy converts the solver knobs into an engine policy.
func (c Config) Policy() engine.Policy {
	return engine.Policy{
		RestMin:     c.RestMin,
		RestMax:     c.RestMax,
		RestTarget:  c.RestTarget,
		RewardEarly: c.RewardEarly,
		RewardLate:  c.RewardLate,
		RewardRest:  c.RewardRest,
		RewardAny:   c.RewardAny,
		Budget:      time.Duration(c.BudgetSeconds) * time.Second,
	}
}

func envOverride(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

func envOverrideInt(field *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*field = parsed
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
