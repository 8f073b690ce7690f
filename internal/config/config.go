package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the process-wide configuration: persistence, redis,
// the encryption secret, background-job cadence, and the plan table.
type Config struct {
	PostgresDSN string `koanf:"postgres_dsn"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	EncryptionSecret string `koanf:"encryption_secret"`

	RiskEvalInterval      time.Duration `koanf:"risk_eval_interval"`
	ApprovalSweepInterval time.Duration `koanf:"approval_sweep_interval"`

	// Plans maps a plan name to its custom-metric ceiling; 0 means
	// unlimited.
	Plans map[string]int `koanf:"plans"`
}

func Default() *Config {
	return &Config{
		RiskEvalInterval:      24 * time.Hour,
		ApprovalSweepInterval: time.Hour,
		Plans: map[string]int{
			"starter":    3,
			"growth":     10,
			"enterprise": 0,
		},
	}
}

// Load reads the YAML file at path (if it exists), then overlays
// PAYSCOPE_* environment variables (PAYSCOPE_POSTGRES_DSN -> postgres_dsn).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("PAYSCOPE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PAYSCOPE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the core cannot run without.
func (c *Config) Validate() error {
	if c.EncryptionSecret == "" {
		return errors.New("encryption_secret is required")
	}
	if c.RiskEvalInterval <= 0 {
		return errors.New("risk_eval_interval must be positive")
	}
	if c.ApprovalSweepInterval <= 0 {
		return errors.New("approval_sweep_interval must be positive")
	}
	return nil
}

// PlanCap returns the custom-metric ceiling for a plan. Unknown plans
// get the starter cap, the most restrictive stance.
func (c *Config) PlanCap(plan string) int {
	if cap, ok := c.Plans[plan]; ok {
		return cap
	}
	if cap, ok := c.Plans["starter"]; ok {
		return cap
	}
	return 3
}
