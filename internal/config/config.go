// Package config loads the monitor configuration from a YAML file with
// environment-variable overrides. Threshold keys must all be present in the
// loaded configuration: a missing or invalid threshold is a configuration
// error, never a silently substituted default.
package config

// #region imports
import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/alexdbatista/driftwatch/internal/monitor"
)

// #endregion

// #region config

// envPrefix namespaces the override variables, e.g.
// DRIFTWATCH_THRESHOLDS_MISSING_RATE -> thresholds.missing_rate.
const envPrefix = "DRIFTWATCH_"

// Config is the full monitor configuration.
type Config struct {
	DBPath      string                `koanf:"db_path"`
	LogLevel    string                `koanf:"log_level"`
	ProfilePath string                `koanf:"profile_path"`
	Thresholds  monitor.Thresholds    `koanf:"thresholds"`
	Retraining  monitor.RetrainPolicy `koanf:"retraining"`
}

// thresholdKeys are the recognized threshold names; every one must appear in
// the loaded configuration.
var thresholdKeys = []string{
	"distribution_shift",
	"error_rate_warning",
	"error_rate_critical",
	"missing_rate",
	"outlier_zscore",
	"outlier_rate",
	"subgroup_disparity",
	"zone_agreement_min",
}

// #endregion config

// #region load

// Load reads the YAML file at path, overlays DRIFTWATCH_* environment
// variables, and validates the result eagerly.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(content)
}

// Parse loads configuration from raw YAML bytes plus the environment.
func Parse(content []byte) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides. Section names are fixed, so the underscore
	// after a known section splits the key path:
	//   DRIFTWATCH_THRESHOLDS_MISSING_RATE -> thresholds.missing_rate
	//   DRIFTWATCH_DB_PATH                 -> db_path
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		for _, section := range []string{"thresholds", "retraining"} {
			if strings.HasPrefix(key, section+"_") {
				return section + "." + strings.TrimPrefix(key, section+"_")
			}
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	for _, key := range thresholdKeys {
		if !k.Exists("thresholds." + key) {
			return nil, &monitor.ConfigurationError{
				Field:  "thresholds." + key,
				Reason: "required threshold is not set",
			}
		}
	}
	if !k.Exists("retraining.critical_count") {
		k.Set("retraining.critical_count", monitor.DefaultRetrainPolicy().CriticalCount)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "driftwatch.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Retraining.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// #endregion load
