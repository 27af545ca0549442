// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Runtime holds environment-driven settings for the headless runner.
type Runtime struct {
	LogLevel      string `env:"COURSELOOM_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"COURSELOOM_LOG_FORMAT" envDefault:"text"`
	LogFile       string `env:"COURSELOOM_LOG_FILE"`
	HistoryDB     string `env:"COURSELOOM_HISTORY_DB"`
	ScriptTimeout int    `env:"COURSELOOM_SCRIPT_TIMEOUT_MS" envDefault:"5000"`
}

// Load parses runtime configuration from environment variables.
func Load() (Runtime, error) {
	var cfg Runtime
	if err := env.Parse(&cfg); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
