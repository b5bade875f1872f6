package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_ALLOWED_USERS is the allow-list the in-process relay starts with
	AllowedUsers string `envconfig:"E2E_ALLOWED_USERS" default:"SAMUEL ANJOLA"`
	// E2E_TIMEOUT bounds every wait on an asynchronous outcome
	Timeout time.Duration `envconfig:"E2E_TIMEOUT" default:"3s"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_DEBUG_LOGS turns the relay and client loggers to debug
	DebugLogs bool `envconfig:"E2E_DEBUG_LOGS" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
