package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read into Config,
// e.g. TIMESHEET_STORAGE_BACKEND.
const EnvPrefix = "TIMESHEET_"

// portEnv carries the bare PORT variable honoured by PaaS hosts.
type portEnv struct {
	Port string `env:"PORT"`
}

// parseEnv loads dotenvPath into the process environment (existing variables
// win, a missing file is fine) and overlays TIMESHEET_* variables and PORT.
func parseEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	var p portEnv
	if err := env.Parse(&p); err != nil {
		return err
	}
	if p.Port != "" {
		config.HTTPAddr = ":" + p.Port
	}

	return env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix})
}
