package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// parseDotEnv applies variables from a .env file in the working directory.
// A missing file is not an error.
func parseDotEnv(cfg *Config, getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))
	switch {
	case err == nil:
		parseEnv(cfg, func(key string) string { return envMap[key] })
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// parseEnv applies non-empty TASKBOARD_* variables returned by getenv.
func parseEnv(cfg *Config, getenv func(string) string) {
	setString := func(o *string) func(string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"TASKBOARD_SERVER_URL":    setString(&cfg.ServerURL),
		"TASKBOARD_DATABASE_PATH": setString(&cfg.DatabasePath),
		"TASKBOARD_STORE_SECRET":  setString(&cfg.StoreSecret),
		"TASKBOARD_LOG_LEVEL":     setString(&cfg.LogLevel),
		"TASKBOARD_LOG_FORMAT":    setString(&cfg.LogFormat),
	}

	for key, apply := range envMap {
		apply(getenv(key))
	}
}
