package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the taskboard CLI.
//
// Fields:
//   - ServerURL: base URL of the task-board API (auth endpoints hang off it).
//   - RequestTimeout: fixed timeout applied to every dispatched call.
//   - AccessTokenTTL / RefreshTokenTTL: local expiries of stored credentials.
//   - DatabasePath: SQLite file for credentials and the last-known profile;
//     empty keeps everything in memory.
//   - StoreSecret: when set, stored credentials are sealed with a key
//     derived from it.
//   - LogLevel / LogFormat: see logging.New.
type Config struct {
	ServerURL       string
	RequestTimeout  time.Duration
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	DatabasePath    string
	StoreSecret     string
	LogLevel        string
	LogFormat       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 24 * time.Hour
	c.DatabasePath = "taskboard.db"
	c.LogLevel = "info"
	c.LogFormat = "console"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment (.env file and process env) and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseDotEnv(cfg, os.Getwd); err != nil {
		panic(err)
	}
	parseEnv(cfg, os.Getenv)
	parseFlags(cfg)
	return cfg
}
