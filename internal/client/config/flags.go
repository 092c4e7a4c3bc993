package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
	"github.com/spf13/pflag"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a, --address    base URL of the API
//	-t, --timeout    request timeout in seconds
//	-d, --database   SQLite path
//	-l, --log-level  log level
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// loaders (-c) do not cause parse errors. Invalid values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "--address",
		"-t", "--timeout",
		"-d", "--database",
		"-l", "--log-level",
	})

	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	fs.StringVarP(&cfg.ServerURL, "address", "a", cfg.ServerURL, "base URL of the task-board API")
	timeout := fs.IntP("timeout", "t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVarP(&cfg.DatabasePath, "database", "d", cfg.DatabasePath, "SQLite file for local session state")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
