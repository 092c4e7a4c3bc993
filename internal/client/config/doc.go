// Package config loads runtime configuration for the taskboard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or --config.
//  3. A .env file in the working directory, then the process environment.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a, --address string    base URL of the task-board API
//	-t, --timeout int       per-request timeout (seconds)
//	-d, --database string   SQLite file for local session state
//	-l, --log-level string  debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "15m" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://board.example.com/api",
//	  "request_timeout": "10s",
//	  "access_token_ttl": "15m",
//	  "refresh_token_ttl": "24h",
//	  "database_path": "taskboard.db",
//	  "store_secret": "",
//	  "log_level": "info",
//	  "log_format": "console"
//	}
//
// # Environment
//
//	TASKBOARD_SERVER_URL, TASKBOARD_DATABASE_PATH, TASKBOARD_STORE_SECRET,
//	TASKBOARD_LOG_LEVEL, TASKBOARD_LOG_FORMAT
package config
