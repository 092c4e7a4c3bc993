package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
	"github.com/dmitrijs2005/taskboard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-able fields let a partial file override only what it mentions.
type JsonConfig struct {
	ServerURL       string          `json:"server_url"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	AccessTokenTTL  *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL *timex.Duration `json:"refresh_token_ttl"`
	DatabasePath    *string         `json:"database_path"`
	StoreSecret     string          `json:"store_secret"`
	LogLevel        string          `json:"log_level"`
	LogFormat       string          `json:"log_format"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/--config. Without the flag nothing happens. Read or unmarshal errors
// panic; LoadConfig is only called from main.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AccessTokenTTL != nil {
		cfg.AccessTokenTTL = jc.AccessTokenTTL.Duration
	}
	if jc.RefreshTokenTTL != nil {
		cfg.RefreshTokenTTL = jc.RefreshTokenTTL.Duration
	}
	// an explicit "" selects in-memory storage
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.StoreSecret != "" {
		cfg.StoreSecret = jc.StoreSecret
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
}
