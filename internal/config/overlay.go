package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies TAILOR_* environment overrides on top of a loaded config.
func OverlayEnv(cfg *Config) {
	cfg.App.Port = envInt("TAILOR_PORT", cfg.App.Port)
	cfg.App.DataDir = envString("TAILOR_DATA_DIR", cfg.App.DataDir)
	cfg.Log.JSON = envBool("TAILOR_LOG_JSON", cfg.Log.JSON)
	cfg.Log.Debug = envBool("TAILOR_DEBUG", cfg.Log.Debug)
	cfg.Probe.Enabled = envBool("TAILOR_PROBE_ENABLED", cfg.Probe.Enabled)
	cfg.Templates.Default = envString("TAILOR_DEFAULT_TEMPLATE", cfg.Templates.Default)
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}
