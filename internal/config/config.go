package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/logger"
)

// DefaultTarget is the scraper service source, relative to the
// subscription-tracker checkout the tool is run from.
const DefaultTarget = "subscription-tracker-backend/src/main/java/com/subscriptiontracker/service/PriceScraperService.java"

// Config holds scraperfix configuration.
// Loaded from ~/.scraperfix/config.json with environment variable overrides.
type Config struct {
	// Target is the file patched when no path argument is given.
	// Env override: SCRAPERFIX_TARGET
	Target string `json:"target"`

	// RulesFile points at a YAML rule list that replaces the built-in fix.
	// Env override: SCRAPERFIX_RULES
	RulesFile string `json:"rules_file"`

	// HistoryPath is the SQLite run journal. Empty disables it.
	// Env override: SCRAPERFIX_HISTORY
	HistoryPath string `json:"history_path"`

	// LogDir enables a rotating log file in that directory.
	// Env override: SCRAPERFIX_LOG_DIR
	LogDir string `json:"log_dir"`

	// Debug enables debug-level logging.
	// Env override: SCRAPERFIX_DEBUG=1
	Debug bool `json:"debug"`

	// JSONLogs switches log output to JSON.
	// Env override: SCRAPERFIX_JSON_LOGS=1
	JSONLogs bool `json:"json_logs"`
}

// Load reads configuration from the config file, then applies
// environment variable overrides. Config file locations checked in order:
//  1. SCRAPERFIX_CONFIG env var (if set)
//  2. ~/.scraperfix/config.json
//
// Missing file is not an error.
func Load() Config {
	configPath := os.Getenv("SCRAPERFIX_CONFIG")
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("Failed to get home directory for config", "error", err)
			cfg := Config{}
			applyEnvOverrides(&cfg)
			applyDefaults(&cfg)
			return cfg
		}
		configPath = filepath.Join(home, ".scraperfix", "config.json")
	}
	return LoadFrom(configPath)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(configPath string) Config {
	var cfg Config

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read config file", "path", configPath, "error", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Warn("Failed to parse config file", "path", configPath, "error", err)
		cfg = Config{}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the config.
// Env vars take precedence over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCRAPERFIX_TARGET"); v != "" {
		cfg.Target = v
	}
	if v := os.Getenv("SCRAPERFIX_RULES"); v != "" {
		cfg.RulesFile = v
	}
	if v := os.Getenv("SCRAPERFIX_HISTORY"); v != "" {
		cfg.HistoryPath = v
	}
	if v := os.Getenv("SCRAPERFIX_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if os.Getenv("SCRAPERFIX_DEBUG") == "1" {
		cfg.Debug = true
	}
	if os.Getenv("SCRAPERFIX_JSON_LOGS") == "1" {
		cfg.JSONLogs = true
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}
}

// TargetPath returns Target as an absolute path.
func (c *Config) TargetPath() string {
	if filepath.IsAbs(c.Target) {
		return c.Target
	}
	abs, err := filepath.Abs(c.Target)
	if err != nil {
		return c.Target
	}
	return abs
}
