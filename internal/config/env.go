package config

import "os"

// parseEnv overlays Config with values from the environment. Empty variables
// leave the current value alone.
//
// Recognized variables:
//
//	DOCSTAGE_API_URL      base URL of the remote document service
//	DOCSTAGE_STAGING_DIR  staging directory
//	DOCSTAGE_DB_PATH      ledger SQLite file
//	DOCSTAGE_USER         operator identifier
func parseEnv(cfg *Config) {
	if v := os.Getenv("DOCSTAGE_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("DOCSTAGE_STAGING_DIR"); v != "" {
		cfg.StagingDir = v
	}
	if v := os.Getenv("DOCSTAGE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DOCSTAGE_USER"); v != "" {
		cfg.OwnerUser = v
	}
}
