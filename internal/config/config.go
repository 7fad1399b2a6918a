// Package config handles configuration for the docstage CLI,
// including defaults, config-file overlay, environment variables,
// and command-line flags.
package config

import "time"

// Config holds runtime settings for the docstage CLI.
//
// Fields:
//   - APIBaseURL: base URL of the remote document service.
//   - StagingDir: directory holding files accepted for upload. A relative
//     path is resolved against the working directory.
//   - DBPath: SQLite file for the status ledger.
//   - OwnerUser: free-text operator identifier attached to ledger rows.
//   - SupportedExtensions: lower-case extensions accepted for staging.
//   - UploadTimeout / ProcessTimeout / HealthTimeout: remote call bounds.
type Config struct {
	APIBaseURL          string
	StagingDir          string
	DBPath              string
	OwnerUser           string
	SupportedExtensions []string
	UploadTimeout       time.Duration
	ProcessTimeout      time.Duration
	HealthTimeout       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api/v1"
	c.StagingDir = "preupload"
	c.DBPath = "upload_logs.db"
	c.SupportedExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".md"}
	c.UploadTimeout = 5 * time.Minute
	c.ProcessTimeout = 10 * time.Minute
	c.HealthTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
