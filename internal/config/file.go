package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dkarademir/docstage/internal/flagx"
)

// fileConfig is a DTO used exclusively for config-file unmarshalling.
// Durations are plain strings ("5m", "30s") so the same shape works for both
// JSON and YAML; parsed values are copied into the runtime Config.
type fileConfig struct {
	APIBaseURL          string   `json:"api_base_url" yaml:"api_base_url"`
	StagingDir          string   `json:"staging_dir" yaml:"staging_dir"`
	DBPath              string   `json:"db_path" yaml:"db_path"`
	OwnerUser           string   `json:"user" yaml:"user"`
	SupportedExtensions []string `json:"supported_extensions" yaml:"supported_extensions"`
	UploadTimeout       string   `json:"upload_timeout" yaml:"upload_timeout"`
	ProcessTimeout      string   `json:"process_timeout" yaml:"process_timeout"`
	HealthTimeout       string   `json:"health_timeout" yaml:"health_timeout"`
}

// parseFile overlays Config with values loaded from a config file.
//
// The file path comes from the -c/-config flags (flagx.ConfigFileFlags); if
// none is given, nothing is loaded. Files ending in .yaml/.yml are parsed as
// YAML, everything else as JSON. Empty fields leave the current value alone.
//
// Intended usage is: defaults -> parseFile -> parseEnv -> parseFlags, where
// later stages override earlier ones.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	applyFileConfig(cfg, &fc)
}

func applyFileConfig(cfg *Config, fc *fileConfig) {
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.StagingDir != "" {
		cfg.StagingDir = fc.StagingDir
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.OwnerUser != "" {
		cfg.OwnerUser = fc.OwnerUser
	}
	if len(fc.SupportedExtensions) > 0 {
		cfg.SupportedExtensions = normalizeExtensions(fc.SupportedExtensions)
	}
	setDuration(&cfg.UploadTimeout, fc.UploadTimeout)
	setDuration(&cfg.ProcessTimeout, fc.ProcessTimeout)
	setDuration(&cfg.HealthTimeout, fc.HealthTimeout)
}

func setDuration(dst *time.Duration, s string) {
	if s == "" {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
