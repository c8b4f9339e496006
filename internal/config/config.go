package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// DefaultDatabasePath is the well-known location of the ban database.
const DefaultDatabasePath = "/var/lib/saslfail/bans.db"

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string `koanf:"db_path"`
	RequireRoot  bool   `koanf:"require_root"`
	DryRun       bool   `koanf:"dry_run"`

	// Run journal
	DataDir          string        `koanf:"data_dir"`
	JournalEnabled   bool          `koanf:"journal_enabled"`
	HistoryRetention time.Duration `koanf:"history_retention"`

	// Operational
	MetricsTextfile string `koanf:"metrics_textfile"`
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
	LogFile         string `koanf:"log_file"`
	NoColor         bool   `koanf:"no_color"`
}

// Overrides carries values that take precedence over every other source,
// typically command-line flags that were explicitly set.
type Overrides struct {
	// ConfigFile is a YAML file loaded between defaults and the environment.
	// When empty, CONFIG_FILE is consulted.
	ConfigFile string
	Values     map[string]interface{}
}

// sanitise removes a single layer of matching surrounding quotes from all string
// fields. This normalises values from Docker --env-file which does not strip
// shell quoting.
func (c *Config) sanitise() {
	c.DatabasePath = stripEnvQuotes(c.DatabasePath)
	c.DataDir = stripEnvQuotes(c.DataDir)
	c.MetricsTextfile = stripEnvQuotes(c.MetricsTextfile)
	c.LogLevel = stripEnvQuotes(c.LogLevel)
	c.LogFormat = stripEnvQuotes(c.LogFormat)
	c.LogFile = stripEnvQuotes(c.LogFile)
}

// defaults sets sensible default values.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"db_path":           DefaultDatabasePath,
		"require_root":      true,
		"dry_run":           false,
		"data_dir":          "/var/lib/bandb-cleanup",
		"journal_enabled":   true,
		"history_retention": "2160h",
		"metrics_textfile":  "",
		"log_level":         "info",
		"log_format":        "text",
		"log_file":          "",
		"no_color":          false,
	}
}

// stripEnvQuotes removes a single layer of matching surrounding single or double
// quotes from s. Only symmetric pairs are stripped: 'x' → x, "x" → x.
func stripEnvQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '\'' && s[len(s)-1] == '\'') ||
		(s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}

// Load reads configuration from defaults, an optional YAML file, environment
// variables and finally the given overrides, in that order of precedence.
func Load(ov Overrides) (*Config, error) {
	// "." as delimiter keeps env vars with "_" flat: DB_PATH → "db_path".
	k := koanf.New(".")

	if err := k.Load(&rawProvider{data: defaults()}, nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configFile := ov.ConfigFile
	if configFile == "" {
		configFile = stripEnvQuotes(os.Getenv("CONFIG_FILE"))
	}
	if configFile != "" {
		data, err := readYAML(configFile)
		if err != nil {
			return nil, err
		}
		if err := k.Load(&rawProvider{data: data}, nil); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(ov.Values) > 0 {
		if err := k.Load(&rawProvider{data: ov.Values}, nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.sanitise()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readYAML decodes a flat YAML mapping whose keys match the koanf tags.
func readYAML(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	data := make(map[string]interface{})
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return data, nil
}

// Validate checks required fields and semantic constraints.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if !filepath.IsAbs(c.DatabasePath) {
		return fmt.Errorf("DB_PATH must be an absolute path; got %q", c.DatabasePath)
	}

	if c.JournalEnabled && c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required when JOURNAL_ENABLED is true")
	}

	if c.HistoryRetention <= 0 {
		return fmt.Errorf("HISTORY_RETENTION must be > 0; got %s", c.HistoryRetention)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of trace,debug,info,warn,error,fatal,panic; got %q", c.LogLevel)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text; got %q", c.LogFormat)
	}

	if c.MetricsTextfile != "" && !strings.HasSuffix(c.MetricsTextfile, ".prom") {
		return fmt.Errorf("METRICS_TEXTFILE must end in .prom; got %q", c.MetricsTextfile)
	}

	return nil
}

// rawProvider implements koanf.Provider for a map[string]interface{}.
type rawProvider struct {
	data map[string]interface{}
}

// Read returns the config map directly (no Parser needed).
func (r *rawProvider) Read() (map[string]interface{}, error) {
	return r.data, nil
}

// ReadBytes is not used by rawProvider; koanf calls Read() when no Parser is given.
func (r *rawProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("rawProvider does not support ReadBytes")
}
