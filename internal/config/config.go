package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the lexidex service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Vectors VectorsConfig `yaml:"vectors"`
	Query   QueryConfig   `yaml:"query"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// VectorsConfig holds vector table source settings.
type VectorsConfig struct {
	// Path is the whitespace-delimited text table ("word c1 ... cD" lines).
	Path string `yaml:"path"`
	// SourceURL, if set, is a zip archive downloaded when Path is missing.
	SourceURL string `yaml:"source_url"`
	// ArchiveMember is the file extracted from the archive
	// (default: base name of Path).
	ArchiveMember string `yaml:"archive_member"`
	// SnapshotPath, if set, enables the memory-mapped binary snapshot
	// written after the first text parse.
	SnapshotPath string `yaml:"snapshot_path"`
	// CaseSensitive disables the lower-case fold applied to vocabulary and
	// query words.
	CaseSensitive bool `yaml:"case_sensitive"`
}

// QueryConfig holds result count limits.
type QueryConfig struct {
	DefaultTopN int `yaml:"default_top_n"`
	MaxTopN     int `yaml:"max_top_n"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Vectors.ArchiveMember == "" && c.Vectors.Path != "" {
		c.Vectors.ArchiveMember = filepath.Base(c.Vectors.Path)
	}
	if c.Query.DefaultTopN <= 0 {
		c.Query.DefaultTopN = 5
	}
	if c.Query.MaxTopN <= 0 {
		c.Query.MaxTopN = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Vectors.Path == "" {
		return fmt.Errorf("vectors.path is required")
	}
	if c.Query.DefaultTopN > c.Query.MaxTopN {
		return fmt.Errorf(
			"query.default_top_n (%d) must not exceed query.max_top_n (%d)",
			c.Query.DefaultTopN, c.Query.MaxTopN,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
