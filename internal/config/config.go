package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvHome     = "YADA_HOME"
	EnvStrategy = "YADA_STRATEGY"
	EnvLogLevel = "YADA_LOG_LEVEL"
	EnvWebPort  = "YADA_WEB_PORT"
)

// Config holds application configuration.
type Config struct {
	// DefaultStrategy is the calorie target strategy for newly registered users
	DefaultStrategy string `json:"default_strategy,omitempty"`

	// SeedCatalog adds the built-in sample foods to an empty catalog on
	// first start. nil means true.
	SeedCatalog *bool `json:"seed_catalog,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogMaxSizeMB is the size at which logs/yada.log is rotated.
	LogMaxSizeMB int `json:"log_max_size_mb,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes disables every MCP tool of a group (e.g. "food", "log").
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// WebBind and WebPort are the dashboard listen address.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	seed := true
	return &Config{
		DefaultStrategy: "harris-benedict",
		SeedCatalog:     &seed,
		LogLevel:        "info",
		LogMaxSizeMB:    10,
		WebBind:         "127.0.0.1",
		WebPort:         8765,
	}
}

// ShouldSeed reports whether the sample catalog should be seeded.
func (c *Config) ShouldSeed() bool {
	return c.SeedCatalog == nil || *c.SeedCatalog
}

// BaseDir returns $YADA_HOME, or ~/.yada.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".yada"), nil
}

// Load loads configuration from baseDir/config.json, then applies
// baseDir/.env and the YADA_* environment variables on top.
// Returns default config if neither exists.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, filepath.Join(baseDir, ".env")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads envFile (if present) into the process environment without
// overriding variables that are already set, then copies YADA_* values
// into cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvStrategy)); v != "" {
		cfg.DefaultStrategy = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWebPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %q", EnvWebPort, v)
		}
		cfg.WebPort = port
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		DefaultStrategy: firstNonEmpty(overlay.DefaultStrategy, base.DefaultStrategy),
		LogLevel:        firstNonEmpty(overlay.LogLevel, base.LogLevel),
		WebBind:         firstNonEmpty(overlay.WebBind, base.WebBind),
		LogMaxSizeMB:    firstNonZero(overlay.LogMaxSizeMB, base.LogMaxSizeMB),
		DBMaxOpenConns:  firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:  firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		WebPort:         firstNonZero(overlay.WebPort, base.WebPort),
	}

	// Pointer booleans: overlay wins if set
	result.SeedCatalog = base.SeedCatalog
	if overlay.SeedCatalog != nil {
		result.SeedCatalog = overlay.SeedCatalog
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
