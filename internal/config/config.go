package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// Config is the root configuration for flex, stored in ~/.flex/config.toml.
type Config struct {
	// DataDir holds the ledgers and auth tokens. Empty means ~/.flex.
	DataDir string `toml:"data_dir"`
	// Backend selects the ledger store: "json", "buntdb" or "sqlite".
	Backend string `toml:"backend"`
	// DefaultProject is used when a command is given no project argument.
	DefaultProject string `toml:"default_project"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string        `toml:"log_level"`
	Outlook  OutlookConfig `toml:"outlook"`
	Server   ServerConfig  `toml:"server"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `toml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `toml:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `toml:"timezone"`
}

// ServerConfig configures `flex serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// RateLimit is the number of requests allowed per client IP and minute.
	// Zero disables the limit.
	RateLimit int `toml:"rate_limit"`
}

// envOverrides lists the settings that FLEX_* environment variables replace.
type envOverrides struct {
	DataDir        string `envconfig:"DATA_DIR"`
	Backend        string `envconfig:"BACKEND"`
	DefaultProject string `envconfig:"DEFAULT_PROJECT"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	ServerAddr     string `envconfig:"SERVER_ADDR"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID  = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	DefaultBackend   = "json"
	DefaultLogLevel  = "info"
	DefaultAddr      = "127.0.0.1:8787"
	DefaultRateLimit = 120
)

// Backends lists the accepted values of Config.Backend.
var Backends = []string{"json", "buntdb", "sqlite"}

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Backend:  DefaultBackend,
		LogLevel: DefaultLogLevel,
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			RateLimit: DefaultRateLimit,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# flex configuration – ~/.flex/config.toml
#
# All settings are optional; the defaults shown below work out of the box.
# Every top-level key can also be set with a FLEX_* environment variable,
# e.g. FLEX_DATA_DIR or FLEX_BACKEND.

# Directory holding project ledgers and auth tokens. Empty = ~/.flex
data_dir = ""

# Ledger store: "json" (one file per project), "buntdb" or "sqlite".
backend = "json"

# Project used when a command is run without a project argument.
default_project = ""

# debug, info, warn or error.
log_level = "info"

# ── Microsoft Graph / Outlook calendar import ─────────────────────────────
[outlook]
# Azure AD tenant ID. "common" works for personal accounts and most organisations.
tenant_id = "common"
# Azure application (client) ID used for the OAuth2 device code flow.
client_id = "04b07795-8542-4c4a-95af-30b2c573d5ab"
# IANA timezone for calendar event times, e.g. "Europe/Berlin". Empty = UTC.
timezone = ""

# ── flex serve ─────────────────────────────────────────────────────────────
[server]
addr = "127.0.0.1:8787"
# Requests per client IP and minute. 0 disables the limit.
rate_limit = 120
`

// DefaultPath returns $FLEX_CONFIG, or ~/.flex/config.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv("FLEX_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".flex", "config.toml"), nil
}

// Load reads the config file at path, creating it with annotated defaults on
// first run, then applies FLEX_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Default(), err
	}
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("flex", &env); err != nil {
		return fmt.Errorf("reading FLEX_* environment: %w", err)
	}
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if env.Backend != "" {
		cfg.Backend = env.Backend
	}
	if env.DefaultProject != "" {
		cfg.DefaultProject = env.DefaultProject
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.ServerAddr != "" {
		cfg.Server.Addr = env.ServerAddr
	}
	return nil
}

// fillDefaults replaces zero-value fields with built-in defaults so callers
// always get a usable Config even if the user only partially fills in the file.
func fillDefaults(cfg *Config) {
	d := Default()
	if cfg.Backend == "" {
		cfg.Backend = d.Backend
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = d.Outlook.TenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = d.Outlook.ClientID
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, Backends)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("negative rate_limit %d", c.Server.RateLimit)
	}
	return nil
}

// ResolveDataDir returns DataDir, defaulting to ~/.flex.
func (c Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".flex"), nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
