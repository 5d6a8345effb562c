package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// PrivateFilePermissions is used for files holding tokens and secrets
	PrivateFilePermissions = 0600
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755

	// EnvPrefix prefixes environment variable overrides (DOCPORTAL_LOG_LEVEL, ...)
	EnvPrefix = "DOCPORTAL"
)

// Store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var (
	// ConfigDir is the global configuration directory (~/.docportal)
	ConfigDir string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// DatabasePath is the SQLite database for history and the sqlite store
	DatabasePath string

	// StatePath is the JSON file backing the file store
	StatePath string

	// LogFile receives TUI logs
	LogFile string
)

// Config holds the user-tunable settings
type Config struct {
	GraphQLEndpoint string        `mapstructure:"graphql_endpoint"`
	AuthEndpoint    string        `mapstructure:"auth_endpoint"`
	TokenEndpoint   string        `mapstructure:"token_endpoint"`
	IPEchoURL       string        `mapstructure:"ip_echo_url"`
	Store           string        `mapstructure:"store"`
	DocsFile        string        `mapstructure:"docs_file"`
	DocsPath        string        `mapstructure:"docs_path"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RetryPause      time.Duration `mapstructure:"retry_pause"`
	HistoryEnabled  bool          `mapstructure:"history_enabled"`
	HighlightStyle  string        `mapstructure:"highlight_style"`
}

// Initialize sets up the configuration directory and a default config file.
// It creates ~/.docportal/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".docportal"))
}

// InitializeAt is Initialize rooted at an explicit directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "docportal.db")
	StatePath = filepath.Join(ConfigDir, "state.json")
	LogFile = filepath.Join(ConfigDir, "docportal.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(defaultConfigYAML), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if _, err := os.Stat(StatePath); os.IsNotExist(err) {
		if err := os.WriteFile(StatePath, []byte("{}"), PrivateFilePermissions); err != nil {
			return fmt.Errorf("failed to create state file: %w", err)
		}
	}

	return nil
}

const defaultConfigYAML = `# docportal configuration
# Every key can be overridden with a DOCPORTAL_<KEY> environment variable.
graphql_endpoint: ""
auth_endpoint: ""
token_endpoint: ""
ip_echo_url: https://api.ipify.org?format=json
store: file
docs_file: ""
docs_path: ""
log_level: warn
log_format: text
request_timeout: 30s
retry_pause: 0s
history_enabled: true
highlight_style: monokai
`

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		IPEchoURL:      "https://api.ipify.org?format=json",
		Store:          StoreFile,
		LogLevel:       "warn",
		LogFormat:      "text",
		RequestTimeout: 30 * time.Second,
		HistoryEnabled: true,
		HighlightStyle: "monokai",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("graphql_endpoint", d.GraphQLEndpoint)
	v.SetDefault("auth_endpoint", d.AuthEndpoint)
	v.SetDefault("token_endpoint", d.TokenEndpoint)
	v.SetDefault("ip_echo_url", d.IPEchoURL)
	v.SetDefault("store", d.Store)
	v.SetDefault("docs_file", d.DocsFile)
	v.SetDefault("docs_path", d.DocsPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("retry_pause", d.RetryPause)
	v.SetDefault("history_enabled", d.HistoryEnabled)
	v.SetDefault("highlight_style", d.HighlightStyle)
}

// Load reads the configuration. A .env file in the working directory is
// loaded first so its values can feed DOCPORTAL_* overrides. An empty
// configPath falls back to ConfigFile; a missing file yields defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = ConfigFile
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.AuthEndpoint == "" {
		cfg.AuthEndpoint = cfg.GraphQLEndpoint
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("invalid store %q: must be one of %s, %s, %s", c.Store, StoreFile, StoreSQLite, StoreMemory)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.RetryPause < 0 {
		return fmt.Errorf("retry_pause must not be negative")
	}
	return nil
}

// RequireGraphQL returns an error when no backend endpoint is configured
func (c *Config) RequireGraphQL() error {
	if c.GraphQLEndpoint == "" {
		return fmt.Errorf("graphql_endpoint is not configured (set it in %s or DOCPORTAL_GRAPHQL_ENDPOINT)", ConfigFile)
	}
	return nil
}
