// Package config loads settings from .env, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the config directory name.
	AppName = "authtodo"

	// SessionFile holds the session written by `auth login`.
	SessionFile = "session.json"

	// LogFile is the default log file name inside the config dir.
	LogFile = "authtodo.log"

	// DefaultAPIURL is used when AUTHTODO_API_URL is unset.
	DefaultAPIURL = "http://localhost:3000/api/todos"
)

// Auth provider names accepted in AUTHTODO_AUTH_PROVIDER.
const (
	ProviderFile     = "file"
	ProviderSupabase = "supabase"
)

// Config is read once at startup and treated as immutable afterwards.
type Config struct {
	// Dir is the configuration directory (session, storage, log).
	Dir string

	// APIURL is the base URL of the todo collection resource.
	APIURL string

	// Token overrides the session access token when set (AUTHTODO_TOKEN).
	Token string

	AuthProvider string
	SupabaseURL  string
	SupabaseKey  string

	HTTPTimeout time.Duration

	LogFile  string
	LogLevel string

	Theme string
}

// Load reads envFiles (".env" when none given) and then the environment.
// Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Dir:          getEnvString("AUTHTODO_CONFIG_DIR", DefaultConfigDir()),
		APIURL:       strings.TrimRight(getEnvString("AUTHTODO_API_URL", DefaultAPIURL), "/"),
		Token:        strings.TrimSpace(os.Getenv("AUTHTODO_TOKEN")),
		AuthProvider: strings.ToLower(getEnvString("AUTHTODO_AUTH_PROVIDER", ProviderFile)),
		SupabaseURL:  os.Getenv("SUPABASE_URL"),
		SupabaseKey:  os.Getenv("SUPABASE_KEY"),
		HTTPTimeout:  getEnvDuration("AUTHTODO_HTTP_TIMEOUT", 10*time.Second),
		LogLevel:     getEnvString("AUTHTODO_LOG_LEVEL", "info"),
		Theme:        getEnvString("AUTHTODO_THEME", "classic"),
	}
	cfg.LogFile = getEnvString("AUTHTODO_LOG_FILE", filepath.Join(cfg.Dir, LogFile))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot work.
func (c *Config) Validate() error {
	switch c.AuthProvider {
	case ProviderFile:
	case ProviderSupabase:
		var missing []string
		if c.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.SupabaseKey == "" {
			missing = append(missing, "SUPABASE_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("required environment variables are not set: %v", missing)
		}
	default:
		return fmt.Errorf("unknown auth provider: %q", c.AuthProvider)
	}
	if c.APIURL == "" {
		return fmt.Errorf("empty api url")
	}
	return nil
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path of the stored session.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0o700)
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
