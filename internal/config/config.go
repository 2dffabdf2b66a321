// Package config loads planka-mcp configuration.
//
// Configuration comes from an optional YAML file named by the --config flag
// or the PLANKA_MCP_CONFIG environment variable. PLANKA_* environment
// variables are applied on top of the file, so an MCP host can configure
// the server through its env block alone.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "PLANKA_MCP_CONFIG"

// Config is the complete planka-mcp configuration.
type Config struct {
	// Planka configures the REST gateway.
	Planka PlankaConfig `yaml:"planka"`

	// CardIndexPath is a SQLite file remembering which card each task list
	// created here belongs to. Empty keeps the index in memory.
	CardIndexPath string `yaml:"card_index_path"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// PlankaConfig configures the connection to Planka.
type PlankaConfig struct {
	// BaseURL is the Planka root, e.g. https://planka.example.com.
	BaseURL string `yaml:"base_url"`

	// Token is a pre-issued access token. Takes precedence over Email/Password.
	Token string `yaml:"token"`

	// Email and Password are the agent account credentials.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// Timeout bounds one HTTP round trip. Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit caps requests per second. 0 disables pacing.
	RateLimit float64 `yaml:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a logrus level name. Default: info
	Level string `yaml:"level"`

	// File, when set, receives a rotated copy of the log.
	File string `yaml:"file"`

	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`

	// JSON switches the formatter from text to JSON.
	JSON bool `yaml:"json"`
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() *Config {
	return &Config{
		Planka: PlankaConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration from path (or $PLANKA_MCP_CONFIG when path
// is empty) and the environment. A missing path is not an error; a path
// that cannot be read or parsed is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv overrides file values with any PLANKA_* variables that are set.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PLANKA_BASE_URL", &c.Planka.BaseURL)
	str("PLANKA_TOKEN", &c.Planka.Token)
	str("PLANKA_AGENT_EMAIL", &c.Planka.Email)
	str("PLANKA_AGENT_PASSWORD", &c.Planka.Password)
	str("PLANKA_CARD_INDEX_PATH", &c.CardIndexPath)
	str("PLANKA_LOG_LEVEL", &c.Log.Level)
	str("PLANKA_LOG_FILE", &c.Log.File)

	if v, ok := lookup("PLANKA_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PLANKA_TIMEOUT: %w", err))
		} else {
			c.Planka.Timeout = d
		}
	}
	if v, ok := lookup("PLANKA_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("PLANKA_RATE_LIMIT: %w", err))
		} else {
			c.Planka.RateLimit = f
		}
	}
	if v, ok := lookup("PLANKA_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PLANKA_LOG_JSON: %w", err))
		} else {
			c.Log.JSON = b
		}
	}

	return errors.Join(errs...)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	base := strings.TrimSpace(c.Planka.BaseURL)
	switch {
	case base == "":
		errs = append(errs, errors.New("planka.base_url is required (or set PLANKA_BASE_URL)"))
	case !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://"):
		errs = append(errs, fmt.Errorf("planka.base_url must start with http:// or https://, got %q", base))
	}

	if c.Planka.Token == "" && (c.Planka.Email == "" || c.Planka.Password == "") {
		errs = append(errs, errors.New("either planka.token or both planka.email and planka.password are required"))
	}
	if c.Planka.Timeout < 0 {
		errs = append(errs, errors.New("planka.timeout must not be negative"))
	}
	if c.Planka.RateLimit < 0 {
		errs = append(errs, errors.New("planka.rate_limit must not be negative"))
	}

	return errors.Join(errs...)
}
