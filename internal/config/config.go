package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is shared by the conformance runner and the twin backend.
type Config struct {
	// Runner.
	BaseURL   string        `yaml:"base_url"`
	APIPrefix string        `yaml:"api_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
	FailFast  bool          `yaml:"fail_fast"`
	ReportDir string        `yaml:"report_dir"`
	LogFormat string        `yaml:"log_format"`

	// Twin backend.
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		BaseURL:    "http://localhost:3000",
		APIPrefix:  "/api",
		Timeout:    30 * time.Second,
		FailFast:   true,
		LogFormat:  "text",
		ListenAddr: ":3000",
		DBPath:     "finance-twin.db",
	}
}

// Load builds a Config from defaults, the optional YAML file named by
// FINANCE_CONFIG, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("FINANCE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// NEXT_PUBLIC_BASE_URL is what the front-end deployment exports.
	cfg.BaseURL = getEnv("FINANCE_BASE_URL", getEnv("NEXT_PUBLIC_BASE_URL", cfg.BaseURL))
	cfg.APIPrefix = getEnv("FINANCE_API_PREFIX", cfg.APIPrefix)
	cfg.ReportDir = getEnv("FINANCE_REPORT_DIR", cfg.ReportDir)
	cfg.LogFormat = getEnv("FINANCE_LOG_FORMAT", cfg.LogFormat)
	cfg.ListenAddr = getEnv("FINANCE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DBPath = getEnv("FINANCE_DB_PATH", cfg.DBPath)

	var err error
	if cfg.Timeout, err = getEnvDuration("FINANCE_TIMEOUT", cfg.Timeout); err != nil {
		return nil, err
	}
	if cfg.FailFast, err = getEnvBool("FINANCE_FAIL_FAST", cfg.FailFast); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports the first setting that cannot be used to run checks.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base url %q: missing host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// APIURL joins the base URL and the API prefix, e.g. "http://host/api".
func (c *Config) APIURL() string {
	prefix := strings.Trim(c.APIPrefix, "/")
	base := strings.TrimRight(c.BaseURL, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
