package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the tool reads
const EnvPrefix = "DYSCRAPER_"

// Config holds all configuration options for the Douyin harvester
type Config struct {
	// Douyin endpoint and browser identity
	Douyin DouyinConfig `yaml:"douyin" json:"douyin"`

	// Retry policy around each page request
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Pacing between successfully processed pages
	Pagination PaginationConfig `yaml:"pagination" json:"pagination"`

	// Optional request ceiling across all attempts
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Export artifacts
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics dump
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// DouyinConfig holds Douyin-specific configuration
type DouyinConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	AcceptLanguage string        `yaml:"accept_language" json:"accept_language"`
	Cookie         string        `yaml:"cookie" json:"cookie"`
	Account        string        `yaml:"account" json:"account"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RetryConfig holds the fixed-delay retry policy
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
}

// PaginationConfig holds inter-page pacing
type PaginationConfig struct {
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`
	MaxPages  int           `yaml:"max_pages" json:"max_pages"`
}

// RateLimitConfig holds the optional request ceiling
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int `yaml:"burst" json:"burst"`
}

// OutputConfig holds export artifact settings
type OutputConfig struct {
	Directory   string `yaml:"directory" json:"directory"`
	JSON        bool   `yaml:"json" json:"json"`
	Text        bool   `yaml:"txt" json:"txt"`
	YAML        bool   `yaml:"yaml" json:"yaml"`
	Timestamped bool   `yaml:"timestamped" json:"timestamped"`
	Prefix      string `yaml:"prefix" json:"prefix"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds metrics output configuration
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Douyin: DouyinConfig{
			BaseURL:        "https://www.douyin.com",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36 Edg/118.0.0.0",
			AcceptLanguage: "vi",
			PageSize:       20,
			RequestTimeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			Delay:       2 * time.Second,
		},
		Pagination: PaginationConfig{
			PageDelay: 1 * time.Second,
			MaxPages:  0, // 0 means no limit
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
			Burst:             1,
		},
		Output: OutputConfig{
			Directory:   "./downloads",
			JSON:        true,
			Text:        true,
			YAML:        false,
			Timestamped: true,
			Prefix:      "douyin-video",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.Douyin.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Douyin.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "COOKIE"); v != "" {
		c.Douyin.Cookie = v
	}
	if v := os.Getenv(EnvPrefix + "ACCOUNT"); v != "" {
		c.Douyin.Account = v
	}

	if v := os.Getenv(EnvPrefix + "MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_ATTEMPTS: %w", EnvPrefix, err))
		} else {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvPrefix + "RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRETRY_DELAY: %w", EnvPrefix, err))
		} else {
			c.Retry.Delay = d
		}
	}
	if v := os.Getenv(EnvPrefix + "PAGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_DELAY: %w", EnvPrefix, err))
		} else {
			c.Pagination.PageDelay = d
		}
	}
	if v := os.Getenv(EnvPrefix + "REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err))
		} else {
			c.RateLimit.RequestsPerMinute = n
		}
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"dyscraper.yaml",
		"dyscraper.yml",
		".dyscraper.yaml",
		".dyscraper.yml",
		filepath.Join(home, ".config", "dyscraper", "config.yaml"),
		filepath.Join(home, ".config", "dyscraper", "config.yml"),
		filepath.Join(home, ".dyscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Douyin.BaseURL == "" {
		errs = append(errs, errors.New("douyin base URL is required"))
	}
	if c.Douyin.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Douyin.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Douyin.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.Pagination.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Pagination.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("burst must be positive when a request ceiling is set"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if !c.Output.JSON && !c.Output.Text && !c.Output.YAML {
		errs = append(errs, errors.New("select at least one export format"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["cookie"].(string); ok && v != "" {
		c.Douyin.Cookie = v
	}
	if v, ok := flags["account"].(string); ok && v != "" {
		c.Douyin.Account = v
	}
	if v, ok := flags["user-agent"].(string); ok && v != "" {
		c.Douyin.UserAgent = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["json"].(bool); ok {
		c.Output.JSON = v
	}
	if v, ok := flags["txt"].(bool); ok {
		c.Output.Text = v
	}
	if v, ok := flags["yaml"].(bool); ok {
		c.Output.YAML = v
	}
	if v, ok := flags["timestamped"].(bool); ok {
		c.Output.Timestamped = v
	}
	if v, ok := flags["max-attempts"].(int); ok && v > 0 {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["retry-delay"].(time.Duration); ok {
		c.Retry.Delay = v
	}
	if v, ok := flags["page-delay"].(time.Duration); ok {
		c.Pagination.PageDelay = v
	}
	if v, ok := flags["max-pages"].(int); ok && v >= 0 {
		c.Pagination.MaxPages = v
	}
	if v, ok := flags["rate-limit"].(int); ok && v >= 0 {
		c.RateLimit.RequestsPerMinute = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["metrics-textfile"].(string); ok && v != "" {
		c.Metrics.Textfile = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".dyscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// MaskSecret masks all but the first 4 and last 4 characters of a secret
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
