package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the repscout toolkit
type Config struct {
	// Search provider credentials and endpoints
	Search SearchConfig `yaml:"search" json:"search"`

	// Scraper pipeline settings
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Politeness rate limiting defaults for outbound scraping traffic
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Directory API server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// CompaniesFile points at the scrape target list (YAML)
	CompaniesFile string `yaml:"companies_file" json:"companies_file"`
}

// SearchConfig holds search and social strategy credentials
type SearchConfig struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	SessionCookie string `yaml:"session_cookie" json:"session_cookie"`
	UserAgent     string `yaml:"user_agent" json:"user_agent"`
	Endpoint      string `yaml:"endpoint" json:"endpoint"`
}

// ScraperConfig holds pipeline settings
type ScraperConfig struct {
	MaxReps             int           `yaml:"max_reps" json:"max_reps"`
	ConcurrentCompanies int           `yaml:"concurrent_companies" json:"concurrent_companies"`
	RequestTimeout      time.Duration `yaml:"request_timeout" json:"request_timeout"`
	UseBrowser          bool          `yaml:"use_browser" json:"use_browser"`
	BrowserHeadless     bool          `yaml:"browser_headless" json:"browser_headless"`
}

// RateLimitConfig holds politeness rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Format    string `yaml:"format" json:"format"` // json, csv or both
}

// ServerConfig holds directory API settings
type ServerConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Endpoint:  "https://html.duckduckgo.com/html/",
		},
		Scraper: ScraperConfig{
			MaxReps:             50,
			ConcurrentCompanies: 1,
			RequestTimeout:      30 * time.Second,
			UseBrowser:          false,
			BrowserHeadless:     true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 10,
			MaxRetries:        3,
			RetryDelay:        time.Second,
		},
		Output: OutputConfig{
			Directory: "./output",
			Format:    "both",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			DataDir: "./output",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("REPSCOUT_SEARCH_API_KEY"); apiKey != "" {
		c.Search.APIKey = apiKey
	}
	if cookie := os.Getenv("REPSCOUT_SESSION_COOKIE"); cookie != "" {
		c.Search.SessionCookie = cookie
	}
	if userAgent := os.Getenv("REPSCOUT_USER_AGENT"); userAgent != "" {
		c.Search.UserAgent = userAgent
	}
	if rpm := os.Getenv("REPSCOUT_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if outputDir := os.Getenv("REPSCOUT_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if addr := os.Getenv("REPSCOUT_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if logLevel := os.Getenv("REPSCOUT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if companiesFile := os.Getenv("REPSCOUT_COMPANIES_FILE"); companiesFile != "" {
		c.CompaniesFile = companiesFile
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".repscout.yaml",
		".repscout.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "repscout", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".repscout.yaml"),
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

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Scraper.MaxReps <= 0 {
		errs = append(errs, errors.New("max reps must be positive"))
	}
	if c.Scraper.ConcurrentCompanies <= 0 {
		errs = append(errs, errors.New("concurrent companies must be positive"))
	}
	if c.Scraper.ConcurrentCompanies > 5 {
		errs = append(errs, errors.New("concurrent companies should not exceed 5"))
	}
	if c.Scraper.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	switch strings.ToLower(c.Output.Format) {
	case "json", "csv", "both":
	default:
		errs = append(errs, errors.New("output format must be json, csv or both"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
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
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if maxReps, ok := flags["max-reps"].(int); ok && maxReps > 0 {
		c.Scraper.MaxReps = maxReps
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if companiesFile, ok := flags["companies-file"].(string); ok && companiesFile != "" {
		c.CompaniesFile = companiesFile
	}
	if addr, ok := flags["addr"].(string); ok && addr != "" {
		c.Server.Addr = addr
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".repscout.env"))

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
