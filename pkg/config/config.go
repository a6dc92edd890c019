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

// Config holds all configuration options for the login session manager
type Config struct {
	// Credential pool source
	Accounts AccountsConfig `yaml:"accounts" json:"accounts"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Login flow and state detection settings
	Login LoginConfig `yaml:"login" json:"login"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Session persistence settings
	Sessions SessionsConfig `yaml:"sessions" json:"sessions"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AccountsConfig holds the raw credential pool configuration
type AccountsConfig struct {
	// Credentials is a comma-delimited list of username:password pairs,
	// in priority order
	Credentials string `yaml:"credentials" json:"credentials"`
}

// RateLimitConfig holds the minimum-spacing configuration
type RateLimitConfig struct {
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`
	LoginDelay   time.Duration `yaml:"login_delay" json:"login_delay"`
}

// LoginConfig holds login flow and page-state classification settings
type LoginConfig struct {
	HomeURL  string `yaml:"home_url" json:"home_url"`
	LoginURL string `yaml:"login_url" json:"login_url"`
	Domain   string `yaml:"domain" json:"domain"`

	// ChallengePatterns are URL substrings that indicate a security
	// challenge, checkpoint or account suspension. The list is a tunable
	// table, not an exhaustive one.
	ChallengePatterns []string `yaml:"challenge_patterns" json:"challenge_patterns"`

	// SuccessMarkers are selectors that only appear on post-login pages
	SuccessMarkers []string `yaml:"success_markers" json:"success_markers"`

	// PopupDismissSelectors are clicked best-effort after login to close
	// "save login info" and notification prompts
	PopupDismissSelectors []string `yaml:"popup_dismiss_selectors" json:"popup_dismiss_selectors"`

	UsernameField string        `yaml:"username_field" json:"username_field"`
	PasswordField string        `yaml:"password_field" json:"password_field"`
	SubmitButton  string        `yaml:"submit_button" json:"submit_button"`
	PollAttempts  int           `yaml:"poll_attempts" json:"poll_attempts"`
	PollBaseDelay time.Duration `yaml:"poll_base_delay" json:"poll_base_delay"`
	SubmitSettle  time.Duration `yaml:"submit_settle" json:"submit_settle"`
}

// BrowserConfig holds browser automation settings
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	WindowWidth       int           `yaml:"window_width" json:"window_width"`
	WindowHeight      int           `yaml:"window_height" json:"window_height"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ElementTimeout    time.Duration `yaml:"element_timeout" json:"element_timeout"`
}

// SessionsConfig holds session persistence settings
type SessionsConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Accounts: AccountsConfig{},
		RateLimit: RateLimitConfig{
			RequestDelay: 2 * time.Second,
			LoginDelay:   5 * time.Second,
		},
		Login: LoginConfig{
			HomeURL:  "https://www.instagram.com/",
			LoginURL: "https://www.instagram.com/accounts/login/",
			Domain:   "instagram.com",
			ChallengePatterns: []string{
				"challenge",
				"checkpoint",
				"two_factor",
				"suspend",
				"confirm",
				"auth_platform",
			},
			SuccessMarkers: []string{
				`svg[aria-label="Home"]`,
				`a[href="/"]`,
				`a[href*="/accounts/activity"]`,
				`svg[aria-label="Search"]`,
			},
			PopupDismissSelectors: []string{
				`//button[contains(text(), 'Not Now')]`,
				`//div[@role='button' and contains(text(), 'Not Now')]`,
			},
			UsernameField: `input[name="username"]`,
			PasswordField: `input[name="password"]`,
			SubmitButton:  `button[type="submit"]`,
			PollAttempts:  3,
			PollBaseDelay: 3 * time.Second,
			SubmitSettle:  5 * time.Second,
		},
		Browser: BrowserConfig{
			Headless: true,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:       1920,
			WindowHeight:      1080,
			NavigationTimeout: 30 * time.Second,
			ElementTimeout:    10 * time.Second,
		},
		Sessions: SessionsConfig{
			Directory: "configuration",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. A .env file
// in the working directory is honored when present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if accounts := os.Getenv("INSTAGRAM_ACCOUNTS"); accounts != "" {
		c.Accounts.Credentials = accounts
	}

	if delay := os.Getenv("REQUEST_DELAY"); delay != "" {
		if d, err := parseSeconds(delay); err == nil && d > 0 {
			c.RateLimit.RequestDelay = d
		}
	}
	if delay := os.Getenv("LOGIN_DELAY"); delay != "" {
		if d, err := parseSeconds(delay); err == nil && d > 0 {
			c.RateLimit.LoginDelay = d
		}
	}

	if headless := os.Getenv("IGSESSION_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if sessionDir := os.Getenv("IGSESSION_SESSION_DIR"); sessionDir != "" {
		c.Sessions.Directory = sessionDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// parseSeconds parses a duration given as a number of seconds, matching the
// REQUEST_DELAY/LOGIN_DELAY environment format
func parseSeconds(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
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
		".igsession.yaml",
		".igsession.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igsession", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igsession", "config.yml"),
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

	if c.RateLimit.RequestDelay <= 0 {
		errs = append(errs, errors.New("request delay must be positive"))
	}
	if c.RateLimit.LoginDelay <= 0 {
		errs = append(errs, errors.New("login delay must be positive"))
	}
	if c.RateLimit.LoginDelay < c.RateLimit.RequestDelay {
		errs = append(errs, errors.New("login delay must not be shorter than request delay"))
	}

	if c.Login.HomeURL == "" {
		errs = append(errs, errors.New("home URL is required"))
	}
	if c.Login.LoginURL == "" {
		errs = append(errs, errors.New("login URL is required"))
	}
	if c.Login.Domain == "" {
		errs = append(errs, errors.New("service domain is required"))
	}
	if c.Login.PollAttempts <= 0 {
		errs = append(errs, errors.New("poll attempts must be positive"))
	}
	if c.Login.PollBaseDelay <= 0 {
		errs = append(errs, errors.New("poll base delay must be positive"))
	}

	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.ElementTimeout <= 0 {
		errs = append(errs, errors.New("element timeout must be positive"))
	}

	if c.Sessions.Directory == "" {
		errs = append(errs, errors.New("session directory is required"))
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

// Load creates a config by merging defaults, an optional YAML file and
// environment variables, in that order of precedence
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
