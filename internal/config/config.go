// Package config provides configuration management for the filebox client.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/filebox/filebox-client/internal/constants"
	"github.com/filebox/filebox-client/internal/version"
)

// Environment variables consulted by MergeWithEnv.
const (
	EnvBaseURL       = "FILEBOX_BASE_URL"
	EnvProxyMode     = "FILEBOX_PROXY_MODE"
	EnvProxyPassword = "FILEBOX_PROXY_PASSWORD"
	EnvLogFile       = "FILEBOX_LOG_FILE"
)

// Proxy modes understood by internal/http.
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeBasic  = "basic"
	ProxyModeNTLM   = "ntlm"
)

// Config holds everything the client needs to reach the file server.
//
// INI format:
//
//	[server]
//	base_url = http://localhost:8080
//
//	[client]
//	max_retries = 0
//	retry_wait_min = 1s
//	retry_wait_max = 30s
//	request_timeout = 0s
//	user_agent = filebox-client/v1.0.0
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	no_proxy =
//	warmup = false
//
//	[logging]
//	file =
//	level = info
type Config struct {
	// Server
	BaseURL string

	// Client behaviour
	MaxRetries     int           // 0 = exactly one attempt per operation
	RetryWaitMin   time.Duration // only used when MaxRetries > 0
	RetryWaitMax   time.Duration
	RequestTimeout time.Duration // 0 = no client-side timeout
	UserAgent      string

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // never read from or written to the config file
	NoProxy       string // comma-separated hosts/CIDRs that bypass the proxy
	ProxyWarmup   bool

	// Logging
	LogFile  string
	LogLevel string
}

// Validation errors
var (
	ErrMissingBaseURL   = errors.New("server base_url is required")
	ErrInvalidBaseURL   = errors.New("server base_url must be an absolute http(s) URL")
	ErrInvalidRetries   = fmt.Errorf("max_retries must be between 0 and %d", constants.MaxMaxRetries)
	ErrInvalidProxyMode = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost = errors.New("proxy host is required for basic and ntlm proxy modes")
	ErrInvalidLogLevel  = errors.New("log level must be one of debug, info, warn, error")
)

// DefaultUserAgent is "filebox-client/<version>".
func DefaultUserAgent() string {
	return constants.DefaultUserAgent + "/" + version.Version
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      constants.DefaultBaseURL,
		MaxRetries:   constants.DefaultMaxRetries,
		RetryWaitMin: constants.DefaultRetryWaitMin,
		RetryWaitMax: constants.DefaultRetryWaitMax,
		UserAgent:    DefaultUserAgent(),
		ProxyMode:    ProxyModeNone,
		ProxyPort:    constants.DefaultProxyPort,
		LogLevel:     "info",
	}
}

// LoadConfig loads configuration from an INI file.
// A missing file is not an error: defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	server := file.Section("server")
	if key := server.Key("base_url"); key.String() != "" {
		cfg.BaseURL = strings.TrimSpace(key.String())
	}

	client := file.Section("client")
	if client.HasKey("max_retries") {
		v, err := client.Key("max_retries").Int()
		if err != nil {
			return nil, fmt.Errorf("client.max_retries: %w", err)
		}
		cfg.MaxRetries = v
	}
	for name, target := range map[string]*time.Duration{
		"retry_wait_min":  &cfg.RetryWaitMin,
		"retry_wait_max":  &cfg.RetryWaitMax,
		"request_timeout": &cfg.RequestTimeout,
	} {
		if !client.HasKey(name) {
			continue
		}
		d, err := client.Key(name).Duration()
		if err != nil {
			return nil, fmt.Errorf("client.%s: %w", name, err)
		}
		*target = d
	}
	if v := client.Key("user_agent").String(); v != "" {
		cfg.UserAgent = v
	}

	proxy := file.Section("proxy")
	if v := proxy.Key("mode").String(); v != "" {
		cfg.ProxyMode = strings.ToLower(v)
	}
	cfg.ProxyHost = proxy.Key("host").String()
	if proxy.HasKey("port") {
		v, err := proxy.Key("port").Int()
		if err != nil {
			return nil, fmt.Errorf("proxy.port: %w", err)
		}
		cfg.ProxyPort = v
	}
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)
	if proxy.Key("password").String() != "" {
		// SECURITY: proxy passwords come from the environment or a prompt only
		log.Printf("[WARN] proxy.password in config file is ignored - use %s or the interactive prompt", EnvProxyPassword)
	}

	logging := file.Section("logging")
	cfg.LogFile = logging.Key("file").String()
	if v := logging.Key("level").String(); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to an INI file, creating the parent
// directory. The proxy password is never written.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file := ini.Empty()

	server := file.Section("server")
	server.Key("base_url").SetValue(cfg.BaseURL)

	client := file.Section("client")
	client.Key("max_retries").SetValue(strconv.Itoa(cfg.MaxRetries))
	client.Key("retry_wait_min").SetValue(cfg.RetryWaitMin.String())
	client.Key("retry_wait_max").SetValue(cfg.RetryWaitMax.String())
	client.Key("request_timeout").SetValue(cfg.RequestTimeout.String())
	client.Key("user_agent").SetValue(cfg.UserAgent)

	proxy := file.Section("proxy")
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(strconv.FormatBool(cfg.ProxyWarmup))

	logging := file.Section("logging")
	logging.Key("file").SetValue(cfg.LogFile)
	logging.Key("level").SetValue(cfg.LogLevel)

	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(path, 0600)
}

// MergeWithEnv applies FILEBOX_* environment variables on top of the file values.
func (c *Config) MergeWithEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvProxyMode); v != "" {
		c.ProxyMode = strings.ToLower(v)
	}
	if v := os.Getenv(EnvProxyPassword); v != "" {
		c.ProxyPassword = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
}

// MergeWithFlags applies non-zero command-line values.
// Priority: flags > environment > config file > defaults
func (c *Config) MergeWithFlags(baseURL, proxyMode, logFile string, maxRetries int) {
	c.MergeWithEnv()

	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if proxyMode != "" {
		c.ProxyMode = strings.ToLower(proxyMode)
	}
	if logFile != "" {
		c.LogFile = logFile
	}
	if maxRetries >= 0 {
		c.MaxRetries = maxRetries
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}

	if c.MaxRetries < 0 || c.MaxRetries > constants.MaxMaxRetries {
		return ErrInvalidRetries
	}

	switch c.ProxyMode {
	case ProxyModeNone, "", ProxyModeSystem:
	case ProxyModeBasic, ProxyModeNTLM:
		if c.ProxyHost == "" {
			return ErrMissingProxyHost
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProxyMode, c.ProxyMode)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// LogFilePath resolves LogFile; the value "default" selects
// DefaultLogFilePath.
func (c *Config) LogFilePath() string {
	if strings.EqualFold(strings.TrimSpace(c.LogFile), "default") {
		return DefaultLogFilePath()
	}
	return c.LogFile
}

// NeedsProxyPassword returns true if the proxy configuration requires a
// password but one has not been provided.
func (c *Config) NeedsProxyPassword() bool {
	mode := strings.ToLower(c.ProxyMode)
	if mode != ProxyModeBasic && mode != ProxyModeNTLM {
		return false
	}
	return c.ProxyUser != "" && c.ProxyPassword == ""
}
