package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "full config",
			content: `[server]
base_url = https://files.example.com

[client]
max_retries = 3
retry_wait_min = 500ms
retry_wait_max = 5s
request_timeout = 1m
user_agent = test-agent

[proxy]
mode = basic
host = proxy.corp
port = 3128
user = alice
no_proxy = localhost,10.0.0.0/8
warmup = true

[logging]
file = /tmp/filebox.log
level = debug
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.BaseURL != "https://files.example.com" {
					t.Errorf("BaseURL = %q", cfg.BaseURL)
				}
				if cfg.MaxRetries != 3 {
					t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
				}
				if cfg.RetryWaitMin != 500*time.Millisecond || cfg.RetryWaitMax != 5*time.Second {
					t.Errorf("retry waits = %v/%v", cfg.RetryWaitMin, cfg.RetryWaitMax)
				}
				if cfg.RequestTimeout != time.Minute {
					t.Errorf("RequestTimeout = %v, want 1m", cfg.RequestTimeout)
				}
				if cfg.UserAgent != "test-agent" {
					t.Errorf("UserAgent = %q", cfg.UserAgent)
				}
				if cfg.ProxyMode != ProxyModeBasic || cfg.ProxyHost != "proxy.corp" || cfg.ProxyPort != 3128 {
					t.Errorf("proxy = %s %s:%d", cfg.ProxyMode, cfg.ProxyHost, cfg.ProxyPort)
				}
				if cfg.ProxyUser != "alice" || !cfg.ProxyWarmup {
					t.Errorf("proxy user/warmup = %q/%v", cfg.ProxyUser, cfg.ProxyWarmup)
				}
				if cfg.NoProxy != "localhost,10.0.0.0/8" {
					t.Errorf("NoProxy = %q", cfg.NoProxy)
				}
				if cfg.LogFile != "/tmp/filebox.log" || cfg.LogLevel != "debug" {
					t.Errorf("logging = %q/%q", cfg.LogFile, cfg.LogLevel)
				}
			},
		},
		{
			name:    "minimal config keeps defaults",
			content: "[server]\nbase_url = http://127.0.0.1:9000\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.BaseURL != "http://127.0.0.1:9000" {
					t.Errorf("BaseURL = %q", cfg.BaseURL)
				}
				if cfg.MaxRetries != 0 {
					t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
				}
				if cfg.ProxyMode != ProxyModeNone {
					t.Errorf("ProxyMode = %q, want %q", cfg.ProxyMode, ProxyModeNone)
				}
			},
		},
		{
			name:    "password in file is ignored",
			content: "[proxy]\nmode = basic\nhost = p\nuser = u\npassword = secret\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.ProxyPassword != "" {
					t.Errorf("ProxyPassword = %q, want empty", cfg.ProxyPassword)
				}
			},
		},
		{
			name:    "bad duration",
			content: "[client]\nrequest_timeout = soon\n",
			wantErr: true,
		},
		{
			name:    "bad proxy port",
			content: "[proxy]\nmode = basic\nhost = p\nport = eighty\n",
			wantErr: true,
		},
		{
			name:    "non-existent file returns defaults",
			missing: true,
			check: func(t *testing.T, cfg *Config) {
				if cfg.BaseURL != "http://localhost:8080" {
					t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.ini")
			if !tt.missing {
				path = writeConfigFile(t, tt.content)
			}

			cfg, err := LoadConfig(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.ini")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://files.example.com"
	cfg.MaxRetries = 2
	cfg.ProxyMode = ProxyModeNTLM
	cfg.ProxyHost = "proxy.corp"
	cfg.ProxyUser = "bob"
	cfg.ProxyPassword = "do-not-save"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if strings.Contains(string(raw), "do-not-save") {
		t.Error("saved config contains the proxy password")
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.BaseURL != cfg.BaseURL || loaded.MaxRetries != 2 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.ProxyMode != ProxyModeNTLM || loaded.ProxyHost != "proxy.corp" || loaded.ProxyUser != "bob" {
		t.Errorf("round trip lost proxy values: %+v", loaded)
	}
}

func TestMergeWithFlags(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://env.example.com")
	t.Setenv(EnvProxyPassword, "env-secret")

	cfg := DefaultConfig()
	cfg.BaseURL = "http://file.example.com"
	cfg.MergeWithFlags("", "", "", -1)

	if cfg.BaseURL != "http://env.example.com" {
		t.Errorf("env should override file, got %q", cfg.BaseURL)
	}
	if cfg.ProxyPassword != "env-secret" {
		t.Errorf("ProxyPassword = %q, want env value", cfg.ProxyPassword)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want untouched 0", cfg.MaxRetries)
	}

	cfg.MergeWithFlags("http://flag.example.com", "system", "/tmp/x.log", 4)
	if cfg.BaseURL != "http://flag.example.com" {
		t.Errorf("flag should override env, got %q", cfg.BaseURL)
	}
	if cfg.ProxyMode != ProxyModeSystem || cfg.LogFile != "/tmp/x.log" || cfg.MaxRetries != 4 {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: ErrMissingBaseURL},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "/files" }, wantErr: ErrInvalidBaseURL},
		{name: "ftp base url", mutate: func(c *Config) { c.BaseURL = "ftp://host" }, wantErr: ErrInvalidBaseURL},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: ErrInvalidRetries},
		{name: "too many retries", mutate: func(c *Config) { c.MaxRetries = 99 }, wantErr: ErrInvalidRetries},
		{name: "unknown proxy mode", mutate: func(c *Config) { c.ProxyMode = "socks" }, wantErr: ErrInvalidProxyMode},
		{name: "basic proxy without host", mutate: func(c *Config) { c.ProxyMode = ProxyModeBasic }, wantErr: ErrMissingProxyHost},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NeedsProxyPassword() {
		t.Error("no-proxy mode should not need a password")
	}

	cfg.ProxyMode = ProxyModeBasic
	cfg.ProxyUser = "alice"
	if !cfg.NeedsProxyPassword() {
		t.Error("basic mode with user and no password should need a password")
	}

	cfg.ProxyPassword = "secret"
	if cfg.NeedsProxyPassword() {
		t.Error("password already set")
	}
}

func TestLogFilePath(t *testing.T) {
	tests := []struct {
		logFile string
		want    string
	}{
		{"", ""},
		{"/var/log/filebox.log", "/var/log/filebox.log"},
		{"default", DefaultLogFilePath()},
		{" Default ", DefaultLogFilePath()},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.LogFile = tt.logFile
		if got := cfg.LogFilePath(); got != tt.want {
			t.Errorf("LogFilePath() with %q = %q, want %q", tt.logFile, got, tt.want)
		}
	}
	if !strings.HasSuffix(DefaultLogFilePath(), filepath.Join("filebox", "logs", "filebox.log")) {
		t.Errorf("DefaultLogFilePath() = %q", DefaultLogFilePath())
	}
}

func TestLoadConfigNamesBadKey(t *testing.T) {
	tests := map[string]string{
		"proxy.port":         "[proxy]\nport = 31 28\n",
		"client.max_retries": "[client]\nmax_retries = many\n",
	}
	for key, content := range tests {
		_, err := LoadConfig(writeConfigFile(t, content))
		if err == nil || !strings.HasPrefix(err.Error(), key+":") {
			t.Errorf("LoadConfig(%q) error = %v, want it to start with %q", content, err, key+":")
		}
	}
}
