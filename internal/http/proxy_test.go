package http

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	ntlmssp "github.com/Azure/go-ntlmssp"

	"github.com/filebox/filebox-client/internal/config"
)

// TestProxyFuncWithBypass_EmptyNoProxy verifies that an empty noProxy always routes through proxy.
func TestProxyFuncWithBypass_EmptyNoProxy(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "")

	req, _ := http.NewRequest("GET", "https://api.example.com/data", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected proxy URL, got nil (direct)")
	}
	if result.Host != "proxy.corp:8080" {
		t.Errorf("expected proxy host proxy.corp:8080, got %s", result.Host)
	}
}

// TestProxyFuncWithBypass_WildcardDomain verifies *.example.com bypasses api.example.com.
func TestProxyFuncWithBypass_WildcardDomain(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "*.example.com")

	// Subdomain should bypass proxy
	req, _ := http.NewRequest("GET", "https://api.example.com/data", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil (bypass) for api.example.com, got %v", result)
	}
}

// TestProxyFuncWithBypass_ExactDomain verifies example.com bypasses root and subdomains.
func TestProxyFuncWithBypass_ExactDomain(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "example.com")

	// Root domain should bypass
	req, _ := http.NewRequest("GET", "https://example.com/data", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil (bypass) for example.com, got %v", result)
	}

	// Subdomain should also bypass: httpproxy matches subdomains of a bare domain
	req2, _ := http.NewRequest("GET", "https://api.example.com/data", nil)
	result2, err := proxyFunc(req2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result2 != nil {
		t.Errorf("expected nil (bypass) for api.example.com, got %v", result2)
	}
}

// TestProxyFuncWithBypass_CIDR verifies IP/CIDR range matching.
func TestProxyFuncWithBypass_CIDR(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "10.0.0.0/8")

	// IP in range should bypass
	req, _ := http.NewRequest("GET", "http://10.1.2.3:8080/api", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil (bypass) for 10.1.2.3, got %v", result)
	}
}

// TestProxyFuncWithBypass_NonMatchingHost verifies non-matching hosts route through proxy.
func TestProxyFuncWithBypass_NonMatchingHost(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "*.internal.corp,10.0.0.0/8")

	// External host should use proxy
	req, _ := http.NewRequest("GET", "https://files.example.net/files", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected proxy URL for files.example.net, got nil (direct)")
	}
	if result.Host != "proxy.corp:8080" {
		t.Errorf("expected proxy host proxy.corp:8080, got %s", result.Host)
	}
}

// TestProxyFuncWithBypass_MultiplePatterns verifies comma-separated patterns work.
func TestProxyFuncWithBypass_MultiplePatterns(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "*.example.com, 192.168.0.0/16, internal.corp")

	tests := []struct {
		name       string
		url        string
		wantBypass bool
	}{
		{"wildcard match", "https://api.example.com/data", true},
		{"cidr match", "http://192.168.1.100/api", true},
		{"exact domain match", "https://internal.corp/status", true},
		{"non-match", "https://files.example.net/files", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tt.url, nil)
			result, err := proxyFunc(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantBypass && result != nil {
				t.Errorf("expected bypass (nil) for %s, got %v", tt.url, result)
			}
			if !tt.wantBypass && result == nil {
				t.Errorf("expected proxy for %s, got nil (bypass)", tt.url)
			}
		})
	}
}

func TestConfigureHTTPClient_Modes(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		host      string
		wantProxy bool
		wantNTLM  bool
		wantErr   bool
	}{
		{name: "no proxy", mode: config.ProxyModeNone},
		{name: "empty mode", mode: ""},
		{name: "system", mode: config.ProxyModeSystem},
		{name: "basic", mode: config.ProxyModeBasic, host: "proxy.corp", wantProxy: true},
		{name: "basic without host falls back", mode: config.ProxyModeBasic},
		{name: "ntlm", mode: config.ProxyModeNTLM, host: "proxy.corp", wantNTLM: true},
		{name: "unknown", mode: "socks5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.ProxyMode = tt.mode
			cfg.ProxyHost = tt.host
			cfg.RequestTimeout = 5 * time.Second

			client, err := ConfigureHTTPClient(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ConfigureHTTPClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if client.Timeout != 5*time.Second {
				t.Errorf("Timeout = %v, want 5s", client.Timeout)
			}

			if tt.wantNTLM {
				if _, ok := client.Transport.(ntlmssp.Negotiator); !ok {
					t.Errorf("Transport = %T, want ntlmssp.Negotiator", client.Transport)
				}
				return
			}

			tr, ok := client.Transport.(*http.Transport)
			if !ok {
				t.Fatalf("Transport = %T, want *http.Transport", client.Transport)
			}
			if tt.wantProxy && tr.Proxy == nil {
				t.Error("expected a proxy func")
			}
			if tt.mode == config.ProxyModeNone && tr.Proxy != nil {
				t.Error("no-proxy mode should not set a proxy func")
			}
		})
	}
}

func TestBuildProxyURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ProxyHost = "proxy.corp"
	cfg.ProxyPort = 0
	cfg.ProxyUser = "alice"

	u := buildProxyURL(cfg)
	if u.Host != "proxy.corp:8080" {
		t.Errorf("Host = %q, want default port 8080", u.Host)
	}
	if u.User != nil {
		t.Error("credentials must not be embedded without a password")
	}

	cfg.ProxyPassword = "secret"
	u = buildProxyURL(cfg)
	if u.User == nil || u.User.Username() != "alice" {
		t.Errorf("User = %v, want alice", u.User)
	}
}

func TestCreateClient_DisablesHTTP2BehindProxy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ProxyMode = config.ProxyModeBasic
	cfg.ProxyHost = "proxy.corp"

	client, err := CreateClient(cfg)
	if err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}
	tr := client.Transport.(*http.Transport)
	if tr.ForceAttemptHTTP2 {
		t.Error("HTTP/2 should be disabled when a proxy is active")
	}

	cfg = config.DefaultConfig()
	client, err = CreateClient(cfg)
	if err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}
	if !client.Transport.(*http.Transport).ForceAttemptHTTP2 {
		t.Error("HTTP/2 should be attempted without a proxy")
	}
}
