package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/filebox/filebox-client/internal/config"
)

// CreateClient returns the HTTP client used for every call to the file server.
//
// It starts from ConfigureHTTPClient (proxy handling) and, when the
// transport is a plain *http.Transport, enables HTTP/2 negotiation. HTTP/2 is
// turned off when a proxy is active or DISABLE_HTTP2=true is set, since
// proxies often mishandle multiplexed streams.
func CreateClient(cfg *config.Config) (*nethttp.Client, error) {
	client, err := ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	tr, ok := client.Transport.(*nethttp.Transport)
	if !ok {
		// NTLM wraps the transport in ntlmssp.Negotiator; leave it alone
		return client, nil
	}

	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" || (proxyActive(cfg) && os.Getenv("FORCE_HTTP2") != "true") {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	client.Transport = tr
	return client, nil
}

// proxyActive trusts the configured mode first and only inspects the
// environment for "system" mode.
func proxyActive(cfg *config.Config) bool {
	switch cfg.ProxyMode {
	case config.ProxyModeNone, "":
		return false
	case config.ProxyModeSystem:
		return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
			os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	default:
		return true
	}
}
