package http

import (
	"crypto/tls"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"

	"github.com/koreawook/ClockApp/internal/constants"
)

// ProxyConfig selects how outbound requests reach the internet.
type ProxyConfig struct {
	// Mode is "no-proxy", "system" (HTTP_PROXY/HTTPS_PROXY/NO_PROXY) or "manual".
	Mode string
	// URL is the proxy for manual mode, e.g. http://proxy.corp:8080
	URL string
	// NoProxy is a comma-separated bypass list for manual mode.
	NoProxy string
}

// ConfigureHTTPClient builds an HTTP client with the requested proxy mode.
// The client has no overall timeout; callers bound requests with a context.
func ConfigureHTTPClient(p ProxyConfig) (*nethttp.Client, error) {
	transport := &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: constants.HTTPTLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	switch strings.ToLower(p.Mode) {
	case "no-proxy", "":
		transport.Proxy = nil

	case "system":
		transport.Proxy = nethttp.ProxyFromEnvironment

	case "manual":
		if strings.TrimSpace(p.URL) == "" {
			return nil, fmt.Errorf("manual proxy mode requires a proxy URL")
		}
		proxyURL, err := url.Parse(p.URL)
		if err != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", p.URL)
		}
		transport.Proxy = proxyFuncWithBypass(proxyURL, p.NoProxy)

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", p.Mode)
	}

	return &nethttp.Client{Transport: transport}, nil
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy
// bypass list. With an empty list every request goes through the proxy.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
}
