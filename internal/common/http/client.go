// Package http builds the outbound HTTP clients used by the forwarder.
// Certificate verification cannot be switched off; tests add trust roots
// with WithRootCAs instead.
package http

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"time"
)

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	Timeout         time.Duration
	RootCAs         *x509.CertPool
	FollowRedirects bool
	Transport       http.RoundTripper
}

// DefaultClientConfig returns default HTTP client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:         30 * time.Second,
		FollowRedirects: true,
	}
}

// ClientOption is a function that modifies ClientConfig
type ClientOption func(*ClientConfig)

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithRootCAs trusts the given pool instead of the system roots
func WithRootCAs(pool *x509.CertPool) ClientOption {
	return func(c *ClientConfig) {
		c.RootCAs = pool
	}
}

// WithoutRedirects returns 3xx responses to the caller instead of following them
func WithoutRedirects() ClientOption {
	return func(c *ClientConfig) {
		c.FollowRedirects = false
	}
}

// WithTransport sets a custom transport. RootCAs is ignored when set.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *ClientConfig) {
		c.Transport = transport
	}
}

// NewHTTPClient creates a new HTTP client with the given options. The
// transport is a clone of http.DefaultTransport with TLS 1.2 as the floor.
func NewHTTPClient(opts ...ClientOption) *http.Client {
	cfg := DefaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := cfg.Transport
	if transport == nil {
		httpTransport := http.DefaultTransport.(*http.Transport).Clone()
		httpTransport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    cfg.RootCAs,
		}
		transport = httpTransport
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client
}

