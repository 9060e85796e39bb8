// Package httpclient builds the HTTP client shared by queries and tracking.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout               = 15 * time.Second
	DefaultDialTimeout           = 5 * time.Second
	DefaultMaxIdleConns          = 50
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultExpectContinueTimeout = time.Second
)

// ClientConfig configures the client. Zero fields take the defaults above.
type ClientConfig struct {
	// Timeout bounds a whole request including reading the body. A request
	// exceeding it fails as a transport error.
	Timeout             time.Duration
	DialTimeout         time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	TLSConfig           *tls.Config
}

// Middleware wraps a RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// NewTransport returns a tuned *http.Transport.
func NewTransport(cfg ClientConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   orDuration(cfg.DialTimeout, DefaultDialTimeout),
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          orInt(cfg.MaxIdleConns, DefaultMaxIdleConns),
		MaxIdleConnsPerHost:   orInt(cfg.MaxIdleConnsPerHost, DefaultMaxIdleConnsPerHost),
		IdleConnTimeout:       orDuration(cfg.IdleConnTimeout, DefaultIdleConnTimeout),
		TLSHandshakeTimeout:   orDuration(cfg.TLSHandshakeTimeout, DefaultTLSHandshakeTimeout),
		ExpectContinueTimeout: DefaultExpectContinueTimeout,
		TLSClientConfig:       cfg.TLSConfig,
	}
}

// NewClient returns a client over base, or over NewTransport(cfg) when base
// is nil. Middleware is applied so that the first one listed sees the
// request first.
func NewClient(cfg ClientConfig, base http.RoundTripper, middleware ...Middleware) *http.Client {
	if base == nil {
		base = NewTransport(cfg)
	}
	rt := base
	for i := len(middleware) - 1; i >= 0; i-- {
		rt = middleware[i](rt)
	}
	return &http.Client{
		Timeout:   orDuration(cfg.Timeout, DefaultTimeout),
		Transport: rt,
	}
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
