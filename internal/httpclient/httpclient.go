package httpclient

import (
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds a single Google API round trip.
	DefaultTimeout = 30 * time.Second

	MaxIdleConns          = 10
	MaxIdleConnsPerHost   = 4
	IdleConnTimeout       = 90 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ExpectContinueTimeout = time.Second
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
	overrideMu        sync.RWMutex
	overrideClient    *http.Client
)

// NewClient returns an http.Client with the given overall timeout and a
// transport tuned for a handful of short API calls.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Default returns the process-wide client.
func Default() *http.Client {
	overrideMu.RLock()
	c := overrideClient
	overrideMu.RUnlock()
	if c != nil {
		return c
	}
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(DefaultTimeout)
	})
	return defaultClient
}

// SetDefaultForTesting overrides Default and returns a restore function.
func SetDefaultForTesting(client *http.Client) func() {
	overrideMu.Lock()
	prev := overrideClient
	overrideClient = client
	overrideMu.Unlock()
	return func() {
		overrideMu.Lock()
		overrideClient = prev
		overrideMu.Unlock()
	}
}
