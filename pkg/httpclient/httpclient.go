// Package httpclient builds the shared *http.Client used by every remote service client,
// following the functional-options client builder the storage stack's own HTTP clients
// construct themselves around.
package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Option configures the client returned by New.
type Option func(*options)

type options struct {
	timeout  time.Duration
	insecure bool
}

// Timeout sets the client's overall request timeout.
func Timeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Insecure disables TLS certificate verification; only ever meant for local development
// against self-signed service endpoints.
func Insecure(v bool) Option {
	return func(o *options) { o.insecure = v }
}

// New returns an *http.Client configured with the given options.
func New(opts ...Option) *http.Client {
	o := &options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if o.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}
}
