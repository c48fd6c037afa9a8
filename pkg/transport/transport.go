// Package transport plugs the pinning guard into an http.Client.
package transport

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/internal/core/port/guard"
	"github.com/kondukto-io/pinguard/pkg/logger"
)

// Observer is notified of every guard decision
type Observer func(req *http.Request, target *domain.ResolvedTarget, err error)

// Transport pins every outgoing request (redirects included) before handing
// it to the base transport. Requests rejected by the guard are never sent.
type Transport struct {
	guard    guard.UseCase
	base     *http.Transport
	observer Observer
}

// New wraps base, or a clone of http.DefaultTransport when base is nil
func New(uc guard.UseCase, base *http.Transport) *Transport {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Transport{
		guard: uc,
		base:  base,
	}
}

// WithObserver sets the decision observer and returns t
func (t *Transport) WithObserver(o Observer) *Transport {
	t.observer = o
	return t
}

// NewClient returns an http.Client using a guarded default transport
func NewClient(uc guard.UseCase, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: New(uc, nil),
		Timeout:   timeout,
	}
}

// RoundTrip implements http.RoundTripper. The caller's request is not
// modified; a pinned clone is sent instead.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var pinned = req.Clone(req.Context())

	target, err := t.guard.Pin(req.Context(), pinned)
	if t.observer != nil {
		t.observer(req, target, err)
	}
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	var rt = t.base
	if pinned.URL.Scheme == "https" && !target.Literal {
		// the connection goes to a bare address; keep SNI and certificate
		// verification on the original name
		rt = t.base.Clone()
		if rt.TLSClientConfig == nil {
			rt.TLSClientConfig = &tls.Config{}
		}
		rt.TLSClientConfig.ServerName = target.OriginalHost
		rt.DisableKeepAlives = true
	}

	logger.Log.Debugf("%s %s (Host: %s)", pinned.Method, pinned.URL.Redacted(), pinned.Host)

	return rt.RoundTrip(pinned)
}

// CloseIdleConnections closes idle connections of the base transport
func (t *Transport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}
