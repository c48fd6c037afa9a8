package guard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/internal/core/port/guard"
	"github.com/kondukto-io/pinguard/internal/core/port/policy"
	"github.com/kondukto-io/pinguard/internal/core/port/resolver"
	"github.com/kondukto-io/pinguard/pkg/logger"
	"github.com/kondukto-io/pinguard/pkg/utils"
)

type useCase struct {
	addressPolicy policy.AddressPolicy
	hostPolicy    policy.HostPolicy
	resolver      resolver.Resolver
}

// New returns the pinning guard. hostPolicy is optional.
func New(addressPolicy policy.AddressPolicy, r resolver.Resolver, hostPolicy policy.HostPolicy) guard.UseCase {
	return &useCase{
		addressPolicy: addressPolicy,
		hostPolicy:    hostPolicy,
		resolver:      r,
	}
}

// Resolve selects the address u will be pinned to and checks it against the
// policies. Resolution happens on every call; results are never cached.
func (u *useCase) Resolve(ctx context.Context, target *url.URL) (*domain.ResolvedTarget, error) {
	var host = target.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: url [%s] has no host", domain.ErrUnresolvableHost, target.Redacted())
	}

	port, err := targetPort(target)
	if err != nil {
		return nil, err
	}

	var resolved = &domain.ResolvedTarget{
		OriginalHost: host,
		OriginalPort: port,
	}

	switch {
	case utils.ParseIPv4(host) != nil:
		resolved.Address = utils.ParseIPv4(host)
		resolved.Literal = true

	case utils.IsIPLiteral(host):
		return nil, fmt.Errorf("%w [%s]: only IPv4 addresses are supported", domain.ErrUnresolvableHost, host)

	default:
		ips, err := u.resolver.LookupIPv4(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("%w [%s]: %w", domain.ErrUnresolvableHost, host, err)
		}

		if len(ips) == 0 {
			return nil, fmt.Errorf("%w [%s]: no IPv4 address", domain.ErrUnresolvableHost, host)
		}

		// round-robin answers are not balanced; the first one is used
		resolved.Address = ips[0]
	}

	if !u.addressPolicy.IsAllowed(resolved.Address) {
		logger.Log.WithFields(logrus.Fields{
			"host":    host,
			"address": resolved.Address.String(),
		}).Warn("address not allowed")
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrAddressNotAllowed, resolved.Address, host)
	}

	if u.hostPolicy != nil {
		allowed, err := u.hostPolicy.AllowTarget(ctx, domain.HostRulesInput{
			Scheme:  target.Scheme,
			Host:    strings.TrimSuffix(host, "."),
			Address: resolved.Address.String(),
			Port:    port,
			Literal: resolved.Literal,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to evaluate host rules for [%s]: %w", domain.ErrAddressNotAllowed, host, err)
		}

		if !allowed {
			logger.Log.WithField("host", host).Warn("host denied by host rules")
			return nil, fmt.Errorf("%w: host [%s] denied by host rules", domain.ErrAddressNotAllowed, host)
		}
	}

	logger.Log.Debugf("[%s] pinned to %s", host, resolved.Address)

	return resolved, nil
}

// Pin resolves req and rewrites it in place: the URL host becomes the pinned
// address (explicit port, path and query untouched) and the Host header
// carries the original "host:port". Literal addresses are left unchanged
// and get an empty Host header.
func (u *useCase) Pin(ctx context.Context, req *http.Request) (*domain.ResolvedTarget, error) {
	if req.URL == nil {
		return nil, fmt.Errorf("%w: request has no url", domain.ErrUnresolvableHost)
	}

	resolved, err := u.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	if req.Header == nil {
		req.Header = make(http.Header)
	}

	var hostHeader = resolved.HostHeader()
	req.Header.Set("Host", hostHeader)

	if !resolved.Literal {
		// net/http sends req.Host and ignores the Host entry of req.Header
		req.Host = hostHeader
		req.URL.Host = resolved.ConnectHost(req.URL.Port())
	}

	return resolved, nil
}

func targetPort(target *url.URL) (int, error) {
	if p := target.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return 0, fmt.Errorf("%w: invalid port [%s]", domain.ErrUnresolvableHost, p)
		}
		return port, nil
	}

	port, ok := utils.DefaultPort(target.Scheme)
	if !ok {
		return 0, fmt.Errorf("%w: no default port for scheme [%s]", domain.ErrUnresolvableHost, target.Scheme)
	}

	return port, nil
}
