package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/kondukto-io/pinguard/internal/core/port/resolver"
	"github.com/kondukto-io/pinguard/pkg/logger"
)

// SystemRepo resolves hostnames through DNS
type SystemRepo struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewSystem returns a DNS resolver. When nameserver ("ip:port") is set the
// pure Go resolver queries that server instead of the system configuration.
// A zero timeout leaves the deadline to the caller's context.
func NewSystem(nameserver string, timeout time.Duration) resolver.Resolver {
	var r = net.DefaultResolver
	if nameserver != "" {
		dialer := net.Dialer{Timeout: timeout}
		r = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, nameserver)
			},
		}
	}

	return &SystemRepo{
		resolver: r,
		timeout:  timeout,
	}
}

// LookupIPv4 resolves host and keeps the IPv4 answers in the order returned
func (s *SystemRepo) LookupIPv4(ctx context.Context, host string) ([]net.IP, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	addrs, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			logger.Log.Debugf("host [%s] not found", host)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lookup host [%s]: %w", host, err)
	}

	ips := FilterIPv4(addrs)
	logger.Log.Debugf("host [%s] resolved: %v (ipv4: %v)", host, addrs, ips)

	return ips, nil
}

// FilterIPv4 drops every answer that is not an IPv4 address (IPv6, zoned
// addresses) and returns the rest in their original order.
func FilterIPv4(addrs []net.IPAddr) []net.IP {
	var ips []net.IP
	for _, addr := range addrs {
		if addr.Zone != "" {
			continue
		}
		if ip4 := addr.IP.To4(); ip4 != nil {
			ips = append(ips, ip4)
		}
	}

	return ips
}
