package resolver

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/kondukto-io/pinguard/internal/core/port/resolver"
	"github.com/kondukto-io/pinguard/pkg/utils"
)

// StaticRepo answers from a fixed host table and delegates unknown hosts
// to a fallback resolver, if any.
type StaticRepo struct {
	hosts    map[string][]net.IP
	fallback resolver.Resolver
}

// NewStatic returns a resolver backed by hosts. Host keys are matched
// case-insensitively; a nil fallback makes unknown hosts unresolvable.
// Keys that differ only by case are merged in sorted key order.
func NewStatic(hosts map[string][]net.IP, fallback resolver.Resolver) resolver.Resolver {
	var names = make([]string, 0, len(hosts))
	for host := range hosts {
		names = append(names, host)
	}
	sort.Strings(names)

	var table = make(map[string][]net.IP, len(hosts))
	for _, host := range names {
		key := hostKey(host)
		for _, ip := range hosts[host] {
			table[key] = append(table[key], append(net.IP(nil), ip...))
		}
	}

	return &StaticRepo{
		hosts:    table,
		fallback: fallback,
	}
}

// ParseStatic builds a static resolver from "host=ip[,ip...]" entries, the
// format of the --resolve flag. Only IPv4 addresses are accepted.
func ParseStatic(entries []string, fallback resolver.Resolver) (resolver.Resolver, error) {
	var hosts = make(map[string][]net.IP)
	for _, entry := range entries {
		host, addrs, ok := strings.Cut(entry, "=")
		host = hostKey(strings.TrimSpace(host))
		if !ok || host == "" {
			return nil, fmt.Errorf("invalid resolve entry [%s], expected host=ip", entry)
		}

		for _, addr := range utils.SplitList([]string{addrs}) {
			ip := utils.ParseIPv4(addr)
			if ip == nil {
				return nil, fmt.Errorf("invalid resolve entry [%s]: [%s] is not an IPv4 address", entry, addr)
			}
			hosts[host] = append(hosts[host], ip)
		}

		if len(hosts[host]) == 0 {
			return nil, fmt.Errorf("invalid resolve entry [%s]: no address", entry)
		}
	}

	return NewStatic(hosts, fallback), nil
}

// LookupIPv4 returns a copy of the configured addresses of host
func (s *StaticRepo) LookupIPv4(ctx context.Context, host string) ([]net.IP, error) {
	if ips, ok := s.hosts[hostKey(host)]; ok {
		out := make([]net.IP, 0, len(ips))
		for _, ip := range ips {
			out = append(out, append(net.IP(nil), ip...))
		}
		return out, nil
	}

	if s.fallback == nil {
		return nil, nil
	}

	return s.fallback.LookupIPv4(ctx, host)
}

// hostKey folds case and the trailing root dot
func hostKey(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}
