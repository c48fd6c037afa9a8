// Package policy holds the address policy (allow/deny CIDR tables) and the
// host rules evaluated with Open Policy Agent.
package policy

import (
	"net"

	"github.com/yl2chen/cidranger"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/pkg/logger"
)

// Decision is the verdict of the table for a single address
type Decision struct {
	Allowed bool
	// Range is the most specific range that produced the verdict,
	// empty when no range matched.
	Range string
}

// Table decides whether an IPv4 address is permitted. Allow ranges always
// win over deny ranges. A Table is read-only after New and is safe for
// concurrent use.
type Table struct {
	allow cidranger.Ranger
	deny  cidranger.Ranger
}

// New builds the effective allow and deny sets of cfg. Malformed ranges are
// reported here; IsAllowed itself never fails.
func New(cfg domain.PolicyConfig) (*Table, error) {
	allowCIDRs := append([]string(nil), cfg.Allow...)
	if cfg.AllowLocalhost {
		allowCIDRs = append(allowCIDRs, localhost)
	}

	denyCIDRs := append([]string(nil), cfg.Deny...)
	if cfg.DenyPrivate {
		denyCIDRs = append(denyCIDRs, privateRanges...)
	}
	if cfg.DenyReserved {
		denyCIDRs = append(denyCIDRs, reservedRanges...)
	}

	allowRanges, err := parseRanges(allowCIDRs)
	if err != nil {
		return nil, err
	}

	denyRanges, err := parseRanges(denyCIDRs)
	if err != nil {
		return nil, err
	}

	var t = &Table{
		allow: cidranger.NewPCTrieRanger(),
		deny:  cidranger.NewPCTrieRanger(),
	}

	for _, r := range allowRanges {
		if err := t.allow.Insert(cidranger.NewBasicRangerEntry(r.network)); err != nil {
			return nil, err
		}
	}

	for _, r := range denyRanges {
		if err := t.deny.Insert(cidranger.NewBasicRangerEntry(r.network)); err != nil {
			return nil, err
		}
	}

	logger.Log.Debugf("policy table: %d allow range(s), %d deny range(s)", t.allow.Len(), t.deny.Len())

	return t, nil
}

// IsAllowed reports whether ip may be contacted
func (t *Table) IsAllowed(ip net.IP) bool {
	return t.Decide(ip).Allowed
}

// Decide evaluates ip and returns the verdict with the matching range.
// Addresses that are not IPv4 never match a range; they are allowed only
// while the deny set is empty.
func (t *Table) Decide(ip net.IP) Decision {
	ip4 := ip.To4()
	if ip4 == nil {
		return Decision{Allowed: t.deny.Len() == 0}
	}

	if r, ok := match(t.allow, ip4); ok {
		return Decision{Allowed: true, Range: r}
	}

	if r, ok := match(t.deny, ip4); ok {
		return Decision{Allowed: false, Range: r}
	}

	return Decision{Allowed: true}
}

// match returns the most specific network of ranger containing ip
func match(ranger cidranger.Ranger, ip net.IP) (string, bool) {
	if ranger.Len() == 0 {
		return "", false
	}

	entries, err := ranger.ContainingNetworks(ip)
	if err != nil || len(entries) == 0 {
		return "", false
	}

	network := entries[len(entries)-1].Network()

	return network.String(), true
}
