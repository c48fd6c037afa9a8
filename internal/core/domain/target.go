package domain

import (
	"net"
	"strconv"
)

// ResolvedTarget is the outcome of resolving a request's host and selecting
// the address the request will be pinned to.
type ResolvedTarget struct {
	// Address is the selected IPv4 address.
	Address net.IP
	// OriginalHost is the hostname of the request URL, without port.
	OriginalHost string
	// OriginalPort is the explicit URL port or the scheme default.
	OriginalPort int
	// Literal is set when the URL host was already an IPv4 address
	// and no resolution took place.
	Literal bool
}

// HostHeader returns the value of the Host header for the pinned request.
// It is empty for literal addresses and "host:port" otherwise; the port is
// always included, even when it is the scheme default.
func (t ResolvedTarget) HostHeader() string {
	if t.Literal {
		return ""
	}

	return net.JoinHostPort(t.OriginalHost, strconv.Itoa(t.OriginalPort))
}

// ConnectHost returns the URL host pointing at the pinned address. The port
// is appended only when the original URL carried one.
func (t ResolvedTarget) ConnectHost(explicitPort string) string {
	if explicitPort == "" {
		return t.Address.String()
	}

	return net.JoinHostPort(t.Address.String(), explicitPort)
}
