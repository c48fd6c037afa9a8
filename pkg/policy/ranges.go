package policy

import (
	"fmt"
	"net"
	"strings"
)

// localhost is the single address allowed by the allow_localhost option
const localhost = "127.0.0.1/32"

// privateRanges are the RFC1918 networks plus the loopback block
var privateRanges = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// reservedRanges are the IPv4 special-purpose blocks of RFC6890,
// extended with multicast.
var reservedRanges = []string{
	"0.0.0.0/8",          // "this" network
	"10.0.0.0/8",         // private-use
	"100.64.0.0/10",      // shared address space (CGN)
	"127.0.0.0/8",        // loopback
	"169.254.0.0/16",     // link local
	"172.16.0.0/12",      // private-use
	"192.0.0.0/24",       // IETF protocol assignments
	"192.0.2.0/24",       // TEST-NET-1
	"192.88.99.0/24",     // 6to4 relay anycast
	"192.168.0.0/16",     // private-use
	"198.18.0.0/15",      // benchmarking
	"198.51.100.0/24",    // TEST-NET-2
	"203.0.113.0/24",     // TEST-NET-3
	"224.0.0.0/4",        // multicast
	"240.0.0.0/4",        // reserved
	"255.255.255.255/32", // limited broadcast
}

// NetworkRange is an IPv4 CIDR block. The zero value contains nothing.
type NetworkRange struct {
	network net.IPNet
}

// ParseRange parses an IPv4 CIDR block. A bare address is read as a /32.
func ParseRange(cidr string) (NetworkRange, error) {
	var s = strings.TrimSpace(cidr)
	if !strings.Contains(s, "/") {
		s += "/32"
	}

	_, network, err := net.ParseCIDR(s)
	if err != nil {
		return NetworkRange{}, fmt.Errorf("failed to parse network range [%s]: %w", cidr, err)
	}

	if network.IP.To4() == nil {
		return NetworkRange{}, fmt.Errorf("network range [%s] is not IPv4", cidr)
	}

	return NetworkRange{network: *network}, nil
}

// MustParseRange is like ParseRange but panics on error
func MustParseRange(cidr string) NetworkRange {
	r, err := ParseRange(cidr)
	if err != nil {
		panic(err)
	}

	return r
}

// Contains reports whether ip is inside the range
func (r NetworkRange) Contains(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil || r.network.IP == nil {
		return false
	}

	return r.network.Contains(ip4)
}

// Network returns a copy of the underlying network
func (r NetworkRange) Network() net.IPNet {
	return net.IPNet{
		IP:   append(net.IP(nil), r.network.IP...),
		Mask: append(net.IPMask(nil), r.network.Mask...),
	}
}

func (r NetworkRange) String() string {
	if r.network.IP == nil {
		return "<nil>"
	}

	return r.network.String()
}

func parseRanges(cidrs []string) ([]NetworkRange, error) {
	ranges := make([]NetworkRange, 0, len(cidrs))
	for _, cidr := range cidrs {
		r, err := ParseRange(cidr)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	return ranges, nil
}
