package utils

import (
	"net"
	"strings"
)

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

// ParseIPv4 returns the 4-byte form of s when s is a literal IPv4 address
// (IPv4-mapped IPv6 included), nil otherwise.
func ParseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}

	return ip.To4()
}

// IsIPLiteral reports whether s is a literal IP address of any family
func IsIPLiteral(s string) bool {
	return net.ParseIP(s) != nil
}

// DefaultPort returns the well-known port of the given URL scheme
func DefaultPort(scheme string) (int, bool) {
	port, ok := defaultPorts[strings.ToLower(scheme)]
	return port, ok
}

// SplitList flattens comma separated entries and drops empty items.
// "a, b" and ["a", "b"] both become ["a", "b"].
func SplitList(values []string) []string {
	var list []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}

	return list
}
