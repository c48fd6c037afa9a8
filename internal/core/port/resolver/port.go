package resolver

import (
	"context"
	"net"
)

// Resolver resolves a hostname to IPv4 addresses. Implementations must
// return only IPv4 addresses, in the order the lookup produced them, and
// an empty list (not an error) when the name does not exist.
type Resolver interface {
	LookupIPv4(ctx context.Context, host string) ([]net.IP, error)
}
