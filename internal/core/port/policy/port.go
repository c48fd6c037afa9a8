package policy

import (
	"context"
	"net"

	"github.com/kondukto-io/pinguard/internal/core/domain"
)

// AddressPolicy decides whether an IPv4 address may be contacted
type AddressPolicy interface {
	IsAllowed(ip net.IP) bool
}

// HostPolicy evaluates additional rules over a resolved target
type HostPolicy interface {
	AllowTarget(ctx context.Context, input domain.HostRulesInput) (bool, error)
}
