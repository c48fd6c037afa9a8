package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAddressNotAllowed is returned when the resolved (or literal) address
	// of a request is denied by the policy.
	ErrAddressNotAllowed = errors.New("address not allowed")

	// ErrConnectionFailed is the connection failure kind surfaced to callers.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnresolvableHost is returned when a hostname has no usable IPv4
	// address. It is a connection failure, not a policy denial.
	ErrUnresolvableHost = fmt.Errorf("%w: unresolvable host", ErrConnectionFailed)
)
