package domain

// PolicyConfig is the static allow/deny configuration of a guard. It is built
// once (see parser.ToPolicyConfig) and never modified afterwards.
type PolicyConfig struct {
	// Deny is the explicit list of denied networks in CIDR notation.
	// A bare IPv4 address is treated as a /32.
	Deny []string `json:"deny"`
	// Allow lists networks that are permitted even if they match a deny range.
	Allow []string `json:"allow"`
	// DenyPrivate adds the RFC1918 ranges and the loopback block to the deny set.
	DenyPrivate bool `json:"deny_private_ranges"`
	// DenyReserved adds the RFC6890 special-purpose ranges to the deny set.
	DenyReserved bool `json:"deny_reserved_ranges"`
	// AllowLocalhost allows exactly 127.0.0.1, not the whole loopback block.
	AllowLocalhost bool `json:"allow_localhost"`
}

// HostRulesData represents the JSON data used by the host rules (rego) policy.
type HostRulesData struct {
	// Glob patterns of hostnames that must never be contacted,
	// e.g. "*.internal" or "metadata.google.internal".
	DeniedHosts []string `json:"denied_hosts"`
}

// HostRulesInput is the input document of a single host rules evaluation.
type HostRulesInput struct {
	Scheme  string `json:"scheme"`
	Host    string `json:"host"`
	Address string `json:"address"`
	Port    int    `json:"port"`
	Literal bool   `json:"literal"`
}
