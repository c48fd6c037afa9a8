package domain

const (
	// EventPolicyStatusPass is set for requests that were pinned and allowed
	EventPolicyStatusPass = "pass"
	// EventPolicyStatusBlock is set for requests that were rejected
	EventPolicyStatusBlock = "block"
)

// ReportEvent is a single guard decision written to the report file
type ReportEvent struct {
	URL                string `json:"url"`
	Host               string `json:"host"`
	DestinationAddress string `json:"daddr"`
	DestinationPort    int    `json:"dport"`
	HostHeader         string `json:"host_header"`
	Policy             string `json:"policy"`
	Reason             string `json:"reason,omitempty"`
}
