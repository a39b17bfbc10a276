package resources

import (
	"net"
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// IP address rule actions.
const (
	ActionAllow = "allow"
	ActionBlock = "block"
)

// IPAddress allows or blocks visitors from one address.
type IPAddress struct {
	resource.Record
	Address     string `json:"address" validate:"required,ip"`
	Description string `json:"description" validate:"max=255"`
	Action      string `json:"action" validate:"required,oneof=allow block"`
}

func ipAddressDefinition() resource.Definition[IPAddress] {
	return resource.Definition[IPAddress]{
		Name:     IPAddresses,
		Label:    "IP address",
		Fallback: true,
		Prepare: func(ip *IPAddress) {
			trim(&ip.Address, &ip.Description)

			// canonical form, e.g. 2001:DB8::0001 becomes 2001:db8::1
			if parsed := net.ParseIP(ip.Address); parsed != nil {
				ip.Address = parsed.String()
			}

			ip.Action = strings.ToLower(strings.TrimSpace(ip.Action))
			if ip.Action == "" {
				ip.Action = ActionBlock
			}
		},
		Match: func(ip *IPAddress, term string) bool {
			return resource.ContainsFold(term, ip.Address, ip.Description)
		},
	}
}
