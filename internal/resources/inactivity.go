package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// InactivityTimeout decides what happens to a chat after the visitor went quiet.
type InactivityTimeout struct {
	resource.Record
	WebsiteID      uint64 `json:"websiteId" validate:"required"`
	TimeoutMinutes int    `json:"timeoutMinutes" validate:"required,min=1,max=1440"`
	Message        string `json:"message" validate:"max=500"`
	Action         string `json:"action" validate:"omitempty,oneof=close transfer notify"`
}

func inactivityTimeoutDefinition() resource.Definition[InactivityTimeout] {
	return resource.Definition[InactivityTimeout]{
		Name:  InactivityTimeouts,
		Label: "Inactivity timeout",
		Prepare: func(i *InactivityTimeout) {
			trim(&i.Message)
			i.Action = strings.ToLower(strings.TrimSpace(i.Action))
		},
		Match: func(i *InactivityTimeout, term string) bool {
			return resource.ContainsFold(term, i.Message, i.Action)
		},
	}
}
