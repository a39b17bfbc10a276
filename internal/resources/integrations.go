package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// Integration connects the chat to a third party service, e.g. a CRM.
type Integration struct {
	resource.Record
	Name     string         `json:"name" validate:"required,max=100"`
	Provider string         `json:"provider" validate:"required,max=50"`
	Config   map[string]any `json:"config,omitempty"`
	Active   bool           `json:"active"`
}

func integrationDefinition() resource.Definition[Integration] {
	return resource.Definition[Integration]{
		Name:  Integrations,
		Label: "Integration",
		Prepare: func(i *Integration) {
			trim(&i.Name)
			i.Provider = strings.ToLower(strings.TrimSpace(i.Provider))
		},
		Match: func(i *Integration, term string) bool {
			return resource.ContainsFold(term, i.Name, i.Provider)
		},
	}
}
