package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// Website is a site the chat widget is installed on.
type Website struct {
	resource.Record
	Name       string `json:"name" validate:"required,max=100"`
	Domain     string `json:"domain" validate:"required,fqdn"`
	CustomerID uint64 `json:"customerId,omitempty"`
}

func websiteDefinition() resource.Definition[Website] {
	return resource.Definition[Website]{
		Name:  Websites,
		Label: "Website",
		Prepare: func(w *Website) {
			trim(&w.Name)

			d := strings.ToLower(strings.TrimSpace(w.Domain))
			d = strings.TrimPrefix(d, "https://")
			d = strings.TrimPrefix(d, "http://")
			d, _, _ = strings.Cut(d, "/")
			w.Domain = strings.TrimSuffix(d, ".")
		},
		Match: func(w *Website, term string) bool {
			return resource.ContainsFold(term, w.Name, w.Domain)
		},
	}
}
