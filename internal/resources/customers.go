package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// Customer is a paying account owning websites.
type Customer struct {
	resource.Record
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"max=100"`
	Plan    string `json:"plan" validate:"max=50"`
}

func customerDefinition() resource.Definition[Customer] {
	return resource.Definition[Customer]{
		Name:  Customers,
		Label: "Customer",
		Prepare: func(c *Customer) {
			trim(&c.Name, &c.Company, &c.Plan)
			c.Email = strings.ToLower(strings.TrimSpace(c.Email))
		},
		Match: func(c *Customer, term string) bool {
			return resource.ContainsFold(term, c.Name, c.Email, c.Company)
		},
	}
}
