package resources

import "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"

// Template is a reusable chat message.
type Template struct {
	resource.Record
	Name     string `json:"name" validate:"required,max=100"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"max=100"`
}

func templateDefinition() resource.Definition[Template] {
	return resource.Definition[Template]{
		Name:     Templates,
		Label:    "Template",
		Fallback: true,
		Prepare: func(t *Template) {
			trim(&t.Name, &t.Content, &t.Category)
		},
		Match: func(t *Template, term string) bool {
			return resource.ContainsFold(term, t.Name, t.Content, t.Category)
		},
	}
}
