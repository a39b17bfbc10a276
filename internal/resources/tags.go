package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// Tag labels chats and visitors.
type Tag struct {
	resource.Record
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func tagDefinition() resource.Definition[Tag] {
	return resource.Definition[Tag]{
		Name:  Tags,
		Label: "Tag",
		Prepare: func(t *Tag) {
			trim(&t.Name)
			t.Color = strings.ToLower(strings.TrimSpace(t.Color))
		},
		Match: func(t *Tag, term string) bool {
			return resource.ContainsFold(term, t.Name)
		},
	}
}
