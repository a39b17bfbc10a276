package resources

import "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"

// DefaultAvatar is an image offered to agents without an own picture.
type DefaultAvatar struct {
	resource.Record
	Name      string `json:"name" validate:"required,max=100"`
	ImageURL  string `json:"imageUrl" validate:"required,url"`
	IsDefault bool   `json:"isDefault"`
}

func defaultAvatarDefinition() resource.Definition[DefaultAvatar] {
	return resource.Definition[DefaultAvatar]{
		Name:  DefaultAvatars,
		Label: "Default avatar",
		Prepare: func(a *DefaultAvatar) {
			trim(&a.Name, &a.ImageURL)
		},
		Match: func(a *DefaultAvatar, term string) bool {
			return resource.ContainsFold(term, a.Name)
		},
	}
}
