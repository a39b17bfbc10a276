package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// GlobalNotification is a message pushed to every workspace.
type GlobalNotification struct {
	resource.Record
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
	Level   string `json:"level" validate:"required,oneof=info warning critical"`
	Active  bool   `json:"active"`
}

func globalNotificationDefinition() resource.Definition[GlobalNotification] {
	return resource.Definition[GlobalNotification]{
		Name:  GlobalNotifications,
		Label: "Global notification",
		Prepare: func(n *GlobalNotification) {
			trim(&n.Title, &n.Message)
			n.Level = strings.ToLower(strings.TrimSpace(n.Level))
		},
		Match: func(n *GlobalNotification, term string) bool {
			return resource.ContainsFold(term, n.Title, n.Message)
		},
	}
}
