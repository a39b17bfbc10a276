package resources

import (
	"time"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/markdown"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// Announcement is a dashboard banner shown to operators.
type Announcement struct {
	resource.Record
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required"`
	Active    bool       `json:"active"`
	StartsAt  *time.Time `json:"startsAt,omitempty"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	WebsiteID uint64     `json:"websiteId,omitempty"`
}

func announcementDefinition() resource.Definition[Announcement] {
	return resource.Definition[Announcement]{
		Name:     Announcements,
		Label:    "Announcement",
		Fallback: true,
		Prepare: func(a *Announcement) {
			trim(&a.Title, &a.Content)

			// an end before the start is treated as open ended
			if a.StartsAt != nil && a.EndsAt != nil && a.EndsAt.Before(*a.StartsAt) {
				a.EndsAt = nil
			}
		},
		Match: func(a *Announcement, term string) bool {
			return resource.ContainsFold(term, a.Title, a.Content)
		},
		Preview: func(a *Announcement) (string, error) {
			return markdown.Render(a.Content)
		},
	}
}
