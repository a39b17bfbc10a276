package resources

import "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"

// SmartResponse is a canned answer agents insert by typing its shortcut.
type SmartResponse struct {
	resource.Record
	Shortcut string `json:"shortcut" validate:"required,max=50"`
	Response string `json:"response" validate:"required,max=5000"`
}

func smartResponseDefinition() resource.Definition[SmartResponse] {
	return resource.Definition[SmartResponse]{
		Name:  SmartResponses,
		Label: "Smart response",
		Prepare: func(s *SmartResponse) {
			trim(&s.Shortcut, &s.Response)
		},
		Match: func(s *SmartResponse, term string) bool {
			return resource.ContainsFold(term, s.Shortcut, s.Response)
		},
	}
}
