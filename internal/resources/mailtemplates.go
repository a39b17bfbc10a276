package resources

import (
	"html"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/markdown"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// MailTemplate is an email sent by the chat product, e.g. a transcript.
// Subject and body may use {{variable}} placeholders.
type MailTemplate struct {
	resource.Record
	Name    string `json:"name" validate:"required,max=100"`
	Subject string `json:"subject" validate:"required,max=255"`
	Body    string `json:"body" validate:"required"`
	Type    string `json:"type" validate:"max=50"`
}

// SampleValues fill placeholders in mail template previews.
func SampleValues() map[string]string {
	return map[string]string{
		"name":        "Jane Doe",
		"firstName":   "Jane",
		"lastName":    "Doe",
		"email":       "jane.doe@example.com",
		"company":     "Example Inc.",
		"website":     "example.com",
		"agent":       "Alex",
		"agentName":   "Alex",
		"chatId":      "1024",
		"date":        "2026-01-15",
		"transcript":  "> Visitor: Hello\n>\n> Alex: Hi Jane, how can I help?",
		"resetLink":   "https://example.com/reset/sample",
		"inviteLink":  "https://example.com/invite/sample",
		"unsubscribe": "https://example.com/unsubscribe/sample",
	}
}

func mailTemplateDefinition() resource.Definition[MailTemplate] {
	return resource.Definition[MailTemplate]{
		Name:     MailTemplates,
		Label:    "Mail template",
		Fallback: true,
		Prepare: func(m *MailTemplate) {
			trim(&m.Name, &m.Subject, &m.Type)
		},
		Match: func(m *MailTemplate, term string) bool {
			return resource.ContainsFold(term, m.Name, m.Subject)
		},
		Preview: func(m *MailTemplate) (string, error) {
			vars := SampleValues()

			body, err := markdown.Render(markdown.Fill(m.Body, vars))
			if err != nil {
				return "", err //nolint:wrapcheck
			}

			return "<h1>" + html.EscapeString(markdown.Fill(m.Subject, vars)) + "</h1>\n" + body, nil
		},
	}
}
