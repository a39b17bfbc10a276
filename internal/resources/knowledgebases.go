package resources

import (
	"github.com/gosimple/slug"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/markdown"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// KnowledgeBase is a help article agents and the widget can link to.
type KnowledgeBase struct {
	resource.Record
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required"`
	Category  string `json:"category" validate:"max=100"`
	Slug      string `json:"slug" validate:"max=220"`
	Published bool   `json:"published"`
}

func knowledgeBaseDefinition() resource.Definition[KnowledgeBase] {
	return resource.Definition[KnowledgeBase]{
		Name:     KnowledgeBases,
		Label:    "Knowledge base entry",
		Fallback: true,
		Prepare: func(kb *KnowledgeBase) {
			trim(&kb.Title, &kb.Content, &kb.Category, &kb.Slug)

			if kb.Slug == "" {
				kb.Slug = kb.Title
			}

			kb.Slug = slug.Make(kb.Slug)
		},
		Match: func(kb *KnowledgeBase, term string) bool {
			return resource.ContainsFold(term, kb.Title, kb.Content, kb.Category)
		},
		Preview: func(kb *KnowledgeBase) (string, error) {
			return markdown.Render(kb.Content)
		},
	}
}
