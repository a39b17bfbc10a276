package widget

// Preview query parameters that override single fields for live editing.
const (
	QueryBubbleColor = "bubbleColor"
	QueryPosition    = "position"
	QueryGreeting    = "greeting"
	QueryTitle       = "title"
)

// WithOverrides applies the preview query parameters read through get.
// An override that would make the appearance invalid is ignored.
func (a Appearance) WithOverrides(get func(key string) string) Appearance {
	overrides := []struct {
		key   string
		apply func(*Appearance, string)
	}{
		{QueryBubbleColor, func(a *Appearance, v string) { a.Bubble.Color = v }},
		{QueryPosition, func(a *Appearance, v string) { a.Bubble.Position = v }},
		{QueryGreeting, func(a *Appearance, v string) {
			a.Greeting.Enabled = true
			a.Greeting.Message = v
		}},
		{QueryTitle, func(a *Appearance, v string) { a.Window.Title = v }},
	}

	for _, o := range overrides {
		v := get(o.key)
		if v == "" {
			continue
		}

		next := a
		o.apply(&next, v)
		next.Normalize()

		if next.Validate() == nil {
			a = next
		}
	}

	return a
}

// IconGlyph returns the character drawn inside the bubble.
func (b Bubble) IconGlyph() string {
	switch b.Icon {
	case "help":
		return "?"
	case "message":
		return "✉"
	default:
		return "💬"
	}
}
