// Package markdown renders operator written text for previews.
package markdown

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// raw HTML in the source is not passed through, goldmark omits it unless WithUnsafe is set
var renderer = goldmark.New( //nolint:gochecknoglobals
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`) //nolint:gochecknoglobals

// Render converts GitHub flavoured markdown to HTML.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(src), &buf); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buf.String(), nil
}

// Fill replaces {{name}} placeholders with vars. Unknown names stay as written.
func Fill(src string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(src, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}

		return m
	})
}
