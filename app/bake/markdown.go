package bake

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// RenderMarkdown converts the small markdown subset posts use into HTML:
// ATX headings, paragraphs separated by blank lines, and unordered lists.
// Inline markup is passed through escaped.
func RenderMarkdown(body string) template.HTML {
	var buf strings.Builder

	blocks := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		switch {
		case strings.HasPrefix(block, "#"):
			level := 0
			for level < len(block) && block[level] == '#' && level < 6 {
				level++
			}
			text := strings.TrimSpace(block[level:])
			fmt.Fprintf(&buf, "<h%d>%s</h%d>\n", level, html.EscapeString(text), level)

		case strings.HasPrefix(block, "- "):
			buf.WriteString("<ul>\n")
			for _, line := range strings.Split(block, "\n") {
				line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
				if line == "" {
					continue
				}
				fmt.Fprintf(&buf, "<li>%s</li>\n", html.EscapeString(line))
			}
			buf.WriteString("</ul>\n")

		default:
			text := strings.Join(strings.Split(block, "\n"), " ")
			fmt.Fprintf(&buf, "<p>%s</p>\n", html.EscapeString(text))
		}
	}

	return template.HTML(buf.String())
}
