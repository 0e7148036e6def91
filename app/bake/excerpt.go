package bake

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const excerptLength = 200

// Excerpt extracts the first paragraph of rendered post HTML as plain
// text for archive and feed listings, truncated at a word boundary.
func Excerpt(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(doc.Find("p").First().Text())
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	if len(text) <= excerptLength {
		return text
	}

	cut := text[:excerptLength]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
