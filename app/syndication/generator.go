package syndication

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/pagekiln/page-kiln/app/bake"
	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/site"
)

// FeedPath is where the site feed bakes to, relative to the output
// directory.
const FeedPath = "feed.xml"

// Generator produces the site's RSS 2.0 feed from the most recent posts.
type Generator struct {
	site    *site.Config
	version string
}

func NewGenerator(siteCfg *site.Config, version string) *Generator {
	return &Generator{site: siteCfg, version: version}
}

func (g *Generator) Run(posts []*content.Post) (string, error) {
	var buf bytes.Buffer

	sorted := make([]*content.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	limit := g.site.FeedItems
	if limit <= 0 {
		limit = 10
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", g.site.Title, 4)
	g.writeElement(&buf, "link", g.site.BaseURL, 4)
	description := g.site.Description
	if description == "" {
		description = fmt.Sprintf("Posts from %s", g.site.Title)
	}
	g.writeElement(&buf, "description", description, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.absoluteURL(FeedPath))))

	lastBuildDate := time.Now().In(time.Local)
	if len(sorted) > 0 {
		lastBuildDate = sorted[0].Date
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Page-Kiln/%s", g.version), 4)
	g.writeElement(&buf, "language", g.site.Language, 4)

	for _, post := range sorted {
		g.writeItem(&buf, post)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post *content.Post) {
	buf.WriteString("    <item>\n")

	link := g.absoluteURL(g.postPath(post))
	buf.WriteString(`      <guid isPermaLink="true">`)
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", post.Title, 6)
	g.writeElement(buf, "link", link, 6)

	rendered := string(bake.RenderMarkdown(post.Body))
	g.writeElement(buf, "description", bake.Excerpt(rendered), 6)

	if rendered != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(rendered)
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", post.Date.Format(time.RFC1123Z), 6)

	for _, category := range postCategories(post) {
		g.writeElement(buf, "category", category, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) postPath(post *content.Post) string {
	if post.OutPath != "" {
		return post.OutPath
	}
	return bake.PostOutPath(post)
}

func (g *Generator) absoluteURL(path string) string {
	base := strings.TrimSuffix(g.site.BaseURL, "/")
	return base + "/" + path
}

// postCategories flattens a post's tags front-matter value, accepting
// both a list and a single scalar.
func postCategories(post *content.Post) []string {
	raw, ok := post.Config["tags"]
	if !ok {
		return nil
	}

	var categories []string
	switch value := raw.(type) {
	case []interface{}:
		for _, entry := range value {
			if s, ok := entry.(string); ok && s != "" {
				categories = append(categories, s)
			}
		}
	case []string:
		for _, s := range value {
			if s != "" {
				categories = append(categories, s)
			}
		}
	case string:
		if value != "" {
			categories = append(categories, value)
		}
	}
	return categories
}
