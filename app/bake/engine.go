package bake

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pagekiln/page-kiln/app/blog"
	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/site"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

const indexPostLimit = 10

// Engine renders pages through html/template. Built-in templates are
// always loaded; files in the templates directory override them by name.
type Engine struct {
	site *site.Config
	tpl  *template.Template
}

func NewEngine(siteCfg *site.Config, templatesDir string) (*Engine, error) {
	tpl, err := template.ParseFS(builtinTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in templates: %w", err)
	}

	if templatesDir != "" {
		if _, err := os.Stat(templatesDir); err == nil {
			pattern := filepath.Join(templatesDir, "*.html")
			if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
				tpl, err = tpl.ParseGlob(pattern)
				if err != nil {
					return nil, fmt.Errorf("failed to parse templates in %s: %w", templatesDir, err)
				}
			}
		}
	}

	return &Engine{site: siteCfg, tpl: tpl}, nil
}

type postView struct {
	Site    *site.Config
	Title   string
	Date    time.Time
	Content template.HTML
}

type listedPost struct {
	Title   string
	Date    time.Time
	URL     string
	Excerpt string
}

type yearView struct {
	Site  *site.Config
	Year  int
	Posts []listedPost
}

type taxonomyView struct {
	Name    string
	Entries []*blog.TaxonomyEntry
}

type indexView struct {
	Site       *site.Config
	Posts      []listedPost
	Years      []*blog.ArchiveEntry
	Months     []*blog.ArchiveEntry
	Taxonomies []taxonomyView
}

// RenderPost renders a single post page.
func (e *Engine) RenderPost(post *content.Post) ([]byte, error) {
	return e.execute("post.html", postView{
		Site:    e.site,
		Title:   post.Title,
		Date:    post.Date,
		Content: RenderMarkdown(post.Body),
	})
}

// RenderYearArchive renders one year's archive page from the posts the
// archives iterator produced (oldest first).
func (e *Engine) RenderYearArchive(year int, posts []*content.Post) ([]byte, error) {
	return e.execute("year.html", yearView{
		Site:  e.site,
		Year:  year,
		Posts: listPosts(posts),
	})
}

// RenderIndex renders the front page from the blog data view: recent
// posts plus the year, month, and taxonomy archives.
func (e *Engine) RenderIndex(view *blog.DataView, taxonomyNames []string) ([]byte, error) {
	it, err := view.Posts()
	if err != nil {
		return nil, err
	}
	posts, err := it.All()
	if err != nil {
		return nil, err
	}

	recent := make([]*content.Post, len(posts))
	copy(recent, posts)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > indexPostLimit {
		recent = recent[:indexPostLimit]
	}

	years, err := view.Years()
	if err != nil {
		return nil, err
	}
	months, err := view.Months()
	if err != nil {
		return nil, err
	}

	taxonomies := make([]taxonomyView, 0, len(taxonomyNames))
	for _, name := range taxonomyNames {
		entries, err := view.Taxonomy(name)
		if err != nil {
			return nil, err
		}
		taxonomies = append(taxonomies, taxonomyView{Name: name, Entries: entries})
	}

	return e.execute("index.html", indexView{
		Site:       e.site,
		Posts:      listPosts(recent),
		Years:      years,
		Months:     months,
		Taxonomies: taxonomies,
	})
}

func (e *Engine) execute(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func listPosts(posts []*content.Post) []listedPost {
	listed := make([]listedPost, 0, len(posts))
	for _, post := range posts {
		listed = append(listed, listedPost{
			Title:   post.Title,
			Date:    post.Date,
			URL:     "/" + PostOutPath(post),
			Excerpt: Excerpt(string(RenderMarkdown(post.Body))),
		})
	}
	return listed
}
