package content

import (
	"time"
)

// Item is an opaque handle to a piece of source content. Buckets and build
// records reference items by spec; the page loader resolves them to posts.
type Item struct {
	Spec      string // Source-relative identifier (file path or virtual spec)
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// Post is the loaded view of an item: publication date plus the raw
// front-matter configuration mapping.
type Post struct {
	Item    Item
	Title   string
	Date    time.Time
	Config  map[string]interface{} // Parsed front matter
	Body    string                 // Markdown body, front matter stripped
	OutPath string                 // Set once the post has been baked
}

// Source enumerates content items. Name identifies the source in build
// records and dependency tracking.
type Source interface {
	Name() string
	GetAllContents() ([]Item, error)
}

// PageLoader resolves an item to its post, cached per spec.
type PageLoader interface {
	LoadPage(item Item) (*Post, error)
}

// UsageTracker records which sources a rendered page depended on, so
// downstream cache invalidation knows what to rebuild. Passed explicitly
// into view constructors instead of living in ambient global state.
type UsageTracker interface {
	AddUsedSource(name string)
}
