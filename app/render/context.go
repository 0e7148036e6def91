package render

import (
	"sort"
	"sync"

	"github.com/pagekiln/page-kiln/app/content"
)

// Context carries the state for rendering a single page: the page itself,
// its route parameters, the pagination filter restricting listings on the
// page, and any custom data the generator precomputed for templates. It
// also tracks which sources the render depended on.
type Context struct {
	Page             *content.Post
	RouteParams      map[string]interface{}
	PaginationFilter func(*content.Post) bool
	CustomData       map[string]interface{}

	mu          sync.Mutex
	usedSources map[string]bool
}

func NewContext(page *content.Post) *Context {
	return &Context{
		Page:        page,
		RouteParams: make(map[string]interface{}),
		CustomData:  make(map[string]interface{}),
		usedSources: make(map[string]bool),
	}
}

// AddUsedSource registers a source dependency for this render.
func (c *Context) AddUsedSource(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usedSources[name] = true
}

// UsedSources returns the registered dependencies in sorted order.
func (c *Context) UsedSources() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.usedSources))
	for name := range c.usedSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
