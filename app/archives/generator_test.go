package archives

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/render"
)

type memorySource struct {
	name  string
	posts []*content.Post
}

func (s *memorySource) Name() string { return s.name }

func (s *memorySource) GetAllContents() ([]content.Item, error) {
	items := make([]content.Item, 0, len(s.posts))
	for _, post := range s.posts {
		items = append(items, post.Item)
	}
	return items, nil
}

func (s *memorySource) LoadPage(item content.Item) (*content.Post, error) {
	for _, post := range s.posts {
		if post.Item.Spec == item.Spec {
			return post, nil
		}
	}
	return nil, fmt.Errorf("no such post: %s", item.Spec)
}

func makePost(spec string, date time.Time) *content.Post {
	return &content.Post{
		Item:  content.Item{Spec: spec, Timestamp: date},
		Title: spec,
		Date:  date,
	}
}

func testSource() *memorySource {
	return &memorySource{name: "posts", posts: []*content.Post{
		makePost("a.md", time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)),
		makePost("b.md", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)),
		makePost("c.md", time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC)),
	}}
}

func TestGeneratorFindContent(t *testing.T) {
	source := testSource()
	gen := NewGenerator("blog_archives", source, source)

	item, err := gen.FindContent(map[string]interface{}{"year": 2023})
	if err != nil {
		t.Fatal(err)
	}

	if item.Spec != "_index[2023]" {
		t.Errorf("Expected spec '_index[2023]', got '%s'", item.Spec)
	}

	routeParams, ok := item.Metadata["route_params"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected route_params metadata")
	}
	if routeParams["year"] != 2023 {
		t.Errorf("Expected year 2023 in metadata, got %v", routeParams["year"])
	}
}

func TestGeneratorFindContentNonIntegerYear(t *testing.T) {
	source := testSource()
	gen := NewGenerator("blog_archives", source, source)

	_, err := gen.FindContent(map[string]interface{}{"year": "2023"})
	if err == nil {
		t.Fatal("Expected error for non-integer year")
	}
	if !errors.Is(err, ErrInvalidYear) {
		t.Errorf("Expected ErrInvalidYear, got %v", err)
	}

	_, err = gen.FindContent(map[string]interface{}{})
	if !errors.Is(err, ErrInvalidYear) {
		t.Errorf("Expected ErrInvalidYear for missing year, got %v", err)
	}
}

func TestGeneratorRouteRegistration(t *testing.T) {
	source := testSource()
	gen := NewGenerator("blog_archives", source, source)

	if _, err := gen.Route(); !errors.Is(err, ErrNoRoute) {
		t.Errorf("Expected ErrNoRoute before registration, got %v", err)
	}

	gen.RegisterRoute(&Route{Pattern: "archives/%04d.html"})
	route, err := gen.Route()
	if err != nil {
		t.Fatal(err)
	}
	if route.Path(2023) != "archives/2023.html" {
		t.Errorf("Unexpected route path: %s", route.Path(2023))
	}

	params := gen.SupportedRouteParameters()
	if len(params) != 1 || params[0].Name != "year" || params[0].Type != RouteTypeInt4 {
		t.Errorf("Unexpected route parameters: %v", params)
	}
}

func TestPrepareRenderContext(t *testing.T) {
	source := testSource()
	gen := NewGenerator("blog_archives", source, source)

	item, err := gen.FindContent(map[string]interface{}{"year": 2023})
	if err != nil {
		t.Fatal(err)
	}
	page := &content.Post{Item: item, Title: "2023"}

	ctx := render.NewContext(page)
	if err := gen.PrepareRenderContext(ctx); err != nil {
		t.Fatal(err)
	}

	if ctx.CustomData["year"] != 2023 {
		t.Errorf("Expected year 2023 in custom data, got %v", ctx.CustomData["year"])
	}

	// Pagination filter restricts listings to the requested year
	if ctx.PaginationFilter == nil {
		t.Fatal("Expected a pagination filter")
	}
	if !ctx.PaginationFilter(makePost("x.md", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))) {
		t.Error("Filter rejected a 2023 post")
	}
	if ctx.PaginationFilter(makePost("y.md", time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC))) {
		t.Error("Filter accepted a 2022 post")
	}

	// Archives iterator: only the requested year, ascending by date
	it, ok := ctx.CustomData["archives"].(*content.PageIterator)
	if !ok {
		t.Fatal("Expected archives iterator in custom data")
	}
	posts, err := it.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts from 2023, got %d", len(posts))
	}
	for _, post := range posts {
		if post.Date.Year() != 2023 {
			t.Errorf("Post %s is not from 2023", post.Item.Spec)
		}
	}
	if !posts[0].Date.Before(posts[1].Date) {
		t.Error("Archive posts not sorted oldest first")
	}
}

func TestPrepareRenderContextMissingYear(t *testing.T) {
	source := testSource()
	gen := NewGenerator("blog_archives", source, source)

	page := &content.Post{Item: content.Item{Spec: "_index[0000]"}}
	ctx := render.NewContext(page)

	err := gen.PrepareRenderContext(ctx)
	if !errors.Is(err, ErrInvalidYear) {
		t.Errorf("Expected ErrInvalidYear for missing route metadata, got %v", err)
	}
}
