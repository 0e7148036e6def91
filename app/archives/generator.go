package archives

import (
	"errors"
	"fmt"

	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/render"
)

// ErrNoRoute is returned when the generator is asked to bake before a
// route has been registered for it.
var ErrNoRoute = errors.New("no route registered for generator")

// ErrInvalidYear is returned when a route does not supply an integer year.
var ErrInvalidYear = errors.New("route must specify an integer 'year' parameter")

const (
	RouteTypeInt4 = "int4"

	yearSpecFormat = "_index[%04d]"
)

// RouteParameter declares a parameter the generator's route must bind.
type RouteParameter struct {
	Name string
	Type string
}

// Route maps a year to the output path of its archive page.
type Route struct {
	Pattern string // fmt pattern with one %04d verb, e.g. "archives/%04d.html"
}

func (r *Route) Path(year int) string {
	return fmt.Sprintf(r.Pattern, year)
}

// Generator synthesizes one virtual content item per calendar year that
// has at least one post, and prepares the render context for a year's
// archive page.
type Generator struct {
	name   string
	source content.Source
	loader content.PageLoader
	route  *Route
}

func NewGenerator(name string, source content.Source, loader content.PageLoader) *Generator {
	return &Generator{
		name:   name,
		source: source,
		loader: loader,
	}
}

func (g *Generator) Name() string {
	return g.name
}

func (g *Generator) InnerSource() content.Source {
	return g.source
}

// SupportedRouteParameters declares the single year parameter, constrained
// to a 4-digit integer.
func (g *Generator) SupportedRouteParameters() []RouteParameter {
	return []RouteParameter{{Name: "year", Type: RouteTypeInt4}}
}

func (g *Generator) RegisterRoute(route *Route) {
	g.route = route
}

// Route returns the registered route, or ErrNoRoute before registration.
func (g *Generator) Route() (*Route, error) {
	if g.route == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, g.name)
	}
	return g.route, nil
}

// FindContent resolves a requested year to the virtual content item for
// that year's archive page.
func (g *Generator) FindContent(routeParams map[string]interface{}) (content.Item, error) {
	year, err := yearParam(routeParams)
	if err != nil {
		return content.Item{}, err
	}

	return content.Item{
		Spec: fmt.Sprintf(yearSpecFormat, year),
		Metadata: map[string]interface{}{
			"route_params": map[string]interface{}{"year": year},
		},
	}, nil
}

// PrepareRenderContext installs the year's pagination filter and the
// precomputed archives iterator: the year's posts sorted ascending by
// date, oldest first.
func (g *Generator) PrepareRenderContext(ctx *render.Context) error {
	routeParams, _ := ctx.Page.Item.Metadata["route_params"].(map[string]interface{})
	year, err := yearParam(routeParams)
	if err != nil {
		return fmt.Errorf("generator %s: %w", g.name, err)
	}

	ctx.RouteParams["year"] = year
	ctx.PaginationFilter = IsFromYear(year)
	ctx.CustomData["year"] = year

	items, err := g.source.GetAllContents()
	if err != nil {
		return fmt.Errorf("failed to enumerate source %s: %w", g.source.Name(), err)
	}
	it := content.NewPageIterator(g.loader, items).
		HardFilter(IsFromYear(year)).
		SortByDate(true)
	ctx.CustomData["archives"] = it

	return nil
}

// IsFromYear is the filter clause matching posts published in the year.
func IsFromYear(year int) func(*content.Post) bool {
	return func(post *content.Post) bool {
		return post.Date.Year() == year
	}
}

func yearParam(routeParams map[string]interface{}) (int, error) {
	if routeParams == nil {
		return 0, ErrInvalidYear
	}
	raw, ok := routeParams["year"]
	if !ok {
		return 0, ErrInvalidYear
	}
	year, ok := raw.(int)
	if !ok {
		return 0, fmt.Errorf("%w: got %T", ErrInvalidYear, raw)
	}
	return year, nil
}
