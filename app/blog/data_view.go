package blog

import (
	"errors"
	"fmt"

	"github.com/pagekiln/page-kiln/app/content"
)

// ErrTaxonomyNotFound is returned when a taxonomy name is not configured,
// as opposed to configured but matching no posts.
var ErrTaxonomyNotFound = errors.New("no such taxonomy")

// ErrMultipleSources is returned when a second source is combined into a
// data view, which is not supported.
var ErrMultipleSources = errors.New("the blog data view does not support combining multiple sources")

// DataView is the read-facing aggregate templates consume: posts, yearly
// and monthly archives, and per-taxonomy term collections. Everything is
// built lazily on first access and cached for the view's lifetime; a new
// view is the only way to re-index.
type DataView struct {
	source     content.Source
	loader     content.PageLoader
	taxonomies []Taxonomy
	tracker    content.UsageTracker

	posts        *content.PageIterator
	index        *postIndex
	trackerState bool
}

func NewDataView(source content.Source, loader content.PageLoader,
	taxonomies []Taxonomy, tracker content.UsageTracker) *DataView {
	return &DataView{
		source:     source,
		loader:     loader,
		taxonomies: taxonomies,
		tracker:    tracker,
	}
}

// AddSource rejects combining a second source into the view.
func (v *DataView) AddSource(other content.Source) error {
	return fmt.Errorf("cannot add source %s: %w", other.Name(), ErrMultipleSources)
}

// Posts returns a lazy iterator over the whole source, unsorted; ordering
// and filtering policy belongs to the iteration layer.
func (v *DataView) Posts() (*content.PageIterator, error) {
	if v.posts == nil {
		items, err := v.source.GetAllContents()
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate source %s: %w", v.source.Name(), err)
		}
		v.posts = content.NewPageIterator(v.loader, items)
		v.notifyTracker()
	}
	return v.posts, nil
}

// Years returns the yearly archive buckets, most recent year first.
func (v *DataView) Years() ([]*ArchiveEntry, error) {
	if err := v.buildArchives(); err != nil {
		return nil, err
	}
	return v.index.yearly, nil
}

// Months returns the monthly archive buckets, most recent month first.
func (v *DataView) Months() ([]*ArchiveEntry, error) {
	if err := v.buildArchives(); err != nil {
		return nil, err
	}
	return v.index.monthly, nil
}

// Taxonomy returns the term buckets for a configured taxonomy in
// first-seen order. An unknown name yields ErrTaxonomyNotFound.
func (v *DataView) Taxonomy(name string) ([]*TaxonomyEntry, error) {
	if err := v.buildArchives(); err != nil {
		return nil, err
	}
	entries, ok := v.index.taxonomies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaxonomyNotFound, name)
	}
	return entries, nil
}

// Keys returns the view's key set: posts, years, months, plus the
// configured taxonomy names.
func (v *DataView) Keys() []string {
	keys := []string{"posts", "years", "months"}
	for _, tax := range v.taxonomies {
		keys = append(keys, tax.Name)
	}
	return keys
}

func (v *DataView) Len() int {
	return 3 + len(v.taxonomies)
}

func (v *DataView) buildArchives() error {
	if v.index != nil {
		return nil
	}

	index, err := buildPostIndex(v.source, v.loader, v.taxonomies)
	if err != nil {
		return err
	}
	v.index = index
	v.notifyTracker()

	return nil
}

func (v *DataView) notifyTracker() {
	if v.trackerState || v.tracker == nil {
		return
	}
	v.tracker.AddUsedSource(v.source.Name())
	v.trackerState = true
}
