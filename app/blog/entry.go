package blog

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pagekiln/page-kiln/app/content"
)

var titleCaser = cases.Title(language.English)

// ArchiveEntry is a bucket of posts sharing a classification key: a year
// ("2023") or a month ("January 2023"). The timestamp is used only for
// ordering buckets. Items are kept in source enumeration order; the sorted
// iterator view is built lazily on first Posts access and reset, not
// rebuilt, on repeated access.
type ArchiveEntry struct {
	Name      string
	Timestamp time.Time

	loader   content.PageLoader
	items    []content.Item
	iterator *content.PageIterator
}

func newArchiveEntry(loader content.PageLoader, name string, timestamp time.Time) *ArchiveEntry {
	return &ArchiveEntry{
		Name:      name,
		Timestamp: timestamp,
		loader:    loader,
	}
}

func (e *ArchiveEntry) String() string {
	return e.Name
}

// Items returns the bucket's content items in enumeration order.
func (e *ArchiveEntry) Items() []content.Item {
	return e.items
}

// Posts returns the bucket's iterator view, most recent post first.
func (e *ArchiveEntry) Posts() *content.PageIterator {
	if e.iterator == nil {
		e.iterator = content.NewPageIterator(e.loader, e.items).SortByDate(false)
	}
	e.iterator.Reset()
	return e.iterator
}

// TaxonomyEntry is a bucket of posts sharing a taxonomy term.
type TaxonomyEntry struct {
	Term string

	loader   content.PageLoader
	items    []content.Item
	iterator *content.PageIterator
}

func newTaxonomyEntry(loader content.PageLoader, term string) *TaxonomyEntry {
	return &TaxonomyEntry{
		Term:   term,
		loader: loader,
	}
}

func (e *TaxonomyEntry) String() string {
	return e.Term
}

func (e *TaxonomyEntry) Name() string {
	return e.Term
}

// DisplayName returns the term title-cased for templates.
func (e *TaxonomyEntry) DisplayName() string {
	return titleCaser.String(e.Term)
}

func (e *TaxonomyEntry) PostCount() int {
	return len(e.items)
}

func (e *TaxonomyEntry) Items() []content.Item {
	return e.items
}

func (e *TaxonomyEntry) Posts() *content.PageIterator {
	if e.iterator == nil {
		e.iterator = content.NewPageIterator(e.loader, e.items).SortByDate(false)
	}
	e.iterator.Reset()
	return e.iterator
}
