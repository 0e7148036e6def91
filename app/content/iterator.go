package content

import (
	"fmt"
	"sort"
)

// PageIterator lazily materializes posts from a set of items, with optional
// hard filtering and date sorting applied at materialization time. The
// post slice is built once; Reset rewinds the cursor without rebuilding.
type PageIterator struct {
	loader  PageLoader
	items   []Item
	filter  func(*Post) bool
	sorted  bool
	sortAsc bool

	posts []*Post
	built bool
	pos   int
}

func NewPageIterator(loader PageLoader, items []Item) *PageIterator {
	return &PageIterator{
		loader: loader,
		items:  items,
	}
}

// HardFilter restricts the iterator to posts matching the clause. Must be
// called before the first materialization.
func (it *PageIterator) HardFilter(clause func(*Post) bool) *PageIterator {
	it.filter = clause
	return it
}

// SortByDate orders materialized posts by publication date.
func (it *PageIterator) SortByDate(ascending bool) *PageIterator {
	it.sorted = true
	it.sortAsc = ascending
	return it
}

// All materializes and returns the full post slice, cached across calls.
func (it *PageIterator) All() ([]*Post, error) {
	if err := it.build(); err != nil {
		return nil, err
	}
	return it.posts, nil
}

// Count returns the number of posts after filtering.
func (it *PageIterator) Count() (int, error) {
	if err := it.build(); err != nil {
		return 0, err
	}
	return len(it.posts), nil
}

// Next returns the next post, or false once the iterator is exhausted.
func (it *PageIterator) Next() (*Post, bool, error) {
	if err := it.build(); err != nil {
		return nil, false, err
	}
	if it.pos >= len(it.posts) {
		return nil, false, nil
	}
	post := it.posts[it.pos]
	it.pos++
	return post, true, nil
}

// Reset rewinds the cursor. The materialized posts are kept.
func (it *PageIterator) Reset() {
	it.pos = 0
}

func (it *PageIterator) build() error {
	if it.built {
		return nil
	}

	posts := make([]*Post, 0, len(it.items))
	for _, item := range it.items {
		post, err := it.loader.LoadPage(item)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", item.Spec, err)
		}
		if it.filter != nil && !it.filter(post) {
			continue
		}
		posts = append(posts, post)
	}

	if it.sorted {
		sort.SliceStable(posts, func(i, j int) bool {
			if it.sortAsc {
				return posts[i].Date.Before(posts[j].Date)
			}
			return posts[i].Date.After(posts[j].Date)
		})
	}

	it.posts = posts
	it.built = true
	it.pos = 0

	return nil
}
