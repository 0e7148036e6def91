package blog

import (
	"fmt"
	"sort"
	"time"

	"github.com/pagekiln/page-kiln/app/content"
)

// Taxonomy is a configured classification axis. Setting names the
// front-matter key holding the term(s); Multiple distinguishes list-valued
// taxonomies (tags) from single-valued ones (category).
type Taxonomy struct {
	Name     string
	Setting  string
	Multiple bool
}

// postIndex is the result of one full pass over a source: year buckets and
// month buckets sorted most recent first, and per-taxonomy term buckets in
// first-seen order.
type postIndex struct {
	yearly     []*ArchiveEntry
	monthly    []*ArchiveEntry
	taxonomies map[string][]*TaxonomyEntry
}

// buildPostIndex scans every item of the source exactly once, classifying
// each post into its year bucket, month bucket, and zero or more taxonomy
// buckets. Buckets are created on first match and never pruned, so no
// bucket is ever empty.
func buildPostIndex(source content.Source, loader content.PageLoader, taxonomies []Taxonomy) (*postIndex, error) {
	yearlyIndex := make(map[string]*ArchiveEntry)
	monthlyIndex := make(map[string]*ArchiveEntry)

	taxIndex := make(map[string]map[string]*TaxonomyEntry, len(taxonomies))
	taxOrder := make(map[string][]*TaxonomyEntry, len(taxonomies))
	for _, tax := range taxonomies {
		taxIndex[tax.Name] = make(map[string]*TaxonomyEntry)
	}

	items, err := source.GetAllContents()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate source %s: %w", source.Name(), err)
	}

	for _, item := range items {
		post, err := loader.LoadPage(item)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %s: %w", item.Spec, err)
		}

		year := post.Date.Format("2006")
		month := post.Date.Format("January 2006")

		postsThisYear := yearlyIndex[year]
		if postsThisYear == nil {
			timestamp := time.Date(post.Date.Year(), time.January, 1,
				0, 0, 0, 0, post.Date.Location())
			postsThisYear = newArchiveEntry(loader, year, timestamp)
			yearlyIndex[year] = postsThisYear
		}
		postsThisYear.items = append(postsThisYear.items, post.Item)

		postsThisMonth := monthlyIndex[month]
		if postsThisMonth == nil {
			timestamp := time.Date(post.Date.Year(), post.Date.Month(), 1,
				0, 0, 0, 0, post.Date.Location())
			postsThisMonth = newArchiveEntry(loader, month, timestamp)
			monthlyIndex[month] = postsThisMonth
		}
		postsThisMonth.items = append(postsThisMonth.items, post.Item)

		for _, tax := range taxonomies {
			postTerm, ok := post.Config[tax.Setting]
			if !ok || postTerm == nil {
				continue
			}

			postsThisTax := taxIndex[tax.Name]
			for _, term := range termValues(postTerm, tax.Multiple) {
				entry := postsThisTax[term]
				if entry == nil {
					entry = newTaxonomyEntry(loader, term)
					postsThisTax[term] = entry
					taxOrder[tax.Name] = append(taxOrder[tax.Name], entry)
				}
				entry.items = append(entry.items, post.Item)
			}
		}
	}

	index := &postIndex{
		yearly:     sortedEntries(yearlyIndex),
		monthly:    sortedEntries(monthlyIndex),
		taxonomies: make(map[string][]*TaxonomyEntry, len(taxonomies)),
	}
	for _, tax := range taxonomies {
		index.taxonomies[tax.Name] = taxOrder[tax.Name]
	}

	return index, nil
}

// sortedEntries orders buckets by timestamp descending, most recent first.
func sortedEntries(index map[string]*ArchiveEntry) []*ArchiveEntry {
	entries := make([]*ArchiveEntry, 0, len(index))
	for _, entry := range index {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

// termValues normalizes a front-matter term value into bucket keys. A
// multi-valued taxonomy accepts a list of terms or a bare scalar; a
// single-valued taxonomy always buckets by the post's own term value.
// Empty terms produce no bucket.
func termValues(raw interface{}, multiple bool) []string {
	if multiple {
		switch v := raw.(type) {
		case []interface{}:
			terms := make([]string, 0, len(v))
			for _, elem := range v {
				if term := termString(elem); term != "" {
					terms = append(terms, term)
				}
			}
			return terms
		case []string:
			terms := make([]string, 0, len(v))
			for _, elem := range v {
				if elem != "" {
					terms = append(terms, elem)
				}
			}
			return terms
		}
	}

	if term := termString(raw); term != "" {
		return []string{term}
	}
	return nil
}

func termString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}
