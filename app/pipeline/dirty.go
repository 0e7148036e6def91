package pipeline

import (
	"github.com/pagekiln/page-kiln/app/records"
)

// ResolveDirtyYears derives, from the current build's per-post records,
// the full set of years any post belongs to and the subset of years with
// at least one rebaked post. A year is dirty if any of its posts changed.
func ResolveDirtyYears(entries []records.PostEntry) (allYears, dirtyYears map[int]bool) {
	allYears = make(map[int]bool)
	dirtyYears = make(map[int]bool)

	for _, entry := range entries {
		year := entry.Timestamp.Year()
		allYears[year] = true
		if entry.SubBaked {
			dirtyYears[year] = true
		}
	}

	return allYears, dirtyYears
}
