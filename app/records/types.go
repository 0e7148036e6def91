package records

import (
	"time"
)

// PostEntry is the persisted per-post record of one build: the post's
// spec, its publication timestamp, the content hash used for change
// detection, and whether the post was rebaked during that build.
type PostEntry struct {
	Spec        string
	Timestamp   time.Time
	ContentHash string
	SubBaked    bool
	OutPath     string
}

// ArchiveEntry is the persisted per-year record of one build: the year
// key, the output paths the archive page produced, and any bake errors.
type ArchiveEntry struct {
	Year     string
	OutPaths []string
	Errors   []string
}

// Record is the full build record for one run.
type Record struct {
	ID        int64
	Version   string
	CreatedAt time.Time
	Posts     []PostEntry
	Archives  []ArchiveEntry
}

func NewRecord(version string) *Record {
	return &Record{
		Version:   version,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Record) FindPost(spec string) *PostEntry {
	for i := range r.Posts {
		if r.Posts[i].Spec == spec {
			return &r.Posts[i]
		}
	}
	return nil
}

func (r *Record) FindArchive(year string) *ArchiveEntry {
	for i := range r.Archives {
		if r.Archives[i].Year == year {
			return &r.Archives[i]
		}
	}
	return nil
}

// OutPaths returns every output path the record produced.
func (r *Record) AllOutPaths() []string {
	var paths []string
	for _, entry := range r.Posts {
		if entry.OutPath != "" {
			paths = append(paths, entry.OutPath)
		}
	}
	for _, entry := range r.Archives {
		paths = append(paths, entry.OutPaths...)
	}
	return paths
}

// History pairs the previous build's record with the one being built.
type History struct {
	Previous *Record
	Current  *Record
}

// NewHistory starts a build against the previous record, which may be nil
// on a first build.
func NewHistory(previous *Record, version string) *History {
	if previous == nil {
		previous = &Record{}
	}
	return &History{
		Previous: previous,
		Current:  NewRecord(version),
	}
}

// ArchiveDiff pairs a previous archive entry with its current counterpart;
// either side may be nil when the year only appears in one build.
type ArchiveDiff struct {
	Previous *ArchiveEntry
	Current  *ArchiveEntry
}

// ArchiveDiffs yields one diff per year appearing in either build,
// previous-build years first.
func (h *History) ArchiveDiffs() []ArchiveDiff {
	var diffs []ArchiveDiff
	seen := make(map[string]bool)

	for i := range h.Previous.Archives {
		prev := &h.Previous.Archives[i]
		seen[prev.Year] = true
		diffs = append(diffs, ArchiveDiff{
			Previous: prev,
			Current:  h.Current.FindArchive(prev.Year),
		})
	}
	for i := range h.Current.Archives {
		cur := &h.Current.Archives[i]
		if seen[cur.Year] {
			continue
		}
		diffs = append(diffs, ArchiveDiff{Current: cur})
	}

	return diffs
}
