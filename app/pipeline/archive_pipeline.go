package pipeline

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pagekiln/page-kiln/app/archives"
	"github.com/pagekiln/page-kiln/app/bake"
	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/records"
	"github.com/pagekiln/page-kiln/app/render"
)

// Job is one year-archive bake: the synthetic _index[YYYY] item and its
// year.
type Job struct {
	Item content.Item
	Year int
}

// ArchivePipeline rebakes the per-year archive pages whose years contain
// at least one rebaked post, then reconciles the build record so clean
// years keep their previous output entries and vanished years drop out.
//
// Lifecycle per build: Initialize, CreateJobs, RunJobs, PostJobRun,
// Shutdown. PostJobRun must not run until the writer queue has drained.
type ArchivePipeline struct {
	generator *archives.Generator
	engine    *bake.Engine
	baker     *bake.PageBaker
	history   *records.History

	allYears map[int]bool

	mu      sync.Mutex
	pending []*records.ArchiveEntry
}

func NewArchivePipeline(generator *archives.Generator, engine *bake.Engine,
	baker *bake.PageBaker, history *records.History) *ArchivePipeline {
	return &ArchivePipeline{
		generator: generator,
		engine:    engine,
		baker:     baker,
		history:   history,
	}
}

// Initialize starts the writer queue. Must run before any job.
func (p *ArchivePipeline) Initialize() {
	p.baker.StartWriterQueue()
}

// Shutdown drains and stops the writer queue.
func (p *ArchivePipeline) Shutdown() {
	p.baker.StopWriterQueue()
}

// CreateJobs computes the dirty years from the current per-post records
// and returns one bake job per dirty year. A missing route registration
// is a fatal configuration error.
func (p *ArchivePipeline) CreateJobs() ([]Job, error) {
	if _, err := p.generator.Route(); err != nil {
		return nil, err
	}

	allYears, dirtyYears := ResolveDirtyYears(p.history.Current.Posts)
	p.allYears = allYears

	slog.Debug("Building blog archives", "source", p.generator.InnerSource().Name(),
		"dirty_years", len(dirtyYears), "all_years", len(allYears))

	years := make([]int, 0, len(dirtyYears))
	for year := range dirtyYears {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	jobs := make([]Job, 0, len(years))
	for _, year := range years {
		item, err := p.generator.FindContent(map[string]interface{}{"year": year})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve archive item for %d: %w", year, err)
		}
		jobs = append(jobs, Job{Item: item, Year: year})
	}

	return jobs, nil
}

// RunJobs bakes every job. Per-job failures are captured into that
// year's record entry and never abort sibling jobs.
func (p *ArchivePipeline) RunJobs(jobs []Job) {
	for _, job := range jobs {
		p.run(job)
	}
}

func (p *ArchivePipeline) run(job Job) {
	entry := &records.ArchiveEntry{Year: strconv.Itoa(job.Year)}
	p.mu.Lock()
	p.pending = append(p.pending, entry)
	p.mu.Unlock()

	page := &content.Post{
		Item:  job.Item,
		Title: entry.Year,
		Date:  time.Date(job.Year, time.January, 1, 0, 0, 0, 0, time.Local),
	}

	ctx := render.NewContext(page)
	if err := p.generator.PrepareRenderContext(ctx); err != nil {
		p.recordError(entry, err)
		return
	}

	it, ok := ctx.CustomData["archives"].(*content.PageIterator)
	if !ok {
		p.recordError(entry, fmt.Errorf("render context has no archives iterator"))
		return
	}
	posts, err := it.All()
	if err != nil {
		p.recordError(entry, err)
		return
	}

	data, err := p.engine.RenderYearArchive(job.Year, posts)
	if err != nil {
		p.recordError(entry, err)
		return
	}

	route, err := p.generator.Route()
	if err != nil {
		p.recordError(entry, err)
		return
	}
	outPath := route.Path(job.Year)

	err = p.baker.Enqueue(bake.WriteJob{
		Path: outPath,
		Data: data,
		Report: func(path string, err error) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if err != nil {
				entry.Errors = append(entry.Errors, err.Error())
				return
			}
			entry.OutPaths = append(entry.OutPaths, path)
		},
	})
	if err != nil {
		p.recordError(entry, err)
	}
}

// PostJobRun commits the per-job entries into the current record, then
// synthesizes pass-through entries for years that had a previous entry,
// got no fresh job this run, and still have posts, so the deletion
// sweep keeps their still-valid output. Years no post references anymore
// get no entry and their stale output is swept. The writer queue must be
// drained before this runs.
func (p *ArchivePipeline) PostJobRun() {
	p.mu.Lock()
	for _, entry := range p.pending {
		p.history.Current.Archives = append(p.history.Current.Archives, *entry)
	}
	p.pending = nil
	p.mu.Unlock()

	for _, diff := range p.history.ArchiveDiffs() {
		if diff.Previous == nil || diff.Current != nil {
			continue
		}

		year, err := strconv.Atoi(diff.Previous.Year)
		if err != nil {
			slog.Warn("Skipping malformed year in previous record", "year", diff.Previous.Year)
			continue
		}

		if !p.allYears[year] {
			slog.Debug("No page references year anymore", "year", year)
			continue
		}

		slog.Debug("Creating unbaked entry for year archive", "year", year)
		carried := records.ArchiveEntry{
			Year:     diff.Previous.Year,
			OutPaths: append([]string(nil), diff.Previous.OutPaths...),
			Errors:   append([]string(nil), diff.Previous.Errors...),
		}
		p.history.Current.Archives = append(p.history.Current.Archives, carried)
	}
}

func (p *ArchivePipeline) recordError(entry *records.ArchiveEntry, err error) {
	slog.Error("Archive bake failed", "year", entry.Year, "error", err)
	p.mu.Lock()
	defer p.mu.Unlock()
	entry.Errors = append(entry.Errors, err.Error())
}
