package bake

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pagekiln/page-kiln/app/content"
)

// WriteJob is one pending output write. Report, if set, is called with
// the written path and the write outcome once the job completes.
type WriteJob struct {
	Path   string // Relative to the output directory
	Data   []byte
	Report func(path string, err error)
}

// PageBaker owns the writer queue: bake jobs render synchronously, then
// hand the output bytes to a pool of writer workers. The queue must be
// started before any enqueue and flushed before build records are
// reconciled, so every write is durable first.
type PageBaker struct {
	outDir  string
	workers int
	force   bool

	queue   chan WriteJob
	wg      sync.WaitGroup // writer workers
	pending sync.WaitGroup // outstanding jobs
	started bool
	mu      sync.Mutex
}

func NewPageBaker(outDir string, workers int, force bool) *PageBaker {
	if workers < 1 {
		workers = 1
	}
	return &PageBaker{
		outDir:  outDir,
		workers: workers,
		force:   force,
	}
}

func (b *PageBaker) OutDir() string {
	return b.outDir
}

// Force reports whether every page should be rebaked regardless of build
// records.
func (b *PageBaker) Force() bool {
	return b.force
}

// StartWriterQueue spawns the writer workers.
func (b *PageBaker) StartWriterQueue() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return
	}

	b.queue = make(chan WriteJob, 300)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}
	b.started = true
}

// Enqueue submits a write job. The queue must have been started.
func (b *PageBaker) Enqueue(job WriteJob) error {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return fmt.Errorf("writer queue not started")
	}

	b.pending.Add(1)
	b.queue <- job
	return nil
}

// Flush blocks until every enqueued write has completed.
func (b *PageBaker) Flush() {
	b.pending.Wait()
}

// StopWriterQueue drains the queue and stops the workers.
func (b *PageBaker) StopWriterQueue() {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return
	}
	b.started = false
	b.mu.Unlock()

	b.pending.Wait()
	close(b.queue)
	b.wg.Wait()
}

func (b *PageBaker) worker(id int) {
	defer b.wg.Done()

	for job := range b.queue {
		err := b.write(job)
		if err != nil {
			slog.Error("Writer worker failed", "worker_id", id, "path", job.Path, "error", err)
		} else {
			slog.Debug("Baked", "worker_id", id, "path", job.Path)
		}
		if job.Report != nil {
			job.Report(job.Path, err)
		}
		b.pending.Done()
	}
}

func (b *PageBaker) write(job WriteJob) error {
	target := filepath.Join(b.outDir, filepath.FromSlash(job.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, job.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SweepDeleted removes output files that the previous build produced and
// the current one no longer does.
func (b *PageBaker) SweepDeleted(previousPaths, currentPaths []string) {
	current := make(map[string]bool, len(currentPaths))
	for _, path := range currentPaths {
		current[path] = true
	}

	for _, path := range previousPaths {
		if current[path] {
			continue
		}
		target := filepath.Join(b.outDir, filepath.FromSlash(path))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove stale output", "path", path, "error", err)
			continue
		}
		slog.Info("Removed stale output", "path", path)
	}
}

// PostOutPath is the output path a post page bakes to.
func PostOutPath(post *content.Post) string {
	slug := strings.TrimSuffix(post.Item.Spec, filepath.Ext(post.Item.Spec))
	return "posts/" + slug + ".html"
}
