package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pagekiln/page-kiln/app/bake"
	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/records"
)

// PostsPipeline bakes individual post pages. Each post's content hash is
// compared against the previous build record; only changed posts are
// rebaked, and the resulting per-post entries carry the sub-baked flag
// the archive pipeline's dirty-year computation consumes.
type PostsPipeline struct {
	source content.Source
	loader content.PageLoader
	engine *bake.Engine
	baker  *bake.PageBaker
}

func NewPostsPipeline(source content.Source, loader content.PageLoader,
	engine *bake.Engine, baker *bake.PageBaker) *PostsPipeline {
	return &PostsPipeline{
		source: source,
		loader: loader,
		engine: engine,
		baker:  baker,
	}
}

func (p *PostsPipeline) Run(history *records.History) error {
	items, err := p.source.GetAllContents()
	if err != nil {
		return fmt.Errorf("failed to enumerate source %s: %w", p.source.Name(), err)
	}

	rebaked := 0
	for _, item := range items {
		post, err := p.loader.LoadPage(item)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", item.Spec, err)
		}

		hash := contentHash(post)
		prev := history.Previous.FindPost(item.Spec)
		subBaked := p.baker.Force() || prev == nil || prev.ContentHash != hash

		outPath := bake.PostOutPath(post)
		post.OutPath = outPath

		if subBaked {
			data, err := p.engine.RenderPost(post)
			if err != nil {
				slog.Error("Failed to render post", "spec", item.Spec, "error", err)
			} else if err := p.baker.Enqueue(bake.WriteJob{Path: outPath, Data: data}); err != nil {
				return fmt.Errorf("failed to enqueue post bake: %w", err)
			}
			rebaked++
		}

		history.Current.Posts = append(history.Current.Posts, records.PostEntry{
			Spec:        item.Spec,
			Timestamp:   post.Date,
			ContentHash: hash,
			SubBaked:    subBaked,
			OutPath:     outPath,
		})
	}

	slog.Info("Posts pipeline finished", "total", len(items), "rebaked", rebaked)

	return nil
}

// contentHash covers everything that affects a post's rendered page:
// title, date, body, and the full front-matter configuration.
func contentHash(post *content.Post) string {
	h := sha256.New()

	fmt.Fprintln(h, post.Title)
	fmt.Fprintln(h, post.Date.UTC().Format(time.RFC3339))
	fmt.Fprintln(h, post.Body)

	keys := make([]string, 0, len(post.Config))
	for key := range post.Config {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(h, "%s=%v\n", key, post.Config[key])
	}

	return hex.EncodeToString(h.Sum(nil))
}
