package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagekiln/page-kiln/app/api"
	"github.com/pagekiln/page-kiln/app/archives"
	"github.com/pagekiln/page-kiln/app/bake"
	"github.com/pagekiln/page-kiln/app/blog"
	"github.com/pagekiln/page-kiln/app/cfg"
	"github.com/pagekiln/page-kiln/app/content"
	"github.com/pagekiln/page-kiln/app/pipeline"
	"github.com/pagekiln/page-kiln/app/records"
	"github.com/pagekiln/page-kiln/app/site"
	"github.com/pagekiln/page-kiln/app/syndication"
)

const archiveRoutePattern = "archives/%04d.html"

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Page Kiln", "version", appCfg.Version)

	db, err := records.NewConnection(appCfg.RecordsDB)
	if err != nil {
		slog.Error("Failed to open records database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := records.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Records database ready", "schema_version", version, "dirty", dirty)

	siteCfg, err := site.Load(appCfg.SiteConfig)
	if err != nil {
		slog.Error("Failed to load site configuration", "path", appCfg.SiteConfig, "error", err)
		os.Exit(1)
	}
	if appCfg.BaseUrl != "" {
		siteCfg.BaseURL = appCfg.BaseUrl
	}
	if siteCfg.BaseURL == "" {
		siteCfg.BaseURL = "http://localhost:" + appCfg.Port
	}

	repo := records.NewBuildRepository(db)

	if err := runBake(appCfg, siteCfg, repo); err != nil {
		slog.Error("Bake failed", "error", err)
		os.Exit(1)
	}

	if !appCfg.Serve {
		return
	}

	serve(appCfg, siteCfg, repo)
}

// runBake executes one full build: posts, dirty year archives, the index
// page and the feed, followed by record reconciliation, the deletion
// sweep and record persistence.
func runBake(appCfg *cfg.Cfg, siteCfg *site.Config, repo records.Repository) error {
	started := time.Now()

	source := content.NewFilesystemSource("posts", appCfg.ContentDir)

	engine, err := bake.NewEngine(siteCfg, appCfg.TemplatesDir)
	if err != nil {
		return fmt.Errorf("failed to initialize render engine: %w", err)
	}

	previous, err := repo.LoadLatest()
	if err != nil {
		return fmt.Errorf("failed to load previous build record: %w", err)
	}
	history := records.NewHistory(previous, appCfg.Version)

	baker := bake.NewPageBaker(appCfg.OutputDir, appCfg.WorkerCount, appCfg.Force)

	generator := archives.NewGenerator("blog_archives", source, source)
	generator.RegisterRoute(&archives.Route{Pattern: archiveRoutePattern})

	archivePipe := pipeline.NewArchivePipeline(generator, engine, baker, history)
	archivePipe.Initialize()
	defer archivePipe.Shutdown()

	postsPipe := pipeline.NewPostsPipeline(source, source, engine, baker)
	if err := postsPipe.Run(history); err != nil {
		return fmt.Errorf("posts pipeline failed: %w", err)
	}

	jobs, err := archivePipe.CreateJobs()
	if err != nil {
		return fmt.Errorf("failed to create archive jobs: %w", err)
	}
	archivePipe.RunJobs(jobs)

	if err := bakeIndex(siteCfg, source, engine, baker, history); err != nil {
		return fmt.Errorf("failed to bake index page: %w", err)
	}
	if err := bakeFeed(appCfg, siteCfg, source, baker, history); err != nil {
		return fmt.Errorf("failed to bake feed: %w", err)
	}

	baker.Flush()
	archivePipe.PostJobRun()

	baker.SweepDeleted(history.Previous.AllOutPaths(), history.Current.AllOutPaths())

	if err := repo.Save(history.Current); err != nil {
		return fmt.Errorf("failed to save build record: %w", err)
	}

	slog.Info("Bake finished",
		"posts", len(history.Current.Posts),
		"archives", len(history.Current.Archives),
		"elapsed", time.Since(started).Round(time.Millisecond))

	return nil
}

func bakeIndex(siteCfg *site.Config, source *content.FilesystemSource,
	engine *bake.Engine, baker *bake.PageBaker, history *records.History) error {
	taxonomies := make([]blog.Taxonomy, 0, len(siteCfg.Taxonomies))
	names := siteCfg.TaxonomyNames()
	for _, name := range names {
		taxCfg := siteCfg.Taxonomies[name]
		taxonomies = append(taxonomies, blog.Taxonomy{
			Name:     name,
			Setting:  taxCfg.Setting,
			Multiple: taxCfg.Multiple,
		})
	}

	view := blog.NewDataView(source, source, taxonomies, nil)
	data, err := engine.RenderIndex(view, names)
	if err != nil {
		return err
	}

	history.Current.Archives = append(history.Current.Archives, records.ArchiveEntry{
		Year:     "index",
		OutPaths: []string{"index.html"},
	})
	return baker.Enqueue(bake.WriteJob{Path: "index.html", Data: data})
}

func bakeFeed(appCfg *cfg.Cfg, siteCfg *site.Config, source *content.FilesystemSource,
	baker *bake.PageBaker, history *records.History) error {
	items, err := source.GetAllContents()
	if err != nil {
		return err
	}

	posts := make([]*content.Post, 0, len(items))
	for _, item := range items {
		post, err := source.LoadPage(item)
		if err != nil {
			return err
		}
		posts = append(posts, post)
	}

	feed, err := syndication.NewGenerator(siteCfg, appCfg.Version).Run(posts)
	if err != nil {
		return err
	}

	history.Current.Archives = append(history.Current.Archives, records.ArchiveEntry{
		Year:     "feed",
		OutPaths: []string{syndication.FeedPath},
	})
	return baker.Enqueue(bake.WriteJob{Path: syndication.FeedPath, Data: []byte(feed)})
}

func serve(appCfg *cfg.Cfg, siteCfg *site.Config, repo records.Repository) {
	handler := api.NewHandler(repo, siteCfg, appCfg.OutputDir, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server started", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
