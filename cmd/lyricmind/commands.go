package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/lyricmind/api"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/ingestion"
	"github.com/poiesic/lyricmind/reembed"
	"github.com/poiesic/lyricmind/search"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	cfg := appConfig(c)
	if c.IsSet("data-dir") {
		cfg.Dataset.Dir = c.String("data-dir")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithDataDir(cfg.Dataset.Dir))
	if err != nil {
		return err
	}

	resp, err := pipeline.EmbedBulk(c.Context, ingestion.BulkRequest{FileName: c.String("file")})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printBulkResponse(c, resp)
	return nil
}

func ingestID3Command(c *cli.Context) error {
	db, err := openDatabase(appConfig(c))
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}

	resp, err := pipeline.EmbedID3Dir(c.Context, c.String("dir"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printBulkResponse(c, resp)
	return nil
}

func printBulkResponse(c *cli.Context, resp *ingestion.BulkResponse) {
	fmt.Fprintf(c.App.Writer, "Embedded %d songs, skipped %d rows\n", resp.Embedded, resp.Skipped)
	for _, failure := range resp.Failures {
		fmt.Fprintf(c.App.ErrWriter, "  %v\n", failure)
	}
}

func serveCommand(c *cli.Context) error {
	cfg := appConfig(c)
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("data-dir") {
		cfg.Dataset.Dir = c.String("data-dir")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithDataDir(cfg.Dataset.Dir))
	if err != nil {
		return err
	}
	searcher, err := db.NewSearcher(search.WithMinSimilarity(cfg.VectorStore.MinSimilarity))
	if err != nil {
		return err
	}

	server, err := api.New(pipeline, searcher)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, cfg.Server.Addr)
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	db, err := openDatabase(appConfig(c))
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []search.Option{search.WithMinSimilarity(float32(c.Float64("min-similarity")))}
	if genre := c.String("genre"); genre != "" {
		opts = append(opts, search.WithFilters(map[string]string{core.MetaGenre: genre}))
	}

	searcher, err := db.NewSearcher(opts...)
	if err != nil {
		return err
	}

	results, err := searcher.FindSimilar(c.Context, query, c.Int("limit"))
	if err != nil {
		return err
	}

	printResults(c, results)
	return nil
}

func printResults(c *cli.Context, results []*core.SearchResult) {
	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: %q by %s (%d, %s)(%d)[%0.3f]\n",
			i, hit.Song.Title, hit.Song.Artist, hit.Song.ReleaseYear, hit.Song.Genre, hit.Song.Id, hit.Score)
	}
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),

		SkipFailedBatches: c.Bool("skip-failed"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	cfg := appConfig(c)
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(c.App.ErrWriter)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	if _, err := db.NewReembedder(reembedConfig, c.App.ErrWriter).Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

