// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/lyricmind"
	"github.com/poiesic/lyricmind/config"
	"github.com/poiesic/lyricmind/vectorstore"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lyricmind",
		Usage: "Song lyric ingestion and semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML config file",
				Value:   config.DefaultPath,
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadConfig(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Embed every song in a CSV file from the data directory",
				Action:    ingestCommand,
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "CSV file name, relative to the data directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "Directory CSV file names are resolved against",
					},
				},
			},
			{
				Name:   "ingest-id3",
				Usage:  "Embed the songs tagged in the MP3 files under a directory",
				Action: ingestID3Command,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory to scan for .mp3 files",
						Required: true,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Address to listen on",
					},
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "Directory bulk file names are resolved against",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Find songs similar to a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of hits",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Only return songs of this genre",
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum similarity of a hit (0-1)",
						Value: 0.6,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Seed the database with songs built from lines of text",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "src",
						Usage: "File of seed lines (built-in verses if empty)",
					},
					&cli.IntFlag{
						Name:  "lines-per-song",
						Usage: "Number of lines that make up one song",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of songs to embed in each batch",
						Value: 5,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all songs with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of songs to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N songs",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "skip-failed",
						Usage: "Skip batches that still fail after all retries",
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "text":
		handler = slog.NewTextHandler(c.App.ErrWriter, opts)
	case "json":
		handler = slog.NewJSONHandler(c.App.ErrWriter, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.String("log-format"))
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads the config file and environment, applies global flag
// overrides and stores the result in the app metadata.
func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return err
	}

	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func appConfig(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// openDatabase opens the configured database with an OpenAI-compatible embedder.
func openDatabase(cfg config.Config, opts ...lyricmind.DatabaseOption) (*lyricmind.Database, error) {
	aiConfig := cfg.AI()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append([]lyricmind.DatabaseOption{
		lyricmind.WithAIConfig(aiConfig),
		lyricmind.WithVectorStoreOptions(
			vectorstore.WithBatchSize(cfg.VectorStore.BatchSize),
			vectorstore.WithPoolSize(cfg.VectorStore.PoolSize),
			vectorstore.WithMaxTokens(cfg.VectorStore.MaxTokens),
			vectorstore.WithMinSimilarity(cfg.VectorStore.MinSimilarity),
		),
	}, opts...)

	db, err := lyricmind.NewDatabase(cfg.Database.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
