package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"petsc-chat-be/internal/config"
	"petsc-chat-be/pkg/database"
	"petsc-chat-be/pkg/embedding"
	"petsc-chat-be/pkg/ingest"
	"petsc-chat-be/pkg/vectorstore"
	memorystore "petsc-chat-be/pkg/vectorstore/memory"
	"petsc-chat-be/pkg/vectorstore/pgvector"
)

func main() {
	app := &cli.App{
		Name:  "indexer",
		Usage: "Build the documentation retrieval index consumed by the chat service",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Chunk, embed and store every document under the docs directory",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "docs",
						Aliases: []string{"d"},
						Usage:   "Directory of raw documentation (walked recursively)",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Index collection name",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Overlap between adjacent chunks in characters",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding workers (defaults to half the CPUs)",
					},
				},
			},
			{
				Name:   "count",
				Usage:  "Print the number of chunks currently in the index",
				Action: countCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openStore(cfg *config.Config) (vectorstore.Store, error) {
	if cfg.Index.Store == "pgvector" {
		db, err := database.NewGormDB(cfg.Database.Connection)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return pgvector.New(db)
	}
	return memorystore.Open(cfg.Index.Dir, cfg.Index.Collection)
}

func runCommand(c *cli.Context) error {
	cfg := config.Load()

	// Flags take precedence over the environment.
	if v := c.String("docs"); v != "" {
		cfg.Index.DocsDir = v
	}
	if v := c.String("collection"); v != "" {
		cfg.Index.Collection = v
	}
	if v := c.Int("chunk-size"); v > 0 {
		cfg.Index.ChunkSize = v
	}
	if v := c.Int("overlap"); v >= 0 && c.IsSet("overlap") {
		cfg.Index.ChunkOverlap = v
	}

	embedder, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingBaseURL,
		cfg.Ai.APIKey,
		cfg.Ai.EmbeddingModel,
	)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	opts := []ingest.Option{
		ingest.WithChunking(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap),
		ingest.WithLogger(log.New(os.Stderr, "indexer: ", log.LstdFlags)),
	}
	if v := c.Int("pool-size"); v > 0 {
		opts = append(opts, ingest.WithPoolSize(v))
	}
	pipeline := ingest.NewPipeline(store, embedder, opts...)

	color.Cyan("Indexing %s into collection %q", cfg.Index.DocsDir, cfg.Index.Collection)

	start := time.Now()
	stats, err := pipeline.Run(context.Background(), cfg.Index.DocsDir)
	if err != nil {
		color.Red("Indexing failed: %v", err)
		return err
	}

	color.Green("Indexed %d chunks from %d files in %s (%d files skipped)",
		stats.Chunks, stats.FilesLoaded, time.Since(start).Round(time.Millisecond), stats.FilesSkipped)
	return nil
}

func countCommand(c *cli.Context) error {
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	n, err := store.Count(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("%d chunks in collection %q\n", n, cfg.Index.Collection)
	return nil
}
