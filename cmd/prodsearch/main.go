// Copyright 2025 Zava Labs
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/zavalabs/prodsearch"
	"github.com/zavalabs/prodsearch/index"
	"github.com/zavalabs/prodsearch/rag"
	"github.com/zavalabs/prodsearch/render"
	"github.com/zavalabs/prodsearch/search"
)

func main() {
	app := &cli.App{
		Name:  "prodsearch",
		Usage: "Product catalog search with keyword, vector, hybrid, and semantic modes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Load a JSON catalog file, embed products, and store them",
				ArgsUsage: "<catalog.json>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of products stored per upload batch",
					},
					&cli.IntFlag{
						Name:  "embed-batch-size",
						Usage: "Number of texts sent per embedding call",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size for concurrent embedding calls",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for every product in the catalog",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of products to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N products",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the product catalog",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (keyword, vector, hybrid, semantic)",
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"t"},
						Usage:   "Maximum number of results",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict results to a category",
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Similarity floor for vector retrieval",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about the product catalog",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"t"},
						Usage:   "Number of products retrieved to ground the answer",
						Value:   rag.DefaultTopK,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show catalog statistics",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to the catalog store directory (overrides config)",
	}
}

// loadConfig loads the app config and applies command-line overrides.
func loadConfig(c *cli.Context) (*prodsearch.AppConfig, error) {
	var cfg *prodsearch.AppConfig
	var err error

	if path := c.String("config"); path != "" {
		cfg, err = prodsearch.LoadConfig(path)
	} else {
		cfg, _, err = prodsearch.LoadDefaultConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if c.IsSet("db") {
		cfg.StorePath = c.String("db")
	}
	return cfg, nil
}

// openCatalog opens the catalog named by config and flags.
func openCatalog(c *cli.Context) (*prodsearch.Catalog, *prodsearch.AppConfig, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	catalog, err := prodsearch.OpenCatalog(cfg.StorePath, prodsearch.WithAIConfig(aiConfig))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog store: %w", err)
	}
	return catalog, cfg, nil
}

func indexCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a single catalog file argument")
	}
	catalogFile := c.Args().First()

	products, err := index.LoadCatalogFile(catalogFile)
	if err != nil {
		return err
	}

	catalog, cfg, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	batchSize := cfg.Index.BatchSize
	if c.IsSet("batch-size") {
		batchSize = c.Int("batch-size")
	}
	embedBatchSize := cfg.Index.EmbedBatchSize
	if c.IsSet("embed-batch-size") {
		embedBatchSize = c.Int("embed-batch-size")
	}

	opts := []index.Option{
		index.WithBatchSize(batchSize),
		index.WithEmbedBatchSize(embedBatchSize),
		index.WithProgress(os.Stderr),
	}
	if c.IsSet("workers") {
		opts = append(opts, index.WithPoolSize(c.Int("workers")))
	} else if cfg.Index.Workers > 0 {
		opts = append(opts, index.WithPoolSize(cfg.Index.Workers))
	}

	pipeline, err := catalog.NewIndexPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create index pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Catalog file: %s (%d products)\n", catalogFile, len(products))
	fmt.Fprintf(os.Stderr, "Store: %s\n\n", cfg.StorePath)

	stored, err := pipeline.IndexProducts(context.Background(), products)
	if err != nil {
		return fmt.Errorf("indexing failed after %d products: %w", stored, err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d products\n", stored)
	return nil
}

func reembedCommand(c *cli.Context) error {
	catalog, cfg, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	reembedConfig := &index.ReembedConfig{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
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

	reembedder, err := catalog.NewReembedder(reembedConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Store: %s\n", cfg.StorePath)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", cfg.AI.EmbeddingModel)

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a search query")
	}
	queryText := strings.Join(c.Args().Slice(), " ")

	catalog, cfg, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	modeStr := cfg.Search.Mode
	if c.IsSet("mode") {
		modeStr = c.String("mode")
	}
	mode, err := search.ParseMode(modeStr)
	if err != nil {
		return err
	}

	maxHits := cfg.Search.MaxHits
	if c.IsSet("top") {
		maxHits = c.Int("top")
	}
	minSimilarity := cfg.Search.MinSimilarity
	if c.IsSet("min-similarity") {
		minSimilarity = float32(c.Float64("min-similarity"))
	}

	searcher, err := catalog.NewSearcher(search.WithMinSimilarity(minSimilarity))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(context.Background(), search.Query{
		Text:     queryText,
		Mode:     mode,
		MaxHits:  maxHits,
		Category: c.String("category"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	title := fmt.Sprintf("%s search: %q", strings.ToUpper(string(mode)[:1])+string(mode)[1:], queryText)
	fmt.Print(render.ProductTable(results, render.TableOptions{
		Title:        title,
		ShowReranker: mode == search.ModeSemantic,
	}))
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a question")
	}
	question := strings.Join(c.Args().Slice(), " ")

	catalog, _, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	answerer, err := catalog.NewAnswerer(rag.WithTopK(c.Int("top")))
	if err != nil {
		return fmt.Errorf("failed to create answerer: %w", err)
	}

	answer, err := answerer.Ask(context.Background(), question)
	if err != nil {
		return fmt.Errorf("question answering failed: %w", err)
	}

	fmt.Println(answer.Text)
	fmt.Println()
	fmt.Print(render.ProductTable(answer.Sources, render.TableOptions{
		Title:        "Sources",
		ShowReranker: true,
	}))
	return nil
}

func statsCommand(c *cli.Context) error {
	catalog, cfg, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	ctx := context.Background()
	repo := catalog.ProductRepository()

	total, err := repo.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	counts, err := repo.GetCategoryCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load category counts: %w", err)
	}

	fmt.Printf("Store: %s\n", cfg.StorePath)
	fmt.Printf("Products: %d\n", total)
	fmt.Printf("Categories: %d\n\n", len(counts))
	if len(counts) > 0 {
		fmt.Print(render.CategoryTable(counts))
	}
	return nil
}

func setup(c *cli.Context) error {
	// Load .env if present; missing files are fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "err", err)
	}

	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
