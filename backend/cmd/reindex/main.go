package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mindmap-graph/backend/internal/adapter"
	"mindmap-graph/backend/internal/graph"
	"mindmap-graph/backend/internal/indexer"
	"mindmap-graph/backend/pkg/config"
	"mindmap-graph/backend/pkg/logger"

	apperrors "mindmap-graph/backend/pkg/errors"
)

const usage = `Usage: reindex [flags]

Creates the navigation vector index if it is missing and regenerates
embeddings for NavigationNode nodes.

Flags:`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("reindex", flag.ContinueOnError)
	fs.SetOutput(stdout)

	onlyMissing := fs.Bool("only-missing", false, "embed only nodes without an embedding")
	query := fs.String("query", "", "after indexing, print the nodes most similar to this text")
	limit := fs.Int("k", 5, "number of results for -query")
	fs.Usage = func() {
		fmt.Fprintln(stdout, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Error("Failed to load configuration", zap.Error(err))
		return 1
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	log := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Error("Failed to connect to Neo4j", zap.String("uri", cfg.Neo4jURI), zap.Error(err))
		return 1
	}
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	defer repo.Close(context.Background())

	if err := repo.EnsureVectorIndex(ctx, cfg.VectorIndexName, cfg.EmbeddingDimensions); err != nil {
		log.Error("Failed to ensure vector index", zap.String("index", cfg.VectorIndexName), zap.Error(err))
		return 1
	}

	embedder := adapter.NewEmbeddingAdapter(cfg.LiteLLMURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	result, err := indexer.New(repo, embedder, indexer.Options{
		BatchSize:   cfg.EmbeddingBatchSize,
		Concurrency: cfg.EmbeddingConcurrency,
		Dimensions:  cfg.EmbeddingDimensions,
		OnlyMissing: *onlyMissing,
	}).Run(ctx)
	if err != nil {
		log.Error("Embedding generation failed", zap.Error(err))
		return 1
	}

	fmt.Fprintf(stdout, "embedded %d of %d nodes in %d batches\n", result.Embedded, result.Candidates, result.Batches)

	if *query == "" {
		return 0
	}
	results, err := search(ctx, embedder, repo, cfg.VectorIndexName, *query, *limit)
	if err != nil {
		log.Error("Similarity search failed", zap.String("query", *query), zap.Error(err))
		return 1
	}
	printResults(stdout, results)
	return 0
}

type searcher interface {
	SearchSimilar(ctx context.Context, index string, vector []float32, limit int) ([]graph.SearchResult, error)
}

// search embeds query and looks up its nearest navigation nodes
func search(ctx context.Context, embedder indexer.Embedder, store searcher, index, query string, limit int) ([]graph.SearchResult, error) {
	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, apperrors.NewEmbeddingFailed(embedder.Model(), 1, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query vector, got %d", len(vectors))
	}
	return store.SearchSimilar(ctx, index, vectors[0], limit)
}

func printResults(w io.Writer, results []graph.SearchResult) {
	for i, r := range results {
		fmt.Fprintf(w, "%d. %.4f %s %q %s\n", i+1, r.Score, r.ID, r.Title, r.URL)
	}
}
