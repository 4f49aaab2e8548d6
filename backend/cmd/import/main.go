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
	"mindmap-graph/backend/internal/importer"
	"mindmap-graph/backend/internal/indexer"
	"mindmap-graph/backend/internal/mindmap"
	"mindmap-graph/backend/pkg/config"
	"mindmap-graph/backend/pkg/logger"

	apperrors "mindmap-graph/backend/pkg/errors"
)

const usage = `Usage: import [flags] <path-to-mindmap.ts>

Loads the mind map declared in a TypeScript source file into Neo4j as
NavigationNode nodes joined by CONTAINS relationships.

Flags:`

type options struct {
	path           string
	marker         string
	dryRun         bool
	reset          bool
	skipSchema     bool
	skipEmbeddings bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stdout)

	var opts options
	fs.StringVar(&opts.marker, "marker", "", "declaration that precedes the mind map literal (default $MINDMAP_MARKER or \""+config.DefaultMarker+"\")")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "parse, load into memory and print the resulting graph without touching Neo4j")
	fs.BoolVar(&opts.reset, "reset", false, "delete all existing navigation nodes before importing")
	fs.BoolVar(&opts.skipSchema, "skip-schema", false, "do not create the constraint and indexes")
	fs.BoolVar(&opts.skipEmbeddings, "skip-embeddings", false, "do not generate embeddings after the import")
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
	if fs.NArg() == 0 {
		fs.Usage()
		return 0
	}
	opts.path = fs.Arg(0)

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

	if opts.marker == "" {
		opts.marker = cfg.DeclarationMarker
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, cfg, opts, stdout); err != nil {
		reportFailure(logger.Get(), opts.path, err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	log := logger.Get()

	// Parse before connecting so a bad source never touches the database
	parser := mindmap.NewParser(opts.marker)
	result, err := parser.ParseFile(opts.path)
	if err != nil {
		return err
	}

	if opts.dryRun {
		store := graph.NewMemoryStore()
		stats, err := importer.NewImporter(store, parser).Apply(ctx, result)
		if err != nil {
			return err
		}
		printGraph(stdout, store)
		fmt.Fprintf(stdout, "%d nodes, %d relationships (%s decode)\n", stats.Nodes, stats.Relationships, stats.Strategy)
		return nil
	}

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return apperrors.NewPersistenceFailed("connect", cfg.Neo4jURI, err)
	}
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	defer repo.Close(context.Background())

	if !opts.skipSchema {
		if err := repo.EnsureSchema(ctx); err != nil {
			return apperrors.NewPersistenceFailed("ensure schema", "NavigationNode", err)
		}
	}

	if opts.reset {
		deleted, err := repo.ResetNavigation(ctx)
		if err != nil {
			return apperrors.NewPersistenceFailed("reset", "NavigationNode", err)
		}
		log.Info("Cleared navigation graph", zap.Int64("deleted", deleted))
	}

	stats, err := importer.NewImporter(repo, parser).Apply(ctx, result)
	if err != nil {
		return err
	}

	nodes, err := repo.CountNodes(ctx)
	if err != nil {
		return apperrors.NewPersistenceFailed("count nodes", "NavigationNode", err)
	}
	edges, err := repo.CountEdges(ctx)
	if err != nil {
		return apperrors.NewPersistenceFailed("count relationships", "CONTAINS", err)
	}
	log.Info("Import complete",
		zap.String("run_id", stats.RunID),
		zap.String("strategy", string(stats.Strategy)),
		zap.Int("nodes_written", stats.Nodes),
		zap.Int("relationships_written", stats.Relationships),
		zap.Int64("nodes_total", nodes),
		zap.Int64("relationships_total", edges),
	)

	if opts.skipEmbeddings {
		return nil
	}
	return generateEmbeddings(ctx, cfg, repo)
}

// generateEmbeddings makes sure the vector index exists and embeds every node
func generateEmbeddings(ctx context.Context, cfg *config.Config, repo *graph.Repository) error {
	if err := repo.EnsureVectorIndex(ctx, cfg.VectorIndexName, cfg.EmbeddingDimensions); err != nil {
		return apperrors.NewPersistenceFailed("ensure vector index", cfg.VectorIndexName, err)
	}

	embedder := adapter.NewEmbeddingAdapter(cfg.LiteLLMURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	_, err := indexer.New(repo, embedder, indexer.Options{
		BatchSize:   cfg.EmbeddingBatchSize,
		Concurrency: cfg.EmbeddingConcurrency,
		Dimensions:  cfg.EmbeddingDimensions,
	}).Run(ctx)
	return err
}

// printGraph writes the nodes in first-write order, then each node's
// outgoing relationships
func printGraph(w io.Writer, store *graph.MemoryStore) {
	nodes := store.Nodes()
	for _, n := range nodes {
		fmt.Fprintf(w, "NODE %s title=%q url=%q properties=%s\n", n.ID, n.Title, n.URL, n.Properties)
	}
	for _, n := range nodes {
		for _, child := range store.Children(n.ID) {
			fmt.Fprintf(w, "EDGE %s -[%s]-> %s\n", n.ID, mindmap.EdgeContains, child)
		}
	}
}

// reportFailure logs one diagnostic line for the kind of err
func reportFailure(log *zap.Logger, path string, err error) {
	var (
		notFound   *apperrors.ErrSourceNotFound
		extraction *apperrors.ErrExtractionFailed
		persist    *apperrors.ErrPersistenceFailed
		embedding  *apperrors.ErrEmbeddingFailed
	)

	switch {
	case errors.As(err, &notFound):
		log.Error("Mind map declaration not found",
			zap.String("path", path),
			zap.String("stage", notFound.Stage),
			zap.String("marker", notFound.Marker),
		)
	case errors.As(err, &extraction):
		log.Error("Mind map could not be extracted",
			zap.String("path", path),
			zap.String("reason", extraction.Reason),
			zap.Error(err),
		)
	case errors.As(err, &persist):
		log.Error("Graph write failed",
			zap.String("path", path),
			zap.String("operation", persist.Operation),
			zap.String("entity", persist.EntityID),
			zap.Error(err),
		)
	case errors.As(err, &embedding):
		log.Error("Embedding generation failed",
			zap.String("model", embedding.Model),
			zap.Int("count", embedding.Count),
			zap.Error(err),
		)
	default:
		log.Error("Import failed", zap.String("path", path), zap.Error(err))
	}
}
