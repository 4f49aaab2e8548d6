package indexer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mindmap-graph/backend/internal/graph"
	"mindmap-graph/backend/pkg/logger"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// NodeSource reads navigation nodes and stores their vectors
type NodeSource interface {
	ListEmbeddingCandidates(ctx context.Context, onlyMissing bool) ([]graph.EmbeddingCandidate, error)
	SetNodeEmbeddings(ctx context.Context, embeddings []graph.NodeEmbedding) error
}

// Embedder turns texts into vectors, one per text in input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Options tune an indexing run
type Options struct {
	BatchSize   int
	Concurrency int
	// Dimensions, when positive, is the vector length every embedding must have
	Dimensions int
	// OnlyMissing skips nodes that already carry an embedding
	OnlyMissing bool
}

// Result summarizes one indexing run
type Result struct {
	Candidates int
	Embedded   int
	Batches    int
	Duration   time.Duration
}

// Indexer generates embeddings for navigation nodes
type Indexer struct {
	source   NodeSource
	embedder Embedder
	opts     Options
	logger   *zap.Logger
}

// New creates an indexer. Non-positive batch size or concurrency fall back to 1.
func New(source NodeSource, embedder Embedder, opts Options) *Indexer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Indexer{
		source:   source,
		embedder: embedder,
		opts:     opts,
		logger:   logger.Get(),
	}
}

// Run embeds "<title> <url>" for every candidate node and writes the vectors
// back, one store write per batch. Batches run concurrently up to
// Options.Concurrency; the first failure cancels the rest. Batches already
// written are kept.
func (ix *Indexer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	candidates, err := ix.source.ListEmbeddingCandidates(ctx, ix.opts.OnlyMissing)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedding candidates: %w", err)
	}

	batches := split(candidates, ix.opts.BatchSize)
	result := &Result{Candidates: len(candidates), Batches: len(batches)}
	if len(candidates) == 0 {
		ix.logger.Info("No navigation nodes to embed")
		return result, nil
	}

	var embedded int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Concurrency)

	for n, batch := range batches {
		n, batch := n, batch
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := ix.embedBatch(gctx, batch); err != nil {
				ix.logger.Error("Failed to embed batch",
					zap.Int("batch", n),
					zap.Int("size", len(batch)),
					zap.Error(err),
				)
				return err
			}
			atomic.AddInt64(&embedded, int64(len(batch)))
			return nil
		})
	}

	err = g.Wait()
	result.Embedded = int(atomic.LoadInt64(&embedded))
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	ix.logger.Info("Generated embeddings",
		zap.String("model", ix.embedder.Model()),
		zap.Int("nodes", result.Embedded),
		zap.Int("batches", result.Batches),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (ix *Indexer) embedBatch(ctx context.Context, batch []graph.EmbeddingCandidate) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text()
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return apperrors.NewEmbeddingFailed(ix.embedder.Model(), len(texts), err)
	}
	if len(vectors) != len(batch) {
		return apperrors.NewEmbeddingFailed(ix.embedder.Model(), len(texts),
			fmt.Errorf("got %d vectors for %d texts", len(vectors), len(batch)))
	}

	embeddings := make([]graph.NodeEmbedding, len(batch))
	for i, c := range batch {
		if ix.opts.Dimensions > 0 && len(vectors[i]) != ix.opts.Dimensions {
			return apperrors.NewEmbeddingFailed(ix.embedder.Model(), len(texts),
				fmt.Errorf("vector for %q has %d dimensions, want %d", c.ID, len(vectors[i]), ix.opts.Dimensions))
		}
		embeddings[i] = graph.NodeEmbedding{ID: c.ID, Vector: vectors[i]}
	}

	if err := ix.source.SetNodeEmbeddings(ctx, embeddings); err != nil {
		return apperrors.NewPersistenceFailed("set embeddings", batch[0].ID, err)
	}
	return nil
}

func split(candidates []graph.EmbeddingCandidate, size int) [][]graph.EmbeddingCandidate {
	var batches [][]graph.EmbeddingCandidate
	for start := 0; start < len(candidates); start += size {
		end := min(start+size, len(candidates))
		batches = append(batches, candidates[start:end])
	}
	return batches
}
