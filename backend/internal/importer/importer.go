package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap-graph/backend/internal/graph"
	"mindmap-graph/backend/internal/mindmap"
	"mindmap-graph/backend/pkg/logger"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// Store is the part of the graph store the importer writes to
type Store interface {
	UpsertNode(ctx context.Context, node graph.NavigationNode) error
	UpsertEdge(ctx context.Context, rel graph.Relationship) error
}

// Stats summarizes one import run
type Stats struct {
	RunID         string
	Strategy      mindmap.Strategy
	Nodes         int
	Relationships int
	Duration      time.Duration
}

// Importer loads mind maps into the navigation graph
type Importer struct {
	store  Store
	parser *mindmap.Parser
	logger *zap.Logger
}

// NewImporter creates an importer writing to store
func NewImporter(store Store, parser *mindmap.Parser) *Importer {
	return &Importer{
		store:  store,
		parser: parser,
		logger: logger.Get(),
	}
}

// ImportFile parses the mind map at path and replays it into the store
func (i *Importer) ImportFile(ctx context.Context, path string) (*Stats, error) {
	result, err := i.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return i.Apply(ctx, result)
}

// ImportText parses source text and replays it into the store
func (i *Importer) ImportText(ctx context.Context, text string) (*Stats, error) {
	result, err := i.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return i.Apply(ctx, result)
}

// Apply replays an already parsed mind map into the store
func (i *Importer) Apply(ctx context.Context, result *mindmap.Result) (*Stats, error) {
	stats, err := i.Replay(ctx, result.Mutations)
	if err != nil {
		return nil, err
	}
	stats.Strategy = result.Strategy
	return stats, nil
}

// Replay writes mutations to the store. All node upserts are applied before
// any edge upsert, each in record order, so every edge finds both endpoints.
// The first store error stops the run; writes already made stay in place and
// a re-run converges because every write is an upsert.
func (i *Importer) Replay(ctx context.Context, mutations []mindmap.Mutation) (*Stats, error) {
	start := time.Now()
	stats := &Stats{RunID: uuid.New().String()}
	log := i.logger.With(zap.String("run_id", stats.RunID))

	var edges []mindmap.EdgeUpsert
	for _, m := range mutations {
		switch rec := m.(type) {
		case mindmap.NodeUpsert:
			node, err := toNavigationNode(rec)
			if err != nil {
				return nil, apperrors.NewPersistenceFailed("encode properties", rec.ID, err)
			}
			if err := i.store.UpsertNode(ctx, node); err != nil {
				log.Error("Failed to upsert node", zap.String("node_id", rec.ID), zap.Error(err))
				return nil, apperrors.NewPersistenceFailed("upsert node", rec.ID, err)
			}
			stats.Nodes++
		case mindmap.EdgeUpsert:
			edges = append(edges, rec)
		default:
			return nil, fmt.Errorf("unknown mutation %T", m)
		}
	}

	for _, rec := range edges {
		rel := graph.Relationship{SourceID: rec.SourceID, TargetID: rec.TargetID, Type: string(rec.Kind)}
		if err := i.store.UpsertEdge(ctx, rel); err != nil {
			log.Error("Failed to upsert relationship",
				zap.String("source_id", rec.SourceID),
				zap.String("target_id", rec.TargetID),
				zap.Error(err),
			)
			return nil, apperrors.NewPersistenceFailed("upsert relationship", rec.SourceID+" -> "+rec.TargetID, err)
		}
		stats.Relationships++
	}

	stats.Duration = time.Since(start)
	log.Info("Imported mindmap",
		zap.Int("nodes", stats.Nodes),
		zap.Int("relationships", stats.Relationships),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

func toNavigationNode(rec mindmap.NodeUpsert) (graph.NavigationNode, error) {
	props := rec.Properties
	if props == nil {
		props = map[string]any{}
	}
	blob, err := json.Marshal(props)
	if err != nil {
		return graph.NavigationNode{}, err
	}
	return graph.NavigationNode{
		ID:         rec.ID,
		Title:      rec.Title,
		URL:        rec.URL,
		Properties: string(blob),
	}, nil
}
