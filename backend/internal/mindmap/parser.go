package mindmap

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mindmap-graph/backend/pkg/logger"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// Strategy records which decoder produced a tree
type Strategy string

const (
	StrategyStrict   Strategy = "strict"
	StrategyFallback Strategy = "fallback"
)

// Result is the outcome of parsing one source document
type Result struct {
	Document  *Document
	Mutations []Mutation
	Strategy  Strategy
	// DecodeErr holds the strict decode failure when the fallback was used
	DecodeErr *apperrors.ErrDecodeFailed
}

// Parser turns mind map source text into graph mutations
type Parser struct {
	marker string
	logger *zap.Logger
}

// NewParser creates a parser looking for the given declaration marker
func NewParser(marker string) *Parser {
	return &Parser{
		marker: marker,
		logger: logger.Get(),
	}
}

// ParseFile reads path and parses its contents
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mind map file: %w", err)
	}
	return p.Parse(string(data))
}

// Parse locates the mind map literal in text, decodes it (strictly, then by
// pattern extraction if that fails) and flattens it.
func (p *Parser) Parse(text string) (*Result, error) {
	span, err := Locate(text, p.marker)
	if err != nil {
		return nil, err
	}

	result := &Result{Strategy: StrategyStrict}

	doc, err := DecodeStrict(Normalize(span.Literal))
	if err != nil {
		var decodeErr *apperrors.ErrDecodeFailed
		if !errors.As(err, &decodeErr) {
			return nil, err
		}
		p.logger.Warn("Strict decode failed, falling back to pattern extraction",
			zap.Error(decodeErr.Err),
			zap.Int64("offset", decodeErr.Offset),
			zap.String("excerpt", decodeErr.Excerpt),
		)

		doc, err = ExtractFallback(span.Source)
		if err != nil {
			return nil, err
		}
		result.Strategy = StrategyFallback
		result.DecodeErr = decodeErr
	}

	mutations, err := Flatten(doc.Root)
	if err != nil {
		return nil, err
	}

	result.Document = doc
	result.Mutations = mutations

	nodes, edges := Count(mutations)
	p.logger.Debug("Mind map parsed",
		zap.String("strategy", string(result.Strategy)),
		zap.Int("nodes", nodes),
		zap.Int("relationships", edges),
	)
	return result, nil
}
