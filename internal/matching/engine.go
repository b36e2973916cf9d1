// Package matching groups freight documents (invoices, bills of lading,
// lumper receipts) onto the loads they belong to. It extracts normalized
// identifiers from parsed document data, scores pairwise similarity over
// identifier, address and temporal evidence, clusters documents with a
// seed-anchored greedy pass, and computes per-group confidence,
// completeness and mismatch diagnostics.
//
// The engine is a pure in-memory computation: it performs no I/O, reads
// only its input list and an immutable Config, and allocates fresh
// records per call, so independent grouping calls can run concurrently.
package matching

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/loaddocs/docmatch/internal/globaltime"
)

// Engine is the document matching engine. The zero value is not usable;
// construct with NewEngine.
type Engine struct {
	cfg    Config
	repo   GroupRepository
	logger zerolog.Logger
}

// NewEngine builds an engine around an immutable configuration. A nil
// repository falls back to the no-op repository.
func NewEngine(cfg Config, repo GroupRepository, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}
	if repo == nil {
		repo = NopGroupRepository{}
	}
	return &Engine{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
	}, nil
}

// Config returns the engine's configuration value.
func (e *Engine) Config() Config {
	return e.cfg
}

// ExtractDocumentIdentifiers normalizes a document's type-specific field
// map into a DocumentIdentifiers record. Missing or unparsable fields
// degrade to unset values; a document without a usable id or type is a
// caller contract violation and returns an error.
func (e *Engine) ExtractDocumentIdentifiers(doc Document) (*DocumentIdentifiers, error) {
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("malformed document: %w", err)
	}

	identifiers := newDocumentIdentifiers(doc, globaltime.UTC())

	if len(doc.ParsedData) == 0 {
		e.logger.Warn().
			Str("document_id", doc.ID.String()).
			Str("document_type", string(doc.Type)).
			Msg("document has no parsed data")
		return identifiers, nil
	}

	extract, ok := extractors[doc.Type]
	if !ok {
		e.logger.Info().
			Str("document_id", doc.ID.String()).
			Str("document_type", string(doc.Type)).
			Msg("document type is not matchable")
		return identifiers, nil
	}

	extract(doc.ParsedData, identifiers)
	return identifiers, nil
}

// MatchScore computes the symmetric [0,1] similarity between two
// identifier records.
func (e *Engine) MatchScore(a, b *DocumentIdentifiers) float64 {
	if a == nil || b == nil {
		return 0
	}
	return scoreMatch(e.cfg, a, b)
}

// GroupRelatedDocuments partitions documents into load groups. Every
// input document lands in exactly one returned group, in seed
// first-appearance order.
func (e *Engine) GroupRelatedDocuments(documents []Document) ([]*DocumentGroup, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	e.logger.Info().Int("documents", len(documents)).Msg("extracting identifiers for grouping")

	records := make([]*DocumentIdentifiers, 0, len(documents))
	for _, doc := range documents {
		identifiers, err := e.ExtractDocumentIdentifiers(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, identifiers)
	}

	now := globaltime.UTC()
	groups := clusterIdentifiers(e.cfg, records, now)
	for _, group := range groups {
		calculateGroupMetrics(e.cfg, group, now)
	}

	e.logger.Info().
		Int("documents", len(documents)).
		Int("groups", len(groups)).
		Msg("document grouping complete")
	return groups, nil
}

// SaveDocumentGroups hands finalized groups to the configured repository.
func (e *Engine) SaveDocumentGroups(ctx context.Context, groups []*DocumentGroup) error {
	if len(groups) == 0 {
		return nil
	}
	if err := e.repo.SaveGroups(ctx, groups); err != nil {
		return fmt.Errorf("save document groups: %w", err)
	}
	e.logger.Info().Int("groups", len(groups)).Msg("document groups saved")
	return nil
}
