package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Searcher runs a structured query against an index and returns its hits
// in index order
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Hit, error)
}

// DefaultParallelism bounds the field queries a general search runs at once
const DefaultParallelism = 4

// SearchLayer turns searcher hits into search results merged per artifact
// coordinate. It keeps no per-call state and is safe for concurrent use.
type SearchLayer struct {
	searcher    Searcher
	parallelism int
}

// NewSearchLayer creates a search layer on top of searcher. A parallelism
// below one uses DefaultParallelism.
func NewSearchLayer(searcher Searcher, parallelism int) *SearchLayer {
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}
	return &SearchLayer{searcher: searcher, parallelism: parallelism}
}

// SearchGeneral searches keyword in every field of Fields and merges the
// matches into one result per coordinate. Only the parts of each field that
// match the keyword are kept.
func (l *SearchLayer) SearchGeneral(ctx context.Context, keyword string) ([]SearchResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return []SearchResult{}, nil
	}

	perField := make([][]SearchResult, len(Fields))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, field := range Fields {
		g.Go(func() error {
			results, err := l.SearchAdvanced(gctx, SinglePhraseQuery{Field: field, Value: keyword})
			if err != nil {
				return err
			}
			perField[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var acc accumulator
	for _, results := range perField {
		for _, result := range results {
			for _, field := range result.FieldNames() {
				acc.mergeMatch(result, field, keyword)
			}
		}
	}

	log.Debug().Str("keyword", keyword).Int("results", len(acc.results)).Msg("general search completed")
	return acc.list(), nil
}

// SearchAdvanced runs q and converts the hits into results. Artifact hits
// contribute their artifact fields unfiltered, model hits contribute one
// merge per field of ModelFields. Metadata hits produce no result.
func (l *SearchLayer) SearchAdvanced(ctx context.Context, q Query) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits, err := l.searcher.Search(ctx, q)
	if err != nil {
		return nil, backendError(q, err)
	}

	var acc accumulator
	for i, hit := range hits {
		switch hit.Kind {
		case HitArtifact:
			if hit.Artifact == nil {
				return nil, fmt.Errorf("%w: artifact hit %d has no record", ErrMalformedHit, i)
			}
			acc.mergeArtifact(hit.Artifact)
		case HitModel:
			if hit.Model == nil {
				return nil, fmt.Errorf("%w: model hit %d has no model", ErrMalformedHit, i)
			}
			for _, field := range ModelFields {
				acc.mergeModel(hit.Model, field)
			}
		case HitMetadata:
			// metadata records have no result form
			if hit.Metadata != nil {
				log.Debug().
					Str("group_id", hit.Metadata.GroupID).
					Str("artifact_id", hit.Metadata.ArtifactID).
					Msg("skipping metadata hit")
			}
		default:
			return nil, fmt.Errorf("%w: hit %d has unknown kind %d", ErrMalformedHit, i, hit.Kind)
		}
	}
	return acc.list(), nil
}
