package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/pkg/types"
)

// DefaultMaxHits caps the hits returned for one query
const DefaultMaxHits = 1000

// RepositoryIndex is the bleve index of one repository. It implements
// Searcher and is safe for concurrent use.
type RepositoryIndex struct {
	repoID  string
	maxHits int

	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

// OpenIndex opens the index at path, creating it when it does not exist
func OpenIndex(path, repoID string, maxHits int) (*RepositoryIndex, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		indexMapping, mapErr := CreateIndexMapping()
		if mapErr != nil {
			return nil, mapErr
		}
		idx, err = bleve.New(path, indexMapping)
		if err == nil {
			log.Info().Str("repository", repoID).Str("path", path).Msg("created repository index")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	return newRepositoryIndex(idx, repoID, maxHits), nil
}

// NewMemIndex creates an index that lives in memory only
func NewMemIndex(repoID string, maxHits int) (*RepositoryIndex, error) {
	indexMapping, err := CreateIndexMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory index: %w", err)
	}
	return newRepositoryIndex(idx, repoID, maxHits), nil
}

func newRepositoryIndex(idx bleve.Index, repoID string, maxHits int) *RepositoryIndex {
	if maxHits < 1 {
		maxHits = DefaultMaxHits
	}
	return &RepositoryIndex{repoID: repoID, maxHits: maxHits, index: idx}
}

// RepositoryID returns the id of the indexed repository
func (x *RepositoryIndex) RepositoryID() string { return x.repoID }

func (x *RepositoryIndex) put(ctx context.Context, id string, doc map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return fmt.Errorf("index %s is closed", x.repoID)
	}
	if err := x.index.Index(id, doc); err != nil {
		return fmt.Errorf("failed to index %s: %w", id, err)
	}
	return nil
}

// IndexArtifact adds or replaces the record of an artifact file
func (x *RepositoryIndex) IndexArtifact(ctx context.Context, r *ArtifactRecord) error {
	doc, err := artifactDocument(r)
	if err != nil {
		return err
	}
	return x.put(ctx, artifactDocID(r.Artifact), doc)
}

// IndexModel adds or replaces a project model
func (x *RepositoryIndex) IndexModel(ctx context.Context, m *types.ProjectModel) error {
	doc, err := modelDocument(m)
	if err != nil {
		return err
	}
	return x.put(ctx, modelDocID(m.GroupID, m.ArtifactID, m.Version), doc)
}

// IndexMetadata adds or replaces repository metadata
func (x *RepositoryIndex) IndexMetadata(ctx context.Context, m *types.RepositoryMetadata) error {
	doc, err := metadataDocument(m)
	if err != nil {
		return err
	}
	return x.put(ctx, metadataDocID(m), doc)
}

// DeleteArtifact removes the record of an artifact file
func (x *RepositoryIndex) DeleteArtifact(ref types.ArtifactReference) error {
	return x.delete(artifactDocID(ref))
}

// DeleteModel removes a project model
func (x *RepositoryIndex) DeleteModel(groupID, artifactID, version string) error {
	return x.delete(modelDocID(groupID, artifactID, version))
}

func (x *RepositoryIndex) delete(id string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return fmt.Errorf("index %s is closed", x.repoID)
	}
	if err := x.index.Delete(id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

// DocCount returns the number of indexed documents
func (x *RepositoryIndex) DocCount() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return 0, fmt.Errorf("index %s is closed", x.repoID)
	}
	return x.index.DocCount()
}

// Search runs q and decodes every hit from its stored record
func (x *RepositoryIndex) Search(ctx context.Context, q Query) ([]Hit, error) {
	bq, err := translate(q)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(bq, x.maxHits, 0, false)
	req.Fields = []string{fieldSource}
	req.SortBy([]string{"-_score", "_id"})

	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, fmt.Errorf("index %s is closed", x.repoID)
	}
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if res.Total > uint64(len(res.Hits)) {
		log.Debug().
			Str("repository", x.repoID).
			Str("query", q.String()).
			Uint64("total", res.Total).
			Int("returned", len(res.Hits)).
			Msg("search hits truncated")
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, dm := range res.Hits {
		source, ok := dm.Fields[fieldSource].(string)
		if !ok {
			return nil, fmt.Errorf("%w: document %s has no stored record", ErrMalformedHit, dm.ID)
		}
		var record storedRecord
		if err := json.Unmarshal([]byte(source), &record); err != nil {
			return nil, fmt.Errorf("%w: document %s: %v", ErrMalformedHit, dm.ID, err)
		}
		hit, err := record.hit()
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index. Further calls fail.
func (x *RepositoryIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}

// translate maps a structured query onto a bleve query
func translate(q Query) (query.Query, error) {
	switch q := q.(type) {
	case SinglePhraseQuery:
		return phraseQuery(q), nil
	case *SinglePhraseQuery:
		return phraseQuery(*q), nil
	case *CompoundQuery:
		var must, should, mustNot []query.Query
		for _, c := range q.Clauses {
			sub, err := translate(c.Query)
			if err != nil {
				return nil, err
			}
			switch c.Operator {
			case And:
				must = append(must, sub)
			case Or:
				should = append(should, sub)
			case Not:
				mustNot = append(mustNot, sub)
			default:
				return nil, fmt.Errorf("unsupported query operator: %v", c.Operator)
			}
		}
		if len(must) == 0 && len(should) == 0 {
			if len(mustNot) == 0 {
				return bleve.NewMatchNoneQuery(), nil
			}
			// exclusions alone apply to every document
			must = append(must, bleve.NewMatchAllQuery())
		}
		return query.NewBooleanQuery(must, should, mustNot), nil
	case nil:
		return nil, fmt.Errorf("nil query")
	default:
		return nil, fmt.Errorf("unsupported query type %T", q)
	}
}

func phraseQuery(q SinglePhraseQuery) query.Query {
	value := strings.ToLower(q.Value)
	switch {
	case isCanonicalField(q.Field):
		tq := bleve.NewTermQuery(value)
		tq.SetField(q.Field)
		return tq
	case q.Field == FieldName:
		mq := bleve.NewMatchPhraseQuery(q.Value)
		mq.SetField(q.Field)
		return mq
	default:
		rq := bleve.NewRegexpQuery(".*" + regexp.QuoteMeta(value) + ".*")
		rq.SetField(q.Field)
		return rq
	}
}
