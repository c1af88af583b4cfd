package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// HybridSearcher runs two independent rankings over the catalog — dense
// semantic-embedding similarity and sparse lexical term matching — and fuses
// them with reciprocal rank fusion. Pure embedding search under-ranks exact
// technical tokens (formulas, IUPAC names) while pure lexical search misses
// vernacular paraphrases; fusing ranks covers both.
type HybridSearcher struct {
	catalog  *catalog.Catalog
	dense    *chromem.Collection
	sparse   bleve.Index
	rrfK     int
	prefetch int
	cache    *lru.Cache[string, []types.LookupResult]
	logger   *zap.Logger
}

// sparseDocument is the shape indexed into bleve per catalog record.
type sparseDocument struct {
	IUPACName   string `json:"iupac_name"`
	CommonNames string `json:"common_names"`
	Formula     string `json:"formula"`
	Class       string `json:"class"`
	Info        string `json:"info"`
}

type HybridConfig struct {
	RRFRankConstant int
	PrefetchLimit   int
	CacheSize       int
}

// NewHybrid indexes the catalog snapshot into an in-process dense collection
// and an in-memory sparse index. The catalog is read-only for the pipeline,
// so both indexes and the response cache stay valid for the process lifetime.
func NewHybrid(ctx context.Context, cat *catalog.Catalog, embedder chromem.EmbeddingFunc, cfg HybridConfig, logger *zap.Logger) (*HybridSearcher, error) {
	db := chromem.NewDB()
	dense, err := db.GetOrCreateCollection("compounds", nil, embedder)
	if err != nil {
		return nil, fmt.Errorf("create dense collection: %w", err)
	}

	docs := make([]chromem.Document, 0, cat.Len())
	for _, record := range cat.Records() {
		docs = append(docs, chromem.Document{
			ID:      record.DocID,
			Content: denseContent(record),
		})
	}
	if len(docs) > 0 {
		if err := dense.AddDocuments(ctx, docs, 4); err != nil {
			return nil, fmt.Errorf("index dense collection: %w", err)
		}
	}

	sparse, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create sparse index: %w", err)
	}
	for _, record := range cat.Records() {
		doc := sparseDocument{
			IUPACName:   record.IUPACName,
			CommonNames: strings.Join(record.CommonNames, " "),
			Formula:     strings.TrimSpace(record.Formula + " " + record.MolecularFormula),
			Class:       record.Class,
			Info:        record.Info,
		}
		if err := sparse.Index(record.DocID, doc); err != nil {
			return nil, fmt.Errorf("index sparse document %s: %w", record.DocID, err)
		}
	}

	prefetch := cfg.PrefetchLimit
	if prefetch <= 0 {
		prefetch = 10
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, []types.LookupResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}

	logger.Info("Hybrid searcher ready",
		zap.Int("records", cat.Len()),
		zap.Int("prefetch", prefetch),
		zap.Int("rrf_k", cfg.RRFRankConstant))

	return &HybridSearcher{
		catalog:  cat,
		dense:    dense,
		sparse:   sparse,
		rrfK:     cfg.RRFRankConstant,
		prefetch: prefetch,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Lookup fuses the dense and sparse rankings for key, drops fused scores
// below threshold and returns at most limit results, best first. Repeated
// calls against the unchanged catalog return identical orderings and scores.
func (s *HybridSearcher) Lookup(ctx context.Context, key string, limit int, threshold float64) ([]types.LookupResult, error) {
	key = strings.TrimSpace(key)
	if key == "" || limit <= 0 {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("%s|%d|%.4f", strings.ToLower(key), limit, threshold)
	if cached, ok := s.cache.Get(cacheKey); ok {
		out := make([]types.LookupResult, len(cached))
		copy(out, cached)
		return out, nil
	}

	denseIDs, err := s.denseRanking(ctx, key)
	if err != nil {
		return nil, err
	}
	sparseIDs, err := s.sparseRanking(ctx, key)
	if err != nil {
		return nil, err
	}

	fused := fuseRRF(s.rrfK, denseIDs, sparseIDs)

	results := make([]types.LookupResult, 0, limit)
	for _, cand := range fused {
		if cand.Score < threshold {
			break
		}
		record, ok := s.catalog.ByID(cand.ID)
		if !ok {
			s.logger.Warn("Fused candidate missing from catalog", zap.String("record_id", cand.ID))
			continue
		}
		results = append(results, toResult(record, cand.Score))
		if len(results) >= limit {
			break
		}
	}

	stored := make([]types.LookupResult, len(results))
	copy(stored, results)
	s.cache.Add(cacheKey, stored)

	s.logger.Debug("Hybrid lookup complete",
		zap.String("key", key),
		zap.Int("dense", len(denseIDs)),
		zap.Int("sparse", len(sparseIDs)),
		zap.Int("returned", len(results)))
	return results, nil
}

func (s *HybridSearcher) denseRanking(ctx context.Context, key string) ([]string, error) {
	n := s.prefetch
	if total := s.dense.Count(); n > total {
		n = total
	}
	if n <= 0 {
		return nil, nil
	}

	hits, err := s.dense.Query(ctx, key, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("dense ranking: %w", err)
	}
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (s *HybridSearcher) sparseRanking(ctx context.Context, key string) ([]string, error) {
	query := bleve.NewMatchQuery(key)
	req := bleve.NewSearchRequestOptions(query, s.prefetch, 0, false)
	res, err := s.sparse.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sparse ranking: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func denseContent(record catalog.Record) string {
	fields := []string{record.IUPACName}
	fields = append(fields, record.CommonNames...)
	for _, f := range []string{record.Formula, record.MolecularFormula, record.Class, record.Info, record.NamingRule} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return strings.Join(fields, ". ")
}
