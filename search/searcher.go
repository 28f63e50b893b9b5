package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/zavalabs/prodsearch/ai"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/storage"
)

// Mode selects the retrieval strategy for a query.
type Mode string

const (
	// ModeKeyword uses BM25 keyword scoring only.
	ModeKeyword Mode = "keyword"
	// ModeVector uses embedding similarity only.
	ModeVector Mode = "vector"
	// ModeHybrid fuses keyword and vector results with reciprocal rank fusion.
	ModeHybrid Mode = "hybrid"
	// ModeSemantic is hybrid retrieval followed by LLM reranking.
	ModeSemantic Mode = "semantic"
)

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeKeyword:
		return ModeKeyword, nil
	case ModeVector:
		return ModeVector, nil
	case ModeHybrid:
		return ModeHybrid, nil
	case ModeSemantic:
		return ModeSemantic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Query describes a single search request.
type Query struct {
	// Text is the free-text search query.
	Text string
	// Mode selects the retrieval strategy. Defaults to ModeHybrid.
	Mode Mode
	// MaxHits caps the number of returned results. Defaults to 10.
	MaxHits int
	// Category, when set, restricts results to products in that category.
	Category string
}

// Searcher provides keyword, vector, hybrid, and reranked search over the
// product catalog.
type Searcher struct {
	productRepo   storage.ProductRepository
	embedder      ai.Embedder
	reranker      ai.Reranker
	keywordIndex  *KeywordIndex
	indexMu       sync.Mutex
	indexBuilt    bool
	rrfConstant   int
	keywordWeight float32
	vectorWeight  float32
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRRFConstant sets the reciprocal rank fusion rank constant.
// Default is DefaultRRFConstant.
func WithRRFConstant(k int) Option {
	return func(s *Searcher) error {
		if k < 1 {
			k = 1
		}
		s.rrfConstant = k
		return nil
	}
}

// WithFusionWeights sets the keyword and vector list weights for hybrid fusion.
// Defaults are DefaultKeywordWeight and DefaultVectorWeight.
func WithFusionWeights(keyword, vector float32) Option {
	return func(s *Searcher) error {
		s.keywordWeight = keyword
		s.vectorWeight = vector
		return nil
	}
}

// WithMinSimilarity sets the cosine similarity floor for vector retrieval.
// Default is 0.60.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	productRepo storage.ProductRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if productRepo == nil {
		return nil, ErrProductRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		productRepo:   productRepo,
		embedder:      provider.Embedder(),
		reranker:      provider.Reranker(),
		keywordIndex:  NewKeywordIndex(),
		rrfConstant:   DefaultRRFConstant,
		keywordWeight: DefaultKeywordWeight,
		vectorWeight:  DefaultVectorWeight,
		minSimilarity: 0.60,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RefreshIndex rebuilds the keyword index from the repository.
// Call after catalog changes; Search builds the index lazily on first use.
func (s *Searcher) RefreshIndex(ctx context.Context) error {
	products, err := s.productRepo.GetAllProducts(ctx)
	if err != nil {
		s.logger.Error("error loading products for keyword index", "err", err)
		return err
	}
	s.keywordIndex.Build(products)

	s.indexMu.Lock()
	s.indexBuilt = true
	s.indexMu.Unlock()

	s.logger.Debug("keyword index rebuilt", "products", len(products))
	return nil
}

// Search executes the query and returns up to MaxHits results, ranked by
// relevance for the selected mode.
func (s *Searcher) Search(ctx context.Context, query Query) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor executes the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query Query, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	mode := query.Mode
	if mode == "" {
		mode = ModeHybrid
	}
	maxHits := query.MaxHits
	if maxHits <= 0 {
		maxHits = 10
	}

	monitor.Start(query.Text, mode)

	// Oversample candidates when results are filtered or fused afterwards,
	// mirroring the k-nearest-neighbors oversampling of vector engines.
	candidates := maxHits
	if mode == ModeHybrid || mode == ModeSemantic || query.Category != "" {
		candidates = maxHits * 10
	}

	var results []*core.SearchResult
	var err error

	switch mode {
	case ModeKeyword:
		results, err = s.keywordSearch(ctx, query.Text, candidates, monitor)
	case ModeVector:
		results, err = s.vectorSearch(ctx, query.Text, candidates, monitor)
	case ModeHybrid, ModeSemantic:
		results, err = s.hybridSearch(ctx, query.Text, candidates, monitor)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		return nil, err
	}

	if query.Category != "" {
		results, err = s.filterByCategory(ctx, results, query.Category)
		if err != nil {
			return nil, err
		}
	}

	if mode == ModeSemantic && len(results) > 0 {
		// Rerank only what can be returned; judging the full candidate
		// pool wastes model calls.
		if len(results) > maxHits {
			results = results[:maxHits]
		}
		results, err = s.rerank(ctx, query.Text, results)
		if err != nil {
			return nil, err
		}
		monitor.AfterRerank(results)
	}

	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// keywordSearch runs BM25 scoring over the keyword index.
func (s *Searcher) keywordSearch(ctx context.Context, text string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}
	results := s.keywordIndex.Search(text, limit)
	monitor.AfterKeywordSearch(results)
	return results, nil
}

// vectorSearch embeds the query and finds similar products.
func (s *Searcher) vectorSearch(ctx context.Context, text string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	embedding, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", text, "err", err)
		return nil, err
	}

	results, err := s.productRepo.FindSimilar(ctx, embedding, s.minSimilarity, limit)
	if err != nil {
		s.logger.Error("error querying for similar products", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(results)
	return results, nil
}

// hybridSearch runs keyword and vector retrieval and fuses the ranked lists.
func (s *Searcher) hybridSearch(ctx context.Context, text string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	keywordResults, err := s.keywordSearch(ctx, text, limit, monitor)
	if err != nil {
		return nil, err
	}

	vectorResults, err := s.vectorSearch(ctx, text, limit, monitor)
	if err != nil {
		return nil, err
	}

	fusedResults := fuseRRF(keywordResults, vectorResults, s.rrfConstant, s.keywordWeight, s.vectorWeight, limit)

	// Verbatim match boost: a product whose text contains every query word
	// outranks any single-list contribution at the same fused score.
	boost := 1.0 / float32(s.rrfConstant+1)
	boosted := false
	for _, result := range fusedResults {
		if containsAllQueryWords(result.Product.EmbeddingText(), text) {
			result.Score += boost
			boosted = true
		}
	}
	if boosted {
		slices.SortFunc(fusedResults, func(a, b *core.SearchResult) int {
			if a.Score > b.Score {
				return -1
			}
			if a.Score < b.Score {
				return 1
			}
			return 0
		})
	}

	monitor.AfterFusion(fusedResults)
	return fusedResults, nil
}

// rerank scores results with the LLM judge and reorders by reranker score.
// The retrieval score is retained on each result.
func (s *Searcher) rerank(ctx context.Context, text string, results []*core.SearchResult) ([]*core.SearchResult, error) {
	passages := make([]string, len(results))
	for i, result := range results {
		passages[i] = result.Product.EmbeddingText()
	}

	scores, err := s.reranker.RerankScores(ctx, text, passages)
	if err != nil {
		s.logger.Error("error reranking results", "err", err)
		return nil, err
	}
	if len(scores) != len(results) {
		s.logger.Warn("reranker score count mismatch, keeping retrieval order",
			"scores", len(scores), "results", len(results))
		return results, nil
	}

	for i, result := range results {
		result.RerankerScore = scores[i]
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.RerankerScore > b.RerankerScore {
			return -1
		}
		if a.RerankerScore < b.RerankerScore {
			return 1
		}
		// Tie-break on the retrieval score
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	return results, nil
}

// ensureIndex builds the keyword index on first use.
func (s *Searcher) ensureIndex(ctx context.Context) error {
	s.indexMu.Lock()
	built := s.indexBuilt
	s.indexMu.Unlock()
	if built {
		return nil
	}
	return s.RefreshIndex(ctx)
}

// filterByCategory keeps only results whose product is listed in the
// category index. The index stores exact names, so the requested category
// is resolved case-insensitively against the known categories first.
func (s *Searcher) filterByCategory(ctx context.Context, results []*core.SearchResult, category string) ([]*core.SearchResult, error) {
	counts, err := s.productRepo.GetCategoryCounts(ctx)
	if err != nil {
		s.logger.Error("error loading categories for filter", "err", err)
		return nil, err
	}

	members := make(map[core.ID]struct{})
	for name := range counts {
		if !strings.EqualFold(name, category) {
			continue
		}
		ids, err := s.productRepo.GetProductsByCategory(ctx, name)
		if err != nil {
			s.logger.Error("error querying category index", "category", name, "err", err)
			return nil, err
		}
		for _, id := range ids {
			members[id] = struct{}{}
		}
	}

	filtered := make([]*core.SearchResult, 0, len(results))
	for _, result := range results {
		if _, ok := members[result.Product.Id]; ok {
			filtered = append(filtered, result)
		}
	}
	return filtered, nil
}
