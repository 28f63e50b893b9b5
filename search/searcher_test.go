package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zavalabs/prodsearch/ai/mock"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/storage"
	"github.com/zavalabs/prodsearch/storage/badger"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"keyword", ModeKeyword, false},
		{"vector", ModeVector, false},
		{"hybrid", ModeHybrid, false},
		{"semantic", ModeSemantic, false},
		{"HYBRID", ModeHybrid, false},
		{"fulltext", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		mode, err := ParseMode(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownMode, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, mode)
	}
}

func TestNewSearcher(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(productRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(productRepo, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(productRepo, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil product repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrProductRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(productRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

// seedCatalog stores a small catalog with hand-picked unit vectors so that
// similarity ordering is exact.
func seedCatalog(t *testing.T, productRepo storage.ProductRepository) {
	t.Helper()

	products := []*core.Product{
		{
			SKU:         "DRL-100",
			Name:        "Cordless Drill",
			Description: "Compact cordless drill with brushless motor",
			Price:       129.99,
			StockLevel:  25,
			Categories:  []string{"Power Tools"},
			Vector:      []float32{1, 0, 0},
		},
		{
			SKU:         "DRL-200",
			Name:        "Hammer Drill",
			Description: "Corded hammer drill for masonry and concrete",
			Price:       179.99,
			StockLevel:  12,
			Categories:  []string{"Power Tools"},
			Vector:      []float32{0.8, 0.6, 0},
		},
		{
			SKU:         "SAW-100",
			Name:        "Circular Saw",
			Description: "Circular saw with laser guide",
			Price:       149.99,
			StockLevel:  8,
			Categories:  []string{"Power Tools"},
			Vector:      []float32{0, 1, 0},
		},
		{
			SKU:         "PNT-100",
			Name:        "Interior Paint",
			Description: "Low odor interior wall paint",
			Price:       34.99,
			StockLevel:  60,
			Categories:  []string{"Paint"},
			Vector:      []float32{0, 0, 1},
		},
	}

	_, err := productRepo.UpsertProducts(context.Background(), products...)
	require.NoError(t, err)
}

// queryEmbedder returns a mock embedder that maps every query to the given vector.
func queryEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func TestSearchKeywordMode(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	searcher, err := NewSearcher(productRepo, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.Search(ctx, Query{Text: "cordless drill", Mode: ModeKeyword})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "DRL-100", results[0].Product.SKU)
	assert.Equal(t, "DRL-200", results[1].Product.SKU)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchVectorMode(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	provider := mock.NewMockProviderWithServices(
		queryEmbedder([]float32{1, 0, 0}),
		mock.NewMockReranker(),
		mock.NewMockAnswerGenerator(),
	)
	searcher, err := NewSearcher(productRepo, provider)
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.Search(ctx, Query{Text: "something to drill holes", Mode: ModeVector})
	require.NoError(t, err)
	// Similarities: DRL-100 1.0, DRL-200 0.8, others below the 0.60 floor
	require.Len(t, results, 2)
	assert.Equal(t, "DRL-100", results[0].Product.SKU)
	assert.Equal(t, "DRL-200", results[1].Product.SKU)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.InDelta(t, 0.8, results[1].Score, 1e-6)
}

func TestSearchVectorModeMinSimilarity(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	provider := mock.NewMockProviderWithServices(
		queryEmbedder([]float32{1, 0, 0}),
		mock.NewMockReranker(),
		mock.NewMockAnswerGenerator(),
	)
	searcher, err := NewSearcher(productRepo, provider, WithMinSimilarity(0.9))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), Query{Text: "drill", Mode: ModeVector})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "DRL-100", results[0].Product.SKU)
}

func TestSearchHybridMode(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	provider := mock.NewMockProviderWithServices(
		queryEmbedder([]float32{1, 0, 0}),
		mock.NewMockReranker(),
		mock.NewMockAnswerGenerator(),
	)
	searcher, err := NewSearcher(productRepo, provider)
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.Search(ctx, Query{Text: "cordless drill", Mode: ModeHybrid, MaxHits: 3})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)
	// Top of both retrieval lists, plus the verbatim match boost
	assert.Equal(t, "DRL-100", results[0].Product.SKU)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchSemanticMode(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	reranker := mock.NewMockReranker()
	reranker.RerankScoresFunc = func(ctx context.Context, query string, passages []string) ([]float32, error) {
		// Invert the retrieval order
		scores := make([]float32, len(passages))
		for i := range passages {
			scores[i] = float32(i+1) / float32(len(passages))
		}
		return scores, nil
	}

	provider := mock.NewMockProviderWithServices(
		queryEmbedder([]float32{1, 0, 0}),
		reranker,
		mock.NewMockAnswerGenerator(),
	)
	searcher, err := NewSearcher(productRepo, provider)
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.Search(ctx, Query{Text: "cordless drill", Mode: ModeSemantic})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, 1, reranker.CallCount())
	for i, result := range results {
		assert.Greater(t, result.RerankerScore, float32(0), "result %d", i)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].RerankerScore, result.RerankerScore)
		}
	}
	// The reranker demoted the hybrid leader
	assert.NotEqual(t, "DRL-100", results[0].Product.SKU)
}

func TestSearchCategoryFilter(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	searcher, err := NewSearcher(productRepo, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("matching category", func(t *testing.T) {
		results, err := searcher.Search(ctx, Query{Text: "paint", Mode: ModeKeyword, Category: "paint"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "PNT-100", results[0].Product.SKU)
	})

	t.Run("excluding category", func(t *testing.T) {
		results, err := searcher.Search(ctx, Query{Text: "paint", Mode: ModeKeyword, Category: "Power Tools"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("category not in index", func(t *testing.T) {
		results, err := searcher.Search(ctx, Query{Text: "paint", Mode: ModeKeyword, Category: "Garden"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("filter follows index updates", func(t *testing.T) {
		// Recategorizing a product must move it between filters
		repainted := &core.Product{
			SKU:         "PNT-100",
			Name:        "Interior Paint",
			Description: "Low odor interior wall paint",
			Price:       34.99,
			StockLevel:  60,
			Categories:  []string{"Finishes"},
			Vector:      []float32{0, 0, 1},
		}
		_, err := productRepo.UpsertProducts(ctx, repainted)
		require.NoError(t, err)

		results, err := searcher.Search(ctx, Query{Text: "paint", Mode: ModeKeyword, Category: "Paint"})
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = searcher.Search(ctx, Query{Text: "paint", Mode: ModeKeyword, Category: "finishes"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "PNT-100", results[0].Product.SKU)
	})
}

func TestSearchDefaults(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	provider := mock.NewMockProviderWithServices(
		queryEmbedder([]float32{1, 0, 0}),
		mock.NewMockReranker(),
		mock.NewMockAnswerGenerator(),
	)
	searcher, err := NewSearcher(productRepo, provider)
	require.NoError(t, err)

	// Empty mode and zero MaxHits fall back to hybrid and 10
	results, err := searcher.Search(context.Background(), Query{Text: "drill"})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 10)
}

func TestSearchUnknownMode(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(productRepo, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), Query{Text: "drill", Mode: Mode("fulltext")})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSearchEmptyCatalog(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(productRepo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), Query{Text: "drill", Mode: ModeKeyword})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRefreshIndex(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	searcher, err := NewSearcher(productRepo, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.Search(ctx, Query{Text: "drill", Mode: ModeKeyword})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// New product is invisible until the index is refreshed
	_, err = productRepo.UpsertProducts(ctx, &core.Product{
		SKU:         "DRL-300",
		Name:        "Right Angle Drill",
		Description: "Right angle drill for tight spaces",
		Price:       199.99,
		StockLevel:  5,
		Categories:  []string{"Power Tools"},
		Vector:      []float32{0.6, 0.8, 0},
	})
	require.NoError(t, err)

	results, err = searcher.Search(ctx, Query{Text: "drill", Mode: ModeKeyword})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	require.NoError(t, searcher.RefreshIndex(ctx))

	results, err = searcher.Search(ctx, Query{Text: "drill", Mode: ModeKeyword})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchWithMonitor(t *testing.T) {
	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		productRepo.Close()
		backend.Close()
	}()
	seedCatalog(t, productRepo)

	provider := mock.NewMockProviderWithServices(
		queryEmbedder([]float32{1, 0, 0}),
		mock.NewMockReranker(),
		mock.NewMockAnswerGenerator(),
	)
	searcher, err := NewSearcher(productRepo, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), Query{Text: "cordless drill", Mode: ModeSemantic}, monitor)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "cordless drill", monitor.query)
	assert.Equal(t, ModeSemantic, monitor.mode)
	assert.True(t, monitor.keywordSeen)
	assert.True(t, monitor.vectorSeen)
	assert.True(t, monitor.fusionSeen)
	assert.True(t, monitor.rerankSeen)
	assert.Equal(t, len(results), monitor.finalCount)
}

// recordingMonitor captures stage callbacks for assertions.
type recordingMonitor struct {
	query       string
	mode        Mode
	keywordSeen bool
	vectorSeen  bool
	fusionSeen  bool
	rerankSeen  bool
	finalCount  int
}

func (m *recordingMonitor) Start(query string, mode Mode) {
	m.query = query
	m.mode = mode
}

func (m *recordingMonitor) AfterKeywordSearch(results []*core.SearchResult) { m.keywordSeen = true }
func (m *recordingMonitor) AfterVectorSearch(results []*core.SearchResult)  { m.vectorSeen = true }
func (m *recordingMonitor) AfterFusion(results []*core.SearchResult)        { m.fusionSeen = true }
func (m *recordingMonitor) AfterRerank(results []*core.SearchResult)        { m.rerankSeen = true }
func (m *recordingMonitor) Finish(results []*core.SearchResult)             { m.finalCount = len(results) }
