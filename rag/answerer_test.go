package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zavalabs/prodsearch/ai/mock"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/search"
	"github.com/zavalabs/prodsearch/storage"
	"github.com/zavalabs/prodsearch/storage/badger"
)

func answererFixture(t *testing.T, provider *mock.MockProvider) (*search.Searcher, storage.ProductRepository, func()) {
	t.Helper()

	productRepo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)

	searcher, err := search.NewSearcher(productRepo, provider)
	require.NoError(t, err)

	cleanup := func() {
		productRepo.Close()
		backend.Close()
	}
	return searcher, productRepo, cleanup
}

func seedProducts(t *testing.T, productRepo storage.ProductRepository) {
	t.Helper()

	_, err := productRepo.UpsertProducts(context.Background(),
		&core.Product{
			SKU:         "DRL-100",
			Name:        "Cordless Drill",
			Description: "Compact cordless drill with brushless motor",
			Price:       129.99,
			StockLevel:  25,
			Categories:  []string{"Power Tools"},
			Vector:      []float32{1, 0, 0},
		},
		&core.Product{
			SKU:         "PNT-100",
			Name:        "Interior Paint",
			Description: "Low odor interior wall paint",
			Price:       34.99,
			StockLevel:  60,
			Categories:  []string{"Paint"},
			Vector:      []float32{0, 1, 0},
		},
	)
	require.NoError(t, err)
}

func mockProviderForQuery(vector []float32) *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockReranker(), mock.NewMockAnswerGenerator())
	return provider.(*mock.MockProvider)
}

func TestNewAnswerer(t *testing.T) {
	provider := mockProviderForQuery([]float32{1, 0, 0})
	searcher, _, cleanup := answererFixture(t, provider)
	defer cleanup()

	t.Run("valid configuration", func(t *testing.T) {
		answerer, err := NewAnswerer(searcher, provider)
		require.NoError(t, err)
		assert.NotNil(t, answerer)
	})

	t.Run("nil searcher", func(t *testing.T) {
		_, err := NewAnswerer(nil, provider)
		assert.Equal(t, ErrSearcherRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewAnswerer(searcher, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestAsk(t *testing.T) {
	provider := mockProviderForQuery([]float32{1, 0, 0})
	searcher, productRepo, cleanup := answererFixture(t, provider)
	defer cleanup()
	seedProducts(t, productRepo)

	// Capture what the generator is given
	var gotQuery string
	var gotPassages []string
	generator := provider.GetMockGenerator()
	generator.GenerateAnswerFunc = func(ctx context.Context, query string, passages []string) (string, error) {
		gotQuery = query
		gotPassages = passages
		return "The Cordless Drill is $129.99 [1].", nil
	}

	answerer, err := NewAnswerer(searcher, provider, WithMode(search.ModeHybrid), WithTopK(2))
	require.NoError(t, err)

	answer, err := answerer.Ask(context.Background(), "how much is the cordless drill?")
	require.NoError(t, err)

	assert.Equal(t, "The Cordless Drill is $129.99 [1].", answer.Text)
	assert.Equal(t, "how much is the cordless drill?", gotQuery)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "DRL-100", answer.Sources[0].Product.SKU)

	// Passages carry the product facts the answer needs
	require.NotEmpty(t, gotPassages)
	assert.Contains(t, gotPassages[0], "Name: Cordless Drill")
	assert.Contains(t, gotPassages[0], "SKU: DRL-100")
	assert.Contains(t, gotPassages[0], "Price: $129.99")
	assert.Contains(t, gotPassages[0], "Categories: Power Tools")
	assert.Equal(t, len(answer.Sources), len(gotPassages))
}

func TestAskEmptyQuestion(t *testing.T) {
	provider := mockProviderForQuery([]float32{1, 0, 0})
	searcher, _, cleanup := answererFixture(t, provider)
	defer cleanup()

	answerer, err := NewAnswerer(searcher, provider)
	require.NoError(t, err)

	_, err = answerer.Ask(context.Background(), "   ")
	assert.Equal(t, ErrEmptyQuestion, err)
}

func TestAskNoResults(t *testing.T) {
	provider := mockProviderForQuery([]float32{1, 0, 0})
	searcher, _, cleanup := answererFixture(t, provider)
	defer cleanup()

	answerer, err := NewAnswerer(searcher, provider, WithMode(search.ModeKeyword))
	require.NoError(t, err)

	_, err = answerer.Ask(context.Background(), "anything at all")
	assert.Equal(t, ErrNoResults, err)
}

func TestAskGeneratorFailure(t *testing.T) {
	provider := mockProviderForQuery([]float32{1, 0, 0})
	searcher, productRepo, cleanup := answererFixture(t, provider)
	defer cleanup()
	seedProducts(t, productRepo)

	generateFailure := errors.New("model unavailable")
	provider.GetMockGenerator().GenerateAnswerFunc = func(ctx context.Context, query string, passages []string) (string, error) {
		return "", generateFailure
	}

	answerer, err := NewAnswerer(searcher, provider, WithMode(search.ModeHybrid))
	require.NoError(t, err)

	_, err = answerer.Ask(context.Background(), "cordless drill")
	assert.ErrorIs(t, err, generateFailure)
}

func TestFormatPassage(t *testing.T) {
	passage := formatPassage(&core.Product{
		SKU:         "SAW-100",
		Name:        "Circular Saw",
		Description: "Circular saw with laser guide",
		Price:       149.5,
		StockLevel:  8,
		Categories:  []string{"Power Tools", "Saws"},
	})

	lines := strings.Split(passage, "\n")
	assert.Equal(t, "Name: Circular Saw", lines[0])
	assert.Contains(t, passage, "Price: $149.50")
	assert.Contains(t, passage, "Categories: Power Tools, Saws")
	assert.Contains(t, passage, "Description: Circular saw with laser guide")
}
