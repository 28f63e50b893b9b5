package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/zavalabs/prodsearch/core"
)

func tableResults() []*core.SearchResult {
	return []*core.SearchResult{
		{
			Product: &core.Product{
				SKU:         "DRL-100",
				Name:        "Cordless Drill",
				Description: "Compact cordless drill with brushless motor",
				Price:       129.99,
				StockLevel:  25,
				Categories:  []string{"Power Tools", "Drills"},
			},
			Score:         0.90123,
			RerankerScore: 0.75,
		},
		{
			Product: &core.Product{
				SKU:         "PNT-100",
				Name:        "Interior Paint",
				Description: strings.Repeat("x", 100),
				Price:       34.5,
				StockLevel:  60,
				Categories:  []string{"Paint"},
			},
			Score: 0.5,
		},
	}
}

func TestProductTable(t *testing.T) {
	out := ProductTable(tableResults(), TableOptions{Title: "Keyword Search"})

	assert.Contains(t, out, "Keyword Search")
	assert.Contains(t, out, "Cordless Drill")
	assert.Contains(t, out, "DRL-100")
	assert.Contains(t, out, "0.901")
	assert.Contains(t, out, "$129.99")
	assert.Contains(t, out, "$34.50")
	assert.Contains(t, out, "Power Tools, Drills")
	assert.NotContains(t, out, "Reranker")
}

func TestProductTableWithReranker(t *testing.T) {
	out := ProductTable(tableResults(), TableOptions{Title: "Semantic Search", ShowReranker: true})

	assert.Contains(t, out, "Reranker")
	assert.Contains(t, out, "0.750")
}

func TestProductTableTruncatesDescription(t *testing.T) {
	out := ProductTable(tableResults(), TableOptions{})

	assert.Contains(t, out, "...")
	assert.NotContains(t, out, strings.Repeat("x", 100))
}

func TestProductTableEmpty(t *testing.T) {
	out := ProductTable(nil, TableOptions{Title: "No Results"})
	assert.Contains(t, out, "No Results")
	assert.Contains(t, out, "Score")
}

func TestCategoryTable(t *testing.T) {
	out := CategoryTable(map[string]int{
		"Paint":       3,
		"Power Tools": 7,
	})

	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "Paint")
	assert.Contains(t, out, "Power Tools")
	assert.Contains(t, out, "7")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, strings.Repeat("a", 80)+"...", truncate(strings.Repeat("a", 81), 80))

	// Rune-counted, never cut mid-character
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, strings.Repeat("ü", 80)+"...", truncate(strings.Repeat("ü", 81), 80))
	assert.True(t, utf8.ValidString(truncate(strings.Repeat("日本語", 40), 80)))
}
