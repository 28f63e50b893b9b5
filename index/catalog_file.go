package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zavalabs/prodsearch/core"
)

// catalogEntry is the on-disk representation of a product in a catalog file.
type catalogEntry struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	StockLevel  int32    `json:"stock_level"`
	Categories  []string `json:"categories"`
}

// LoadCatalogFile reads a JSON catalog file containing an array of products.
// Every product is validated; a single invalid entry fails the whole load so
// that partial catalogs are never indexed.
func LoadCatalogFile(path string) ([]*core.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a JSON array of catalog entries into products.
func ParseCatalog(data []byte) ([]*core.Product, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]*core.Product, len(entries))
	for i, entry := range entries {
		product := &core.Product{
			SKU:         entry.SKU,
			Name:        entry.Name,
			Description: entry.Description,
			Price:       entry.Price,
			StockLevel:  entry.StockLevel,
			Categories:  entry.Categories,
		}
		if err := core.ValidateProduct(product); err != nil {
			return nil, fmt.Errorf("catalog entry %d (sku %q): %w", i, entry.SKU, err)
		}
		products[i] = product
	}

	return products, nil
}
