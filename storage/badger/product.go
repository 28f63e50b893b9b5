package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/storage"
)

// ProductRepository implements storage.ProductRepository for BadgerDB.
type ProductRepository struct {
	backend *Backend
}

var _ storage.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(backend *Backend) (*ProductRepository, error) {
	return &ProductRepository{
		backend: backend,
	}, nil
}

// Close releases repository resources.
func (r *ProductRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ProductRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ProductRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertProducts adds or replaces one or more products in storage.
func (r *ProductRepository) UpsertProducts(ctx context.Context, products ...*core.Product) ([]*core.Product, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, product := range products {
			// IDs are content-derived from the SKU, so re-uploading a
			// SKU replaces the earlier document.
			product.Id = core.IDFromContent(product.SKU)

			key := makeProductKey(product.Id)
			old, err := r.readProduct(tx, key)
			if err != nil {
				return err
			}

			if old != nil {
				product.InsertedAt = old.InsertedAt
			} else {
				product.InsertedAt = now
			}
			product.UpdatedAt = now

			value := storage.MarshalProduct(product)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update category index
			if old != nil && !slices.Equal(old.Categories, product.Categories) {
				if err := r.deleteCategoryIndex(tx, old); err != nil {
					return err
				}
			}
			if err := r.updateCategoryIndex(tx, product); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return products, err
}

// DeleteProducts removes products by their IDs.
func (r *ProductRepository) DeleteProducts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProductKey(id)
			product, err := r.readProduct(tx, key)
			if err != nil {
				return err
			}
			if product == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
			if err := r.deleteCategoryIndex(tx, product); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetProduct retrieves a single product by ID.
func (r *ProductRepository) GetProduct(ctx context.Context, id core.ID) (*core.Product, error) {
	var product *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		product, err = r.readProduct(tx, makeProductKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, storage.ErrNotFound
	}
	return product, nil
}

// GetProductBySKU retrieves a single product by SKU.
// The lookup uses the content-derived ID, no secondary index is needed.
func (r *ProductRepository) GetProductBySKU(ctx context.Context, sku string) (*core.Product, error) {
	return r.GetProduct(ctx, core.IDFromContent(sku))
}

// GetProducts retrieves multiple products by their IDs.
// Missing products are silently skipped.
func (r *ProductRepository) GetProducts(ctx context.Context, ids ...core.ID) ([]*core.Product, error) {
	products := make([]*core.Product, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			product, err := r.readProduct(tx, makeProductKey(id))
			if err != nil {
				return err
			}
			if product != nil {
				products = append(products, product)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetAllProducts retrieves every product in the catalog.
func (r *ProductRepository) GetAllProducts(ctx context.Context) ([]*core.Product, error) {
	var products []*core.Product
	err := r.scanProducts(func(product *core.Product) bool {
		products = append(products, product)
		return true
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductsAfter retrieves up to limit products with ID > after,
// in ascending ID order.
func (r *ProductRepository) GetProductsAfter(ctx context.Context, after core.ID, limit int) ([]*core.Product, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	// Primary keys use decimal IDs, so lexicographic key order does not
	// match numeric ID order. Collect matching products and sort.
	var window []*core.Product
	err := r.scanProducts(func(product *core.Product) bool {
		if product.Id > after {
			window = append(window, product)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(window, func(a, b *core.Product) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	if len(window) > limit {
		window = window[:limit]
	}
	return window, nil
}

// GetProductsByCategory retrieves IDs of products assigned to a category.
func (r *ProductRepository) GetProductsByCategory(ctx context.Context, category string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialCategoryKey(category)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			err := item.Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetCategoryCounts returns the number of products per category.
func (r *ProductRepository) GetCategoryCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(productCategoryPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			category := categoryFromIndexKey(iter.Item().Key())
			if category != "" {
				counts[category]++
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// CountProducts returns the total number of products in the catalog.
func (r *ProductRepository) CountProducts(ctx context.Context) (int, error) {
	count := 0
	err := r.scanProducts(func(*core.Product) bool {
		count++
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// scanProducts iterates all primary product records, skipping index keys.
// The callback returns false to stop iteration early.
func (r *ProductRepository) scanProducts(fn func(*core.Product) bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if len(item.Key()) >= len(productCategoryPrefix) &&
				string(item.Key()[:len(productCategoryPrefix)]) == productCategoryPrefix {
				continue
			}

			var product *core.Product
			err := item.Value(func(val []byte) error {
				var err error
				product, err = storage.UnmarshalProduct(val)
				return err
			})
			if err != nil {
				return err
			}
			if product == nil {
				continue
			}
			if !fn(product) {
				return nil
			}
		}
		return nil
	}, false)
}

// readProduct reads a product by key within a transaction.
// Returns nil, nil if the key does not exist.
func (r *ProductRepository) readProduct(tx *badger.Txn, key []byte) (*core.Product, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var product *core.Product
	err = item.Value(func(val []byte) error {
		var err error
		product, err = storage.UnmarshalProduct(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// updateCategoryIndex adds category index entries for a product.
func (r *ProductRepository) updateCategoryIndex(tx *badger.Txn, product *core.Product) error {
	for _, category := range product.Categories {
		key := makeCategoryKey(category, product.Id)
		if err := tx.Set(key, storage.MarshalID(product.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteCategoryIndex removes category index entries for a product.
func (r *ProductRepository) deleteCategoryIndex(tx *badger.Txn, product *core.Product) error {
	for _, category := range product.Categories {
		key := makeCategoryKey(category, product.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
