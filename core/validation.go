// Copyright 2025 Zava Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateProduct validates a Product according to domain rules.
//
// Validation rules:
//   - SKU must not be empty
//   - Name must not be empty
//   - Price must not be negative
//   - StockLevel must not be negative
//   - Categories entries must not be empty strings
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the index pipeline runs)
//   - ID (derived from the SKU by the repository)
func ValidateProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}

	if product.SKU == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptySKU)
	}

	if product.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyName)
	}

	if product.Price < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrNegativePrice)
	}

	if product.StockLevel < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrNegativeStock)
	}

	for _, category := range product.Categories {
		if category == "" {
			return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyCategory)
		}
	}

	return nil
}
