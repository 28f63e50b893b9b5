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

import "errors"

// Domain validation errors
var (
	// ErrInvalidProduct indicates a Product failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrEmptySKU indicates the SKU field is empty.
	ErrEmptySKU = errors.New("sku cannot be empty")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNegativePrice indicates the Price field is negative.
	ErrNegativePrice = errors.New("price cannot be negative")

	// ErrNegativeStock indicates the StockLevel field is negative.
	ErrNegativeStock = errors.New("stock level cannot be negative")

	// ErrEmptyCategory indicates a Categories entry is empty.
	ErrEmptyCategory = errors.New("category cannot be empty")
)

// ErrInvalidLengthPrefix indicates a serialized record carries a slice
// length that is negative or larger than the remaining data.
var ErrInvalidLengthPrefix = errors.New("invalid length prefix")
