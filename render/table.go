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


package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zavalabs/prodsearch/core"
)

// descriptionLimit is the length at which descriptions are truncated.
const descriptionLimit = 80

// TableOptions controls how a result table is rendered.
type TableOptions struct {
	// Title is rendered above the table.
	Title string
	// ShowReranker adds a reranker score column.
	ShowReranker bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))

	columnStyles = map[string]lipgloss.Style{
		"Score":       lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Align(lipgloss.Right),
		"Reranker":    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Align(lipgloss.Right),
		"Name":        lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		"Description": lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		"Categories":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"Price":       lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Align(lipgloss.Right),
		"SKU":         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

// ProductTable renders search results as a bordered table.
// Descriptions longer than 80 characters are truncated with an ellipsis.
func ProductTable(results []*core.SearchResult, opts TableOptions) string {
	headers := []string{"Score"}
	if opts.ShowReranker {
		headers = append(headers, "Reranker")
	}
	headers = append(headers, "Name", "Description", "Categories", "Price", "SKU")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle.Copy().Padding(0, 1)
			}
			return columnStyles[headers[col]].Copy().Padding(0, 1)
		})

	for _, result := range results {
		row := []string{fmt.Sprintf("%.3f", result.Score)}
		if opts.ShowReranker {
			row = append(row, fmt.Sprintf("%.3f", result.RerankerScore))
		}
		row = append(row,
			result.Product.Name,
			truncate(result.Product.Description, descriptionLimit),
			strings.Join(result.Product.Categories, ", "),
			fmt.Sprintf("$%.2f", result.Product.Price),
			result.Product.SKU,
		)
		t.Row(row...)
	}

	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(titleStyle.Render(opts.Title))
		b.WriteString("\n")
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// CategoryTable renders per-category product counts as a bordered table,
// sorted by category name.
func CategoryTable(counts map[string]int) string {
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Category", "Products").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle.Copy().Padding(0, 1)
			}
			if col == 1 {
				return columnStyles["Price"].Copy().Padding(0, 1)
			}
			return columnStyles["Categories"].Copy().Padding(0, 1)
		})

	for _, category := range categories {
		t.Row(category, strconv.Itoa(counts[category]))
	}

	return t.String() + "\n"
}

// truncate shortens s to max characters, appending an ellipsis when cut.
// Counts runes so multibyte text is never split mid-character.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
