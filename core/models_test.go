package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "SKU-GARDEN-0042",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "A much longer SKU-like string that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("SKU-0001")
	id2 := IDFromContent("SKU-0002")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestProduct_EmbeddingText(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name: "all fields",
			product: Product{
				Name:        "Garden Hose 50ft",
				Description: "Durable reinforced hose",
				Categories:  []string{"Garden", "Watering"},
			},
			want: "Garden Hose 50ft Durable reinforced hose Garden Watering",
		},
		{
			name: "no categories",
			product: Product{
				Name:        "Garden Hose",
				Description: "A hose",
			},
			want: "Garden Hose A hose",
		},
		{
			name:    "name only",
			product: Product{Name: "Trowel"},
			want:    "Trowel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.EmbeddingText(); got != tt.want {
				t.Errorf("EmbeddingText() = %q, want %q", got, tt.want)
			}
		})
	}
}
