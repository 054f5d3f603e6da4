package product

import (
	"testing"
	"time"
)

func TestShelfLifeMonths(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		want     int
	}{
		{"feed", CategoryFeed, 6},
		{"medicine", CategoryMedicine, 24},
		{"supplement", CategorySupplement, 18},
		{"unknown category falls back to default", Category("bedding"), 12},
		{"empty category falls back to default", Category(""), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShelfLifeMonths(tt.category); got != tt.want {
				t.Errorf("ShelfLifeMonths(%q) = %d, want %d", tt.category, got, tt.want)
			}
		})
	}
}

func TestBatchExpiry(t *testing.T) {
	producedAt := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	p := &Product{Category: CategoryFeed}

	want := time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)
	if got := p.BatchExpiry(producedAt); !got.Equal(want) {
		t.Errorf("BatchExpiry = %v, want %v", got, want)
	}
}
