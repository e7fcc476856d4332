package services

import (
	"testing"
	"time"

	"umico-analytics/config"
	"umico-analytics/models"
	"umico-analytics/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func testCategories() *config.CategoryMap {
	return config.NewCategoryMap(map[string]string{
		"Çiyin çantaları": "Shoulder Bags",
		"Çamadanlar":      "Suitcases / Luggage",
	})
}

func TestDiscountPct(t *testing.T) {
	tests := []struct {
		retail float64
		old    float64
		want   float64
	}{
		{80, 100, 20},
		{89.9, 120, 25.1},
		{100, 100, 0},  // no markdown
		{120, 100, 0},  // "old" price lower than current
		{0, 100, 0},    // unpriced
		{50, 0, 0},     // no old price
		{25, 100, 75},
		{1, 1000, 99.9},
	}

	for _, tt := range tests {
		got := discountPct(tt.retail, tt.old)
		if got != tt.want {
			t.Errorf("discountPct(%.1f, %.1f) = %.1f; want %.1f", tt.retail, tt.old, got, tt.want)
		}
	}
}

func TestCleanerDropsMissingID(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 0, Name: "No ID", FetchedAt: time.Now()},
		{ID: 10, Name: "Has ID", FetchedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after dropping missing ID, got %d", len(cleaned))
	}
	if cleaned[0].ID != 10 {
		t.Errorf("surviving listing: got ID %d, want 10", cleaned[0].ID)
	}
}

func TestCleanerDeduplicatesID(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 7, Name: "First", Page: 1},
		{ID: 7, Name: "Second", Page: 3},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after deduplication, got %d", len(cleaned))
	}
	if cleaned[0].Name != "First" {
		t.Errorf("dedupe should keep first occurrence, got %q", cleaned[0].Name)
	}
}

func TestCleanerTranslatesCategory(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 1, CategoryName: "Çiyin çantaları"},
		{ID: 2, CategoryName: "Naməlum kateqoriya"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(cleaned))
	}
	if cleaned[0].CategoryEN != "Shoulder Bags" {
		t.Errorf("mapped category: got %q, want %q", cleaned[0].CategoryEN, "Shoulder Bags")
	}
	if cleaned[1].CategoryEN != "Naməlum kateqoriya" {
		t.Errorf("unmapped category should keep original name, got %q", cleaned[1].CategoryEN)
	}
}

func TestCleanerDerivesDiscount(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 1, RetailPrice: 45, OldPrice: 60},
		{ID: 2, RetailPrice: 45, OldPrice: 45},
	}

	cleaned := c.Clean(raw)
	if cleaned[0].DiscountPct != 25.0 {
		t.Errorf("DiscountPct: got %.1f, want 25.0", cleaned[0].DiscountPct)
	}
	if cleaned[1].DiscountPct != 0 {
		t.Errorf("equal prices should mean no discount, got %.1f", cleaned[1].DiscountPct)
	}
}

func TestCleanerDropsOutOfRangeRating(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 1, RatingValue: 9.7},
		{ID: 2, RatingValue: 4.7},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected listing with impossible rating to be dropped, got %d survivors", len(cleaned))
	}
	if cleaned[0].ID != 2 {
		t.Errorf("surviving listing: got ID %d, want 2", cleaned[0].ID)
	}
}

func TestCleanerNormalisesWhitespace(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 1, Name: "  Çanta   modeli \n 2025 ", SellerName: " Baku  Store "},
	}

	cleaned := c.Clean(raw)
	if cleaned[0].Name != "Çanta modeli 2025" {
		t.Errorf("Name: got %q", cleaned[0].Name)
	}
	if cleaned[0].SellerName != "Baku Store" {
		t.Errorf("SellerName: got %q", cleaned[0].SellerName)
	}
}

func TestCleanerNegativePriceClampedToUnpriced(t *testing.T) {
	c := NewCleaner(newTestLogger(), testCategories())
	raw := []*models.RawListing{
		{ID: 1, RetailPrice: -10, OldPrice: -5},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected negative prices to clamp, not drop, got %d survivors", len(cleaned))
	}
	if cleaned[0].RetailPrice != 0 || cleaned[0].OldPrice != 0 || cleaned[0].DiscountPct != 0 {
		t.Errorf("clamped listing: got %+v", cleaned[0])
	}
}
