package services

import (
	"testing"
	"time"

	"umico-analytics/models"
)

// snapshot is a small catalog with hand-checked aggregates: 8 listings
// in 3 categories, 7 of them priced, 3 sellers plus one sellerless
// listing, and one non-standard installment term.
func snapshot() []*models.Listing {
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	return []*models.Listing{
		{ID: 1, CategoryEN: "Shoulder Bags", RetailPrice: 20, Brand: "", SellerName: "MegaMart", SellerRating: 96, RatingValue: 4.5, MaxInstallmentMonths: 18, FetchedAt: base},
		{ID: 2, CategoryEN: "Shoulder Bags", RetailPrice: 40, DiscountPct: 10, Brand: "Nike", SellerName: "MegaMart", SellerRating: 96, MaxInstallmentMonths: 18, FetchedAt: base},
		{ID: 3, CategoryEN: "Shoulder Bags", Brand: "No Brand", SellerName: "Bag World", SellerRating: 85, FetchedAt: base},
		{ID: 4, CategoryEN: "Men's Sneakers", RetailPrice: 60, DiscountPct: 24.9, Brand: "Nike", SellerName: "MegaMart", SellerRating: 96, MaxInstallmentMonths: 12, FetchedAt: base},
		{ID: 5, CategoryEN: "Men's Sneakers", RetailPrice: 150, DiscountPct: 25, Brand: "Adidas", SellerName: "Bag World", SellerRating: 90, RatingValue: 3.8, MaxInstallmentMonths: 18, FetchedAt: base.Add(2 * time.Hour)},
		{ID: 6, CategoryEN: "Men's Sneakers", RetailPrice: 250, DiscountPct: 50, Brand: "", SellerName: "", MaxInstallmentMonths: 7, FetchedAt: base},
		{ID: 7, CategoryEN: "Men's Jeans", RetailPrice: 30, DiscountPct: 55, Brand: "nan", SellerName: "Denim Hub", SellerRating: 99, MaxInstallmentMonths: 24, FetchedAt: base},
		{ID: 8, CategoryEN: "Men's Jeans", RetailPrice: 8, Brand: "Zara", SellerName: "Denim Hub", SellerRating: 99, FetchedAt: base},
	}
}

func TestInsightOverview(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	o := r.Overview
	if o.TotalListings != 8 {
		t.Errorf("TotalListings: got %d, want 8", o.TotalListings)
	}
	if o.TotalSellers != 3 {
		t.Errorf("TotalSellers: got %d, want 3", o.TotalSellers)
	}
	if o.TotalCategories != 3 {
		t.Errorf("TotalCategories: got %d, want 3", o.TotalCategories)
	}
	if o.AveragePrice != 79.71 {
		t.Errorf("AveragePrice: got %.2f, want 79.71", o.AveragePrice)
	}
	if o.MedianPrice != 40 {
		t.Errorf("MedianPrice: got %.2f, want 40", o.MedianPrice)
	}
	if o.DiscountedShare != 62.5 {
		t.Errorf("DiscountedShare: got %.1f, want 62.5", o.DiscountedShare)
	}
	if o.BrandedShare != 50 {
		t.Errorf("BrandedShare: got %.1f, want 50", o.BrandedShare)
	}
	if o.ReviewedShare != 25 {
		t.Errorf("ReviewedShare: got %.1f, want 25", o.ReviewedShare)
	}
	if o.DominantTerm != "18 mo" {
		t.Errorf("DominantTerm: got %q, want %q", o.DominantTerm, "18 mo")
	}
	if o.DominantTermShare != 42.9 {
		t.Errorf("DominantTermShare: got %.1f, want 42.9", o.DominantTermShare)
	}
}

func TestInsightCategoryVolume(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	if len(r.CategoryVolume) != 3 {
		t.Fatalf("CategoryVolume rows: got %d, want 3", len(r.CategoryVolume))
	}
	// 3-3 tie between Men's Sneakers and Shoulder Bags resolves by name.
	if r.CategoryVolume[0].Name != "Men's Sneakers" || r.CategoryVolume[0].Count != 3 {
		t.Errorf("rank 1: got %q/%d", r.CategoryVolume[0].Name, r.CategoryVolume[0].Count)
	}
	if r.CategoryVolume[1].Name != "Shoulder Bags" || r.CategoryVolume[1].Count != 3 {
		t.Errorf("rank 2: got %q/%d", r.CategoryVolume[1].Name, r.CategoryVolume[1].Count)
	}
	if r.CategoryVolume[2].Name != "Men's Jeans" || r.CategoryVolume[2].Count != 2 {
		t.Errorf("rank 3: got %q/%d", r.CategoryVolume[2].Name, r.CategoryVolume[2].Count)
	}
	if r.CategoryVolume[0].Share != 37.5 {
		t.Errorf("rank 1 share: got %.1f, want 37.5", r.CategoryVolume[0].Share)
	}
}

func TestInsightPriceTiers(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	want := map[string]int{
		"Under 10": 1, "10-25": 1, "25-50": 2, "50-100": 1, "100-200": 1, "200+": 1,
	}
	if len(r.PriceTiers) != 6 {
		t.Fatalf("PriceTiers rows: got %d, want 6", len(r.PriceTiers))
	}

	sum := 0.0
	for _, row := range r.PriceTiers {
		if row.Count != want[row.Tier] {
			t.Errorf("tier %q: got %d, want %d", row.Tier, row.Count, want[row.Tier])
		}
		sum += row.Share
	}
	// The unpriced listing is excluded from the denominator, so the 7
	// priced listings alone make up the whole histogram.
	if sum < 99.5 || sum > 100.5 {
		t.Errorf("price tier shares sum to %.1f, want ~100", sum)
	}
}

func TestInsightDiscountTiers(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	want := map[string]int{
		"No Discount": 3, "1-10%": 1, "11-24%": 1, "25-50%": 2, "50%+": 1,
	}
	total := 0
	for _, row := range r.DiscountTiers {
		if row.Count != want[row.Tier] {
			t.Errorf("tier %q: got %d, want %d", row.Tier, row.Count, want[row.Tier])
		}
		total += row.Count
	}
	// Every listing has a discount tier, priced or not.
	if total != 8 {
		t.Errorf("discount tier counts sum to %d, want 8", total)
	}
	if r.DiscountTiers[0].Share != 37.5 {
		t.Errorf("No Discount share: got %.1f, want 37.5", r.DiscountTiers[0].Share)
	}
}

func TestPriceTierBoundaries(t *testing.T) {
	tests := []struct {
		price  float64
		want   string
		wantOK bool
	}{
		{0, "", false},
		{0.01, "Under 10", true},
		{10, "Under 10", true},
		{10.01, "10-25", true},
		{25, "10-25", true},
		{50, "25-50", true},
		{100, "50-100", true},
		{200, "100-200", true},
		{200.01, "200+", true},
	}

	for _, tt := range tests {
		got, ok := priceTier(tt.price)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("priceTier(%.2f) = %q/%v; want %q/%v", tt.price, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDiscountTierBoundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "No Discount"},
		{0.1, "1-10%"},
		{10, "1-10%"},
		{10.1, "11-24%"},
		{24.9, "11-24%"},
		{25, "25-50%"},
		{50, "25-50%"},
		{50.1, "50%+"},
		{99.9, "50%+"},
	}

	for _, tt := range tests {
		if got := discountTier(tt.pct); got != tt.want {
			t.Errorf("discountTier(%.1f) = %q; want %q", tt.pct, got, tt.want)
		}
	}
}

func TestInsightCategoryPricing(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	want := map[string]float64{
		"Shoulder Bags":  30,     // priced listings only: (20+40)/2
		"Men's Sneakers": 153.33, // (60+150+250)/3
		"Men's Jeans":    19,     // (30+8)/2
	}
	for _, row := range r.CategoryPricing.Rows {
		if row.AvgPrice != want[row.Name] {
			t.Errorf("%s avg price: got %.2f, want %.2f", row.Name, row.AvgPrice, want[row.Name])
		}
	}
	if r.CategoryPricing.CatalogMedian != 40 {
		t.Errorf("CatalogMedian: got %.2f, want 40", r.CategoryPricing.CatalogMedian)
	}
}

func TestInsightInstallments(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	want := map[string]int{
		"None": 2, "3 mo": 0, "6 mo": 0, "12 mo": 1, "18 mo": 3, "24 mo": 1,
	}
	if len(r.Installments) != 6 {
		t.Fatalf("Installments rows: got %d, want 6", len(r.Installments))
	}

	total := 0
	for _, row := range r.Installments {
		if row.Count != want[row.Tier] {
			t.Errorf("term %q: got %d, want %d", row.Tier, row.Count, want[row.Tier])
		}
		total += row.Count
	}
	// The 7-month listing falls outside the standard ladder and is
	// excluded from the denominator too.
	if total != 7 {
		t.Errorf("installment counts sum to %d, want 7", total)
	}
}

func TestInsightTopSellers(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	if len(r.TopSellers) != 3 {
		t.Fatalf("TopSellers rows: got %d, want 3", len(r.TopSellers))
	}
	if r.TopSellers[0].Name != "MegaMart" || r.TopSellers[0].Count != 3 {
		t.Errorf("rank 1: got %q/%d, want MegaMart/3", r.TopSellers[0].Name, r.TopSellers[0].Count)
	}
	if r.TopSellers[1].Name != "Bag World" {
		t.Errorf("rank 2: got %q, want Bag World (2-2 tie resolves by name)", r.TopSellers[1].Name)
	}
	// Bag World appears first with rating 85 and later with 90; the
	// first-seen value is the one reported.
	if r.TopSellers[1].Rating != 85 {
		t.Errorf("Bag World rating: got %.0f, want first-seen 85", r.TopSellers[1].Rating)
	}
	if r.TopSellers[0].Share != 37.5 {
		t.Errorf("rank 1 share: got %.1f, want 37.5", r.TopSellers[0].Share)
	}
}

func TestInsightBrands(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	b := r.Brands
	if b.NamedCount != 4 || b.NoBrandCount != 4 {
		t.Errorf("brand split: got %d named / %d unbranded, want 4/4", b.NamedCount, b.NoBrandCount)
	}
	if b.NamedShare != 50 || b.NoBrandShare != 50 {
		t.Errorf("brand shares: got %.1f/%.1f, want 50/50", b.NamedShare, b.NoBrandShare)
	}
	if len(b.TopBrands) != 3 {
		t.Fatalf("TopBrands rows: got %d, want 3", len(b.TopBrands))
	}
	if b.TopBrands[0].Name != "Nike" || b.TopBrands[0].Count != 2 {
		t.Errorf("top brand: got %q/%d, want Nike/2", b.TopBrands[0].Name, b.TopBrands[0].Count)
	}
	if b.TopBrands[1].Name != "Adidas" {
		t.Errorf("rank 2 brand: got %q, want Adidas (1-1 tie resolves by name)", b.TopBrands[1].Name)
	}
}

func TestInsightReviewCoverage(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	want := map[string]struct {
		reviewed int
		coverage float64
	}{
		"Shoulder Bags":  {1, 33.3},
		"Men's Sneakers": {1, 33.3},
		"Men's Jeans":    {0, 0},
	}
	if len(r.ReviewCoverage) != 3 {
		t.Fatalf("ReviewCoverage rows: got %d, want 3", len(r.ReviewCoverage))
	}
	for _, row := range r.ReviewCoverage {
		w := want[row.Name]
		if row.Reviewed != w.reviewed || row.Coverage != w.coverage {
			t.Errorf("%s: got %d reviewed / %.1f%%, want %d / %.1f%%",
				row.Name, row.Reviewed, row.Coverage, w.reviewed, w.coverage)
		}
	}
}

func TestInsightDiscountPricing(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	want := map[string]struct {
		avg   float64
		count int
	}{
		"No Discount": {14, 3}, // unpriced listing counts, but not in the average
		"1-10%":       {40, 1},
		"11-24%":      {60, 1},
		"25-50%":      {200, 2},
		"50%+":        {30, 1},
	}
	for _, row := range r.DiscountPricing {
		w := want[row.Tier]
		if row.AvgPrice != w.avg || row.Count != w.count {
			t.Errorf("tier %q: got avg %.2f count %d, want avg %.2f count %d",
				row.Tier, row.AvgPrice, row.Count, w.avg, w.count)
		}
	}
}

func TestInsightSellerConcentration(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	sc := r.SellerConcentration
	if sc.TotalSellers != 3 {
		t.Errorf("TotalSellers: got %d, want 3", sc.TotalSellers)
	}
	if len(sc.Cohorts) != 6 {
		t.Fatalf("Cohorts: got %d, want 6", len(sc.Cohorts))
	}
	// Only 3 sellers exist, so every cohort saturates at the 7 listings
	// that have a seller; the sellerless listing keeps the curve below
	// 100%.
	for _, c := range sc.Cohorts {
		if c.Listings != 7 {
			t.Errorf("top-%d listings: got %d, want 7", c.TopN, c.Listings)
		}
		if c.CumulativeShare != 87.5 {
			t.Errorf("top-%d share: got %.1f, want 87.5", c.TopN, c.CumulativeShare)
		}
	}
	if sc.Cohorts[0].TopN != 5 || sc.Cohorts[5].TopN != 50 {
		t.Errorf("cohort sizes: got %d..%d, want 5..50", sc.Cohorts[0].TopN, sc.Cohorts[5].TopN)
	}
}

func TestInsightProvenance(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(snapshot())

	p := r.Provenance
	if p.TotalProducts != 8 || p.TotalSellers != 3 || p.TotalCategories != 3 {
		t.Errorf("provenance totals: got %d/%d/%d, want 8/3/3",
			p.TotalProducts, p.TotalSellers, p.TotalCategories)
	}

	wantCollected := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	if !p.CollectedAt.Equal(wantCollected) {
		t.Errorf("CollectedAt: got %v, want latest fetch time %v", p.CollectedAt, wantCollected)
	}
	if p.PreparedAt.IsZero() {
		t.Error("PreparedAt should be set")
	}
}

func TestInsightEmptyInput(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(nil)

	if r.Overview.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
	if len(r.CategoryVolume) != 0 || len(r.TopSellers) != 0 {
		t.Errorf("expected empty sections for empty input")
	}
}
