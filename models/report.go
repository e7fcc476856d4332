package models

import "time"

// AnalyticsReport holds every aggregate the catalog report cites, one
// section per statistic family, in render order.
type AnalyticsReport struct {
	Overview            Overview            `json:"overview"`
	CategoryVolume      []CategoryVolume    `json:"category_volume"`
	PriceTiers          []TierCount         `json:"price_tiers"`
	DiscountTiers       []TierCount         `json:"discount_tiers"`
	CategoryPricing     CategoryPricing     `json:"category_pricing"`
	Installments        []TierCount         `json:"installments"`
	TopSellers          []SellerStat        `json:"top_sellers"`
	Brands              BrandAttribution    `json:"brands"`
	ReviewCoverage      []CategoryReviews   `json:"review_coverage"`
	DiscountPricing     []DiscountPrice     `json:"discount_pricing"`
	SellerConcentration SellerConcentration `json:"seller_concentration"`
	Provenance          Provenance          `json:"provenance"`
}

// Overview is the executive-summary block of catalog-wide figures.
type Overview struct {
	TotalListings     int     `json:"total_listings"`
	TotalSellers      int     `json:"total_sellers"`
	TotalCategories   int     `json:"total_categories"`
	AveragePrice      float64 `json:"average_price"`
	MedianPrice       float64 `json:"median_price"`
	DiscountedShare   float64 `json:"discounted_share_pct"`
	BrandedShare      float64 `json:"branded_share_pct"`
	ReviewedShare     float64 `json:"reviewed_share_pct"`
	DominantTerm      string  `json:"dominant_installment_term"`
	DominantTermShare float64 `json:"dominant_installment_share_pct"`
}

// CategoryVolume is one category's listing count and share of the catalog.
type CategoryVolume struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share_pct"`
}

// TierCount is one bucket of a histogram: a price band, a discount band,
// or an installment term. Share is the percentage of the histogram's own
// denominator, not necessarily of the whole catalog.
type TierCount struct {
	Tier  string  `json:"tier"`
	Count int     `json:"count"`
	Share float64 `json:"share_pct"`
}

// CategoryPricing pairs per-category average prices with the catalog-wide
// median used as the reference line on the chart.
type CategoryPricing struct {
	Rows          []CategoryPrice `json:"rows"`
	CatalogMedian float64         `json:"catalog_median"`
}

// CategoryPrice is one category's average retail price.
type CategoryPrice struct {
	Name     string  `json:"name"`
	AvgPrice float64 `json:"avg_price"`
	Count    int     `json:"count"`
}

// SellerStat is one seller's listing volume and catalog share, with the
// storefront rating on record.
type SellerStat struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Rating float64 `json:"rating"`
	Share  float64 `json:"share_pct"`
}

// BrandAttribution splits the catalog into branded and unbranded listings
// and ranks the named brands.
type BrandAttribution struct {
	NoBrandCount int          `json:"no_brand_count"`
	NamedCount   int          `json:"named_count"`
	NoBrandShare float64      `json:"no_brand_share_pct"`
	NamedShare   float64      `json:"named_share_pct"`
	TopBrands    []BrandCount `json:"top_brands"`
}

// BrandCount is one named brand's listing count.
type BrandCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryReviews is one category's review coverage.
type CategoryReviews struct {
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Reviewed int     `json:"reviewed"`
	Coverage float64 `json:"coverage_pct"`
}

// DiscountPrice relates a discount tier to the average price and volume of
// the listings inside it.
type DiscountPrice struct {
	Tier     string  `json:"tier"`
	AvgPrice float64 `json:"avg_price"`
	Count    int     `json:"count"`
}

// SellerConcentration is the cumulative catalog share held by the largest
// seller cohorts.
type SellerConcentration struct {
	Cohorts      []ConcentrationPoint `json:"cohorts"`
	TotalSellers int                  `json:"total_sellers"`
}

// ConcentrationPoint is one cohort on the concentration curve: the top N
// sellers together hold CumulativeShare percent of all listings.
type ConcentrationPoint struct {
	TopN            int     `json:"top_n"`
	Listings        int     `json:"listings"`
	CumulativeShare float64 `json:"cumulative_share_pct"`
}

// Provenance mirrors the data-reference table that closes the report.
type Provenance struct {
	DataSource      string    `json:"data_source"`
	CategoryScope   string    `json:"category_scope"`
	TotalProducts   int       `json:"total_products"`
	TotalSellers    int       `json:"total_sellers"`
	TotalCategories int       `json:"total_categories"`
	CollectedAt     time.Time `json:"collected_at"`
	PreparedAt      time.Time `json:"prepared_at"`
	RunID           string    `json:"run_id,omitempty"`
}
