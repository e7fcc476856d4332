package models

import "time"

// RawListing holds one product exactly as parsed from a catalog API page,
// before any cleaning. Category names are still in the source language and
// no derived fields are filled in.
type RawListing struct {
	ID                   int64
	Name                 string
	Brand                string
	CategoryID           int64
	CategoryName         string
	Status               string
	RetailPrice          float64
	OldPrice             float64
	SellerName           string
	SellerRating         float64
	RatingValue          float64
	ReviewCount          int
	InStock              bool
	InstallmentEnabled   bool
	MaxInstallmentMonths int
	ImageURL             string
	ProductURL           string
	Page                 int
	FetchedAt            time.Time
}

// Listing is the cleaned, validated snapshot record ready for storage and
// aggregation. A RetailPrice of 0 means the product carried no usable price
// and is excluded from price statistics.
type Listing struct {
	ID                   int64     `db:"id" validate:"gt=0"`
	Name                 string    `db:"name"`
	Brand                string    `db:"brand"`
	CategoryID           int64     `db:"category_id"`
	CategoryName         string    `db:"category_name"`
	CategoryEN           string    `db:"category_en"`
	Status               string    `db:"status"`
	RetailPrice          float64   `db:"retail_price" validate:"gte=0"`
	OldPrice             float64   `db:"old_price" validate:"gte=0"`
	DiscountPct          float64   `db:"discount_pct" validate:"gte=0,lte=100"`
	SellerName           string    `db:"seller_name"`
	SellerRating         float64   `db:"seller_rating" validate:"gte=0,lte=100"`
	RatingValue          float64   `db:"rating_value" validate:"gte=0,lte=5"`
	ReviewCount          int       `db:"review_count" validate:"gte=0"`
	InStock              bool      `db:"in_stock"`
	InstallmentEnabled   bool      `db:"installment_enabled"`
	MaxInstallmentMonths int       `db:"max_installment_months" validate:"gte=0"`
	ImageURL             string    `db:"image_url"`
	ProductURL           string    `db:"product_url"`
	FetchedAt            time.Time `db:"fetched_at"`
}

// HasBrand reports whether the listing carries a real brand name rather
// than one of the marketplace's "unbranded" placeholders.
func (l *Listing) HasBrand() bool {
	switch l.Brand {
	case "", "No Brand", "No brand", "nan":
		return false
	}
	return true
}

// HasReview reports whether at least one customer review exists.
func (l *Listing) HasReview() bool {
	return l.RatingValue > 0
}

// Discounted reports whether the listing advertises any markdown at all.
func (l *Listing) Discounted() bool {
	return l.DiscountPct > 0
}

// IngestRun records the provenance of one catalog collection run.
type IngestRun struct {
	RunID           string    `db:"run_id"`
	BaseURL         string    `db:"base_url"`
	CategoryID      int64     `db:"category_id"`
	TotalAdvertised int       `db:"total_advertised"`
	PagesTotal      int       `db:"pages_total"`
	PagesFailed     int       `db:"pages_failed"`
	ProductsParsed  int       `db:"products_parsed"`
	ProductsClean   int       `db:"products_clean"`
	ProductsDropped int       `db:"products_dropped"`
	StartedAt       time.Time `db:"started_at"`
	FinishedAt      time.Time `db:"finished_at"`
}

// Duration returns the wall-clock length of the run.
func (r *IngestRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
