package reporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"umico-analytics/models"
)

// sheet is one worksheet of report.xlsx: a header row plus data rows.
type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// buildWorkbook lays the report out as one worksheet per statistic table.
// Counts and shares are written as native numbers so spreadsheet formulas
// work on them directly.
func buildWorkbook(r *models.AnalyticsReport) (*excelize.File, error) {
	xl := excelize.NewFile()

	sheets := []sheet{
		{"Overview", []string{"Metric", "Value"}, overviewRows(r)},
		{"Category Volume", []string{"Category", "Listings", "Share %"}, volumeRows(r)},
		{"Price Tiers", []string{"Price Tier (AZN)", "Listings", "Share %"}, tierRows(r.PriceTiers)},
		{"Discount Tiers", []string{"Discount Tier", "Listings", "Share %"}, tierRows(r.DiscountTiers)},
		{"Category Pricing", []string{"Category", "Avg Price (AZN)", "Listings"}, categoryPricingRows(r)},
		{"Installments", []string{"Term", "Listings", "Share %"}, tierRows(r.Installments)},
		{"Top Sellers", []string{"Seller", "Listings", "Rating", "Share %"}, sellerRows(r)},
		{"Brand Split", []string{"Attribution", "Listings", "Share %"}, brandSplitRows(r)},
		{"Top Brands", []string{"Brand", "Listings"}, brandRows(r)},
		{"Review Coverage", []string{"Category", "Reviewed", "Total", "Coverage %"}, coverageRows(r)},
		{"Discount Pricing", []string{"Discount Tier", "Avg Price (AZN)", "Listings"}, discountPricingRows(r)},
		{"Seller Concentration", []string{"Top N", "Listings", "Cumulative Share %"}, concentrationRows(r)},
		{"Provenance", []string{"Field", "Value"}, provenanceRows(r)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := xl.SetSheetName(xl.GetSheetName(0), s.name); err != nil {
				return nil, fmt.Errorf("report: rename sheet %q: %w", s.name, err)
			}
		} else if _, err := xl.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("report: create sheet %q: %w", s.name, err)
		}

		if err := xl.SetSheetRow(s.name, "A1", &s.header); err != nil {
			return nil, fmt.Errorf("report: write header of %q: %w", s.name, err)
		}
		for ri, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, ri+2)
			if err != nil {
				return nil, fmt.Errorf("report: cell name for row %d: %w", ri+2, err)
			}
			if err := xl.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, fmt.Errorf("report: write row %d of %q: %w", ri+2, s.name, err)
			}
		}
	}

	return xl, nil
}

func overviewRows(r *models.AnalyticsReport) [][]any {
	o := r.Overview
	return [][]any{
		{"Total Listings", o.TotalListings},
		{"Total Sellers", o.TotalSellers},
		{"Total Categories", o.TotalCategories},
		{"Average Price (AZN)", o.AveragePrice},
		{"Median Price (AZN)", o.MedianPrice},
		{"Discounted Share %", o.DiscountedShare},
		{"Branded Share %", o.BrandedShare},
		{"Reviewed Share %", o.ReviewedShare},
		{"Dominant Installment Term", o.DominantTerm},
		{"Dominant Term Share %", o.DominantTermShare},
	}
}

func volumeRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.CategoryVolume))
	for _, c := range r.CategoryVolume {
		rows = append(rows, []any{c.Name, c.Count, c.Share})
	}
	return rows
}

func tierRows(tiers []models.TierCount) [][]any {
	rows := make([][]any, 0, len(tiers))
	for _, t := range tiers {
		rows = append(rows, []any{t.Tier, t.Count, t.Share})
	}
	return rows
}

func categoryPricingRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.CategoryPricing.Rows)+1)
	for _, c := range r.CategoryPricing.Rows {
		rows = append(rows, []any{c.Name, c.AvgPrice, c.Count})
	}
	rows = append(rows, []any{"Catalog Median", r.CategoryPricing.CatalogMedian, nil})
	return rows
}

func sellerRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.TopSellers))
	for _, s := range r.TopSellers {
		rows = append(rows, []any{s.Name, s.Count, s.Rating, s.Share})
	}
	return rows
}

func brandSplitRows(r *models.AnalyticsReport) [][]any {
	return [][]any{
		{"Named Brand", r.Brands.NamedCount, r.Brands.NamedShare},
		{"No Brand", r.Brands.NoBrandCount, r.Brands.NoBrandShare},
	}
}

func brandRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.Brands.TopBrands))
	for _, b := range r.Brands.TopBrands {
		rows = append(rows, []any{b.Name, b.Count})
	}
	return rows
}

func coverageRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.ReviewCoverage))
	for _, c := range r.ReviewCoverage {
		rows = append(rows, []any{c.Name, c.Reviewed, c.Total, c.Coverage})
	}
	return rows
}

func discountPricingRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.DiscountPricing))
	for _, d := range r.DiscountPricing {
		rows = append(rows, []any{d.Tier, d.AvgPrice, d.Count})
	}
	return rows
}

func concentrationRows(r *models.AnalyticsReport) [][]any {
	rows := make([][]any, 0, len(r.SellerConcentration.Cohorts))
	for _, c := range r.SellerConcentration.Cohorts {
		rows = append(rows, []any{c.TopN, c.Listings, c.CumulativeShare})
	}
	return rows
}

func provenanceRows(r *models.AnalyticsReport) [][]any {
	p := r.Provenance
	rows := [][]any{
		{"Data Source", p.DataSource},
		{"Category Scope", p.CategoryScope},
		{"Total Products Analyzed", p.TotalProducts},
		{"Total Sellers", p.TotalSellers},
		{"Total Categories", p.TotalCategories},
		{"Data Collected", day(p.CollectedAt)},
		{"Report Prepared", day(p.PreparedAt)},
	}
	if p.RunID != "" {
		rows = append(rows, []any{"Ingest Run", p.RunID})
	}
	return rows
}
