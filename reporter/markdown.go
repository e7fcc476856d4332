package reporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"umico-analytics/models"
)

// Chart images referenced by report.md. The images themselves are rendered
// by external charting tooling into a charts/ directory next to the report;
// the markdown only links them by relative path.
const (
	chartCategoryVolume      = "charts/01_category_volume.png"
	chartPriceArchitecture   = "charts/02_price_architecture.png"
	chartDiscountLandscape   = "charts/03_discount_landscape.png"
	chartCategoryPricing     = "charts/04_category_pricing.png"
	chartInstallmentPlans    = "charts/05_installment_plans.png"
	chartTopSellers          = "charts/06_top_sellers.png"
	chartBrandAttribution    = "charts/07_brand_attribution.png"
	chartReviewCoverage      = "charts/08_review_coverage.png"
	chartDiscountPrice       = "charts/09_discount_price_relationship.png"
	chartSellerConcentration = "charts/10_seller_concentration.png"
)

// renderMarkdown produces report.md: title, executive summary, the six
// analytical sections with their chart references and figure tables, and
// the closing data-reference table. Figures only, no narrative.
func renderMarkdown(r *models.AnalyticsReport) []byte {
	var b strings.Builder

	b.WriteString("# Clothing Catalog Analytics\n")

	writeExecutiveSummary(&b, r)
	writeCategoryLandscape(&b, r)
	writePriceArchitecture(&b, r)
	writeDiscountLandscape(&b, r)
	writeFinancing(&b, r)
	writeTrustSignals(&b, r)
	writeSellerLandscape(&b, r)
	writeDataReference(&b, r)

	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}

func writeExecutiveSummary(b *strings.Builder, r *models.AnalyticsReport) {
	o := r.Overview
	section(b, "Executive Summary")
	table(b, []string{"Metric", "Value"}, [][]string{
		{"Total listings", count(o.TotalListings)},
		{"Distinct sellers", count(o.TotalSellers)},
		{"Categories", count(o.TotalCategories)},
		{"Average price", money(o.AveragePrice) + " AZN"},
		{"Median price", money(o.MedianPrice) + " AZN"},
		{"Listings discounted", pct(o.DiscountedShare)},
		{"Listings with a named brand", pct(o.BrandedShare)},
		{"Listings with reviews", pct(o.ReviewedShare)},
		{"Dominant installment term", fmt.Sprintf("%s (%s)", o.DominantTerm, pct(o.DominantTermShare))},
	})
}

func writeCategoryLandscape(b *strings.Builder, r *models.AnalyticsReport) {
	section(b, "Category Landscape")
	chart(b, "Listings per category", chartCategoryVolume)

	rows := make([][]string, 0, len(r.CategoryVolume))
	for _, c := range r.CategoryVolume {
		rows = append(rows, []string{c.Name, count(c.Count), pct(c.Share)})
	}
	table(b, []string{"Category", "Listings", "Share"}, rows)
}

func writePriceArchitecture(b *strings.Builder, r *models.AnalyticsReport) {
	section(b, "Price Architecture")
	chart(b, "Price tier distribution", chartPriceArchitecture)

	rows := make([][]string, 0, len(r.PriceTiers))
	for _, t := range r.PriceTiers {
		rows = append(rows, []string{t.Tier, count(t.Count), pct(t.Share)})
	}
	table(b, []string{"Price tier (AZN)", "Listings", "Share"}, rows)

	chart(b, "Average price per category", chartCategoryPricing)

	rows = rows[:0]
	for _, c := range r.CategoryPricing.Rows {
		rows = append(rows, []string{c.Name, money(c.AvgPrice), count(c.Count)})
	}
	table(b, []string{"Category", "Avg price (AZN)", "Listings"}, rows)
	fmt.Fprintf(b, "Catalog median: %s AZN\n\n", money(r.CategoryPricing.CatalogMedian))
}

func writeDiscountLandscape(b *strings.Builder, r *models.AnalyticsReport) {
	section(b, "Discount Landscape")
	chart(b, "Discount depth distribution", chartDiscountLandscape)

	rows := make([][]string, 0, len(r.DiscountTiers))
	for _, t := range r.DiscountTiers {
		rows = append(rows, []string{t.Tier, count(t.Count), pct(t.Share)})
	}
	table(b, []string{"Discount tier", "Listings", "Share"}, rows)

	chart(b, "Average price per discount tier", chartDiscountPrice)

	rows = rows[:0]
	for _, d := range r.DiscountPricing {
		rows = append(rows, []string{d.Tier, money(d.AvgPrice), count(d.Count)})
	}
	table(b, []string{"Discount tier", "Avg price (AZN)", "Listings"}, rows)
}

func writeFinancing(b *strings.Builder, r *models.AnalyticsReport) {
	section(b, "Financing")
	chart(b, "Installment term distribution", chartInstallmentPlans)

	rows := make([][]string, 0, len(r.Installments))
	for _, t := range r.Installments {
		rows = append(rows, []string{t.Tier, count(t.Count), pct(t.Share)})
	}
	table(b, []string{"Installment term", "Listings", "Share"}, rows)
}

func writeTrustSignals(b *strings.Builder, r *models.AnalyticsReport) {
	section(b, "Trust Signals")
	chart(b, "Brand attribution", chartBrandAttribution)

	table(b, []string{"Attribution", "Listings", "Share"}, [][]string{
		{"Named brand", count(r.Brands.NamedCount), pct(r.Brands.NamedShare)},
		{"No brand", count(r.Brands.NoBrandCount), pct(r.Brands.NoBrandShare)},
	})

	rows := make([][]string, 0, len(r.Brands.TopBrands))
	for _, br := range r.Brands.TopBrands {
		rows = append(rows, []string{br.Name, count(br.Count)})
	}
	table(b, []string{"Brand", "Listings"}, rows)

	chart(b, "Review coverage per category", chartReviewCoverage)

	rows = rows[:0]
	for _, c := range r.ReviewCoverage {
		rows = append(rows, []string{c.Name, count(c.Reviewed), count(c.Total), pct(c.Coverage)})
	}
	table(b, []string{"Category", "Reviewed", "Total", "Coverage"}, rows)
}

func writeSellerLandscape(b *strings.Builder, r *models.AnalyticsReport) {
	section(b, "Seller Landscape")
	chart(b, "Top sellers by listing volume", chartTopSellers)

	rows := make([][]string, 0, len(r.TopSellers))
	for _, s := range r.TopSellers {
		rows = append(rows, []string{s.Name, count(s.Count), dec1(s.Rating), pct(s.Share)})
	}
	table(b, []string{"Seller", "Listings", "Rating", "Share"}, rows)

	chart(b, "Seller concentration curve", chartSellerConcentration)

	rows = rows[:0]
	for _, c := range r.SellerConcentration.Cohorts {
		rows = append(rows, []string{fmt.Sprintf("Top %d", c.TopN), count(c.Listings), pct(c.CumulativeShare)})
	}
	table(b, []string{"Seller cohort", "Listings", "Cumulative share"}, rows)
	fmt.Fprintf(b, "Distinct sellers: %s\n\n", count(r.SellerConcentration.TotalSellers))
}

func writeDataReference(b *strings.Builder, r *models.AnalyticsReport) {
	p := r.Provenance
	section(b, "Data Reference")

	rows := [][]string{
		{"Data source", p.DataSource},
		{"Category scope", p.CategoryScope},
		{"Total products analyzed", count(p.TotalProducts)},
		{"Total sellers", count(p.TotalSellers)},
		{"Total categories", count(p.TotalCategories)},
		{"Data collected", day(p.CollectedAt)},
		{"Report prepared", day(p.PreparedAt)},
	}
	if p.RunID != "" {
		rows = append(rows, []string{"Ingest run", p.RunID})
	}
	table(b, []string{"Field", "Value"}, rows)
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
}

func chart(b *strings.Builder, alt, path string) {
	fmt.Fprintf(b, "![%s](%s)\n\n", alt, path)
}

// table writes a markdown table. The first column is a label and stays
// left-aligned, every other column holds figures and is right-aligned.
func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")

	seps := make([]string, len(header))
	for i := range seps {
		if i == 0 {
			seps[i] = "---"
		} else {
			seps[i] = "---:"
		}
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func count(n int) string {
	return groupThousands(strconv.Itoa(n))
}

// groupThousands inserts comma separators into a non-negative integer
// string: "62633" becomes "62,633".
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func dec1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func pct(v float64) string {
	return dec1(v) + "%"
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
