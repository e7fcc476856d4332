package services

import (
	"fmt"
	"math"

	"umico-analytics/models"
	"umico-analytics/utils"
)

// shareTolerance absorbs the rounding drift of per-bucket percentages.
const shareTolerance = 0.5

// ReportVerifier checks a generated report for internal consistency
// before it is written out: histogram shares must add up to 100, the
// concentration curve must rise monotonically, and every section must
// agree with the overview totals.
type ReportVerifier struct {
	logger *utils.Logger
}

func NewReportVerifier(logger *utils.Logger) *ReportVerifier {
	return &ReportVerifier{logger: logger}
}

// Verify returns one error per violated consistency rule. An empty
// slice means the report is safe to publish.
func (v *ReportVerifier) Verify(r *models.AnalyticsReport) []error {
	var errs []error

	errs = append(errs, v.checkHistogram("price tiers", r.PriceTiers)...)
	errs = append(errs, v.checkHistogram("discount tiers", r.DiscountTiers)...)
	errs = append(errs, v.checkHistogram("installments", r.Installments)...)
	errs = append(errs, v.checkCategoryShares(r.CategoryVolume)...)
	errs = append(errs, v.checkConcentration(r)...)
	errs = append(errs, v.checkCoverage(r.ReviewCoverage)...)
	errs = append(errs, v.checkRankings(r)...)
	errs = append(errs, v.checkTotals(r)...)

	if len(errs) == 0 {
		v.logger.Info("[verify] Report passed all consistency checks")
	} else {
		for _, err := range errs {
			v.logger.Error("[verify] %v", err)
		}
	}
	return errs
}

// checkHistogram validates one bucket family: non-negative counts and,
// when the family holds any listings, shares that sum to 100.
func (v *ReportVerifier) checkHistogram(name string, rows []models.TierCount) []error {
	var errs []error

	total := 0
	shareSum := 0.0
	for _, row := range rows {
		if row.Count < 0 {
			errs = append(errs, fmt.Errorf("%s: bucket %q has negative count %d", name, row.Tier, row.Count))
		}
		if row.Share < 0 || row.Share > 100 {
			errs = append(errs, fmt.Errorf("%s: bucket %q share %.1f%% out of range", name, row.Tier, row.Share))
		}
		total += row.Count
		shareSum += row.Share
	}

	if total > 0 && math.Abs(shareSum-100) > shareTolerance {
		errs = append(errs, fmt.Errorf("%s: shares sum to %.1f%%, want 100±%.1f", name, shareSum, shareTolerance))
	}
	return errs
}

// checkCategoryShares validates the top-category table. The table can
// omit small categories, so its shares sum to at most 100 rather than
// exactly.
func (v *ReportVerifier) checkCategoryShares(rows []models.CategoryVolume) []error {
	var errs []error

	total := 0
	shareSum := 0.0
	for _, row := range rows {
		if row.Share < 0 || row.Share > 100 {
			errs = append(errs, fmt.Errorf("category volume: %q share %.1f%% out of range", row.Name, row.Share))
		}
		total += row.Count
		shareSum += row.Share
	}

	if total > 0 && shareSum-100 > shareTolerance {
		errs = append(errs, fmt.Errorf("category volume: shares sum to %.1f%%, want at most 100+%.1f", shareSum, shareTolerance))
	}
	return errs
}

// checkConcentration validates the seller concentration curve: larger
// cohorts can never hold a smaller share, and no cohort can exceed the
// whole catalog.
func (v *ReportVerifier) checkConcentration(r *models.AnalyticsReport) []error {
	var errs []error

	cohorts := r.SellerConcentration.Cohorts
	for i, c := range cohorts {
		if c.CumulativeShare < 0 || c.CumulativeShare > 100 {
			errs = append(errs, fmt.Errorf("concentration: top-%d share %.1f%% out of range", c.TopN, c.CumulativeShare))
		}
		if c.Listings > r.Overview.TotalListings {
			errs = append(errs, fmt.Errorf("concentration: top-%d holds %d listings, catalog has %d", c.TopN, c.Listings, r.Overview.TotalListings))
		}
		if i == 0 {
			continue
		}
		prev := cohorts[i-1]
		if c.TopN <= prev.TopN {
			errs = append(errs, fmt.Errorf("concentration: cohorts out of order (top-%d after top-%d)", c.TopN, prev.TopN))
		}
		if c.Listings < prev.Listings {
			errs = append(errs, fmt.Errorf("concentration: top-%d holds fewer listings than top-%d", c.TopN, prev.TopN))
		}
		if c.CumulativeShare+shareTolerance < prev.CumulativeShare {
			errs = append(errs, fmt.Errorf("concentration: share drops from %.1f%% to %.1f%% at top-%d", prev.CumulativeShare, c.CumulativeShare, c.TopN))
		}
	}

	// The top-seller table and the top-10 cohort rank the same sellers,
	// so their listing totals must agree.
	if len(r.TopSellers) > 0 {
		sum := 0
		for _, s := range r.TopSellers {
			sum += s.Count
		}
		for _, c := range cohorts {
			if c.TopN == topSellers && c.Listings != sum {
				errs = append(errs, fmt.Errorf("concentration: top-%d cohort holds %d listings, seller table sums to %d", c.TopN, c.Listings, sum))
			}
		}
	}
	return errs
}

func (v *ReportVerifier) checkCoverage(rows []models.CategoryReviews) []error {
	var errs []error
	for _, row := range rows {
		if row.Reviewed < 0 || row.Reviewed > row.Total {
			errs = append(errs, fmt.Errorf("review coverage: %q has %d reviewed of %d total", row.Name, row.Reviewed, row.Total))
		}
		if row.Coverage < 0 || row.Coverage > 100 {
			errs = append(errs, fmt.Errorf("review coverage: %q coverage %.1f%% out of range", row.Name, row.Coverage))
		}
	}
	return errs
}

// checkRankings validates that every top-N table is actually sorted.
func (v *ReportVerifier) checkRankings(r *models.AnalyticsReport) []error {
	var errs []error

	for i := 1; i < len(r.CategoryVolume); i++ {
		if r.CategoryVolume[i].Count > r.CategoryVolume[i-1].Count {
			errs = append(errs, fmt.Errorf("category volume: rank %d out of order", i+1))
		}
	}
	for i := 1; i < len(r.TopSellers); i++ {
		if r.TopSellers[i].Count > r.TopSellers[i-1].Count {
			errs = append(errs, fmt.Errorf("top sellers: rank %d out of order", i+1))
		}
	}
	for i := 1; i < len(r.Brands.TopBrands); i++ {
		if r.Brands.TopBrands[i].Count > r.Brands.TopBrands[i-1].Count {
			errs = append(errs, fmt.Errorf("top brands: rank %d out of order", i+1))
		}
	}
	return errs
}

// checkTotals cross-checks each section against the overview block.
func (v *ReportVerifier) checkTotals(r *models.AnalyticsReport) []error {
	var errs []error
	total := r.Overview.TotalListings

	if got := r.Brands.NoBrandCount + r.Brands.NamedCount; got != total {
		errs = append(errs, fmt.Errorf("brands: no-brand %d + named %d = %d, want catalog total %d",
			r.Brands.NoBrandCount, r.Brands.NamedCount, got, total))
	}

	discSum := 0
	for _, row := range r.DiscountTiers {
		discSum += row.Count
	}
	if len(r.DiscountTiers) > 0 && discSum != total {
		errs = append(errs, fmt.Errorf("discount tiers: bucket counts sum to %d, want catalog total %d", discSum, total))
	}

	for _, cv := range r.CategoryVolume {
		if cv.Count > total {
			errs = append(errs, fmt.Errorf("category volume: %q count %d exceeds catalog total %d", cv.Name, cv.Count, total))
		}
	}

	if r.SellerConcentration.TotalSellers != r.Overview.TotalSellers {
		errs = append(errs, fmt.Errorf("seller totals disagree: concentration has %d, overview has %d",
			r.SellerConcentration.TotalSellers, r.Overview.TotalSellers))
	}
	if r.Provenance.TotalProducts != total {
		errs = append(errs, fmt.Errorf("provenance: %d products, overview has %d", r.Provenance.TotalProducts, total))
	}
	if r.Provenance.TotalSellers != r.Overview.TotalSellers {
		errs = append(errs, fmt.Errorf("provenance: %d sellers, overview has %d", r.Provenance.TotalSellers, r.Overview.TotalSellers))
	}
	if r.Provenance.TotalCategories != r.Overview.TotalCategories {
		errs = append(errs, fmt.Errorf("provenance: %d categories, overview has %d", r.Provenance.TotalCategories, r.Overview.TotalCategories))
	}

	for _, pct := range []struct {
		name string
		val  float64
	}{
		{"discounted share", r.Overview.DiscountedShare},
		{"branded share", r.Overview.BrandedShare},
		{"reviewed share", r.Overview.ReviewedShare},
	} {
		if pct.val < 0 || pct.val > 100 {
			errs = append(errs, fmt.Errorf("overview: %s %.1f%% out of range", pct.name, pct.val))
		}
	}

	return errs
}
