package services

import (
	"sort"
	"time"

	"umico-analytics/models"
	"umico-analytics/utils"
)

// Bucket orders match the order the report renders them in.
var (
	priceTierOrder    = []string{"Under 10", "10-25", "25-50", "50-100", "100-200", "200+"}
	discountTierOrder = []string{"No Discount", "1-10%", "11-24%", "25-50%", "50%+"}
	installmentTerms  = []int{0, 3, 6, 12, 18, 24}
	installmentLabels = map[int]string{
		0: "None", 3: "3 mo", 6: "6 mo", 12: "12 mo", 18: "18 mo", 24: "24 mo",
	}
	sellerCohorts = []int{5, 10, 15, 20, 25, 50}
)

const (
	topVolumeCategories = 15
	topReviewCategories = 10
	topSellers          = 10
	topBrands           = 10
)

// InsightService computes every aggregate section of the analytics
// report from a cleaned listing snapshot.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate runs all aggregations over the snapshot. Listings with a
// zero retail price stay in volume counts but are excluded from every
// price statistic; listings without a seller name stay in the catalog
// totals but form no seller group.
func (s *InsightService) Generate(listings []*models.Listing) *models.AnalyticsReport {
	report := &models.AnalyticsReport{}
	n := len(listings)
	if n == 0 {
		return report
	}

	var (
		catCounts   = make(map[string]int)
		catPriceSum = make(map[string]float64)
		catPriceN   = make(map[string]int)
		catReviewed = make(map[string]int)

		sellerCounts = make(map[string]int)
		sellerRating = make(map[string]float64)
		brandCounts  = make(map[string]int)

		priceTierCounts  = make(map[string]int)
		discTierCounts   = make(map[string]int)
		discTierPriceSum = make(map[string]float64)
		discTierPriceN   = make(map[string]int)
		termCounts       = make(map[int]int)

		prices     []float64
		priceSum   float64
		discounted int
		branded    int
		reviewed   int
		latest     time.Time
	)

	for _, l := range listings {
		cat := l.CategoryEN
		catCounts[cat]++

		if l.RetailPrice > 0 {
			prices = append(prices, l.RetailPrice)
			priceSum += l.RetailPrice
			catPriceSum[cat] += l.RetailPrice
			catPriceN[cat]++
		}
		if l.HasReview() {
			catReviewed[cat]++
			reviewed++
		}
		if l.HasBrand() {
			brandCounts[l.Brand]++
			branded++
		}
		if l.Discounted() {
			discounted++
		}

		if l.SellerName != "" {
			sellerCounts[l.SellerName]++
			// Rating of record is the one seen first, the same way a
			// reader skimming the catalog would meet it.
			if _, ok := sellerRating[l.SellerName]; !ok {
				sellerRating[l.SellerName] = l.SellerRating
			}
		}

		if tier, ok := priceTier(l.RetailPrice); ok {
			priceTierCounts[tier]++
		}

		dt := discountTier(l.DiscountPct)
		discTierCounts[dt]++
		if l.RetailPrice > 0 {
			discTierPriceSum[dt] += l.RetailPrice
			discTierPriceN[dt]++
		}

		if _, known := installmentLabels[l.MaxInstallmentMonths]; known {
			termCounts[l.MaxInstallmentMonths]++
		}

		if l.FetchedAt.After(latest) {
			latest = l.FetchedAt
		}
	}

	rankedCategories := sortedByCount(catCounts)

	report.CategoryVolume = s.categoryVolume(rankedCategories, n)
	report.PriceTiers = s.tierRows(priceTierOrder, priceTierCounts)
	report.DiscountTiers = s.tierRowsWithDenominator(discountTierOrder, discTierCounts, n)
	report.CategoryPricing = s.categoryPricing(rankedCategories, catCounts, catPriceSum, catPriceN, prices)
	report.Installments = s.installments(termCounts)
	report.TopSellers = s.topSellerStats(sellerCounts, sellerRating, n)
	report.Brands = s.brandAttribution(brandCounts, branded, n)
	report.ReviewCoverage = s.reviewCoverage(rankedCategories, catCounts, catReviewed)
	report.DiscountPricing = s.discountPricing(discTierCounts, discTierPriceSum, discTierPriceN)
	report.SellerConcentration = s.sellerConcentration(sellerCounts, n)

	report.Overview = models.Overview{
		TotalListings:   n,
		TotalSellers:    len(sellerCounts),
		TotalCategories: len(catCounts),
		AveragePrice:    round2(meanOf(priceSum, len(prices))),
		MedianPrice:     median(prices),
		DiscountedShare: share(discounted, n),
		BrandedShare:    share(branded, n),
		ReviewedShare:   share(reviewed, n),
	}
	if dominant := dominantRow(report.Installments); dominant != nil {
		report.Overview.DominantTerm = dominant.Tier
		report.Overview.DominantTermShare = dominant.Share
	}

	report.Provenance = models.Provenance{
		TotalProducts:   n,
		TotalSellers:    len(sellerCounts),
		TotalCategories: len(catCounts),
		CollectedAt:     latest,
		PreparedAt:      time.Now().UTC(),
	}

	s.logger.Info("[insights] Aggregated %d listings: %d categories, %d sellers, %d named brands",
		n, len(catCounts), len(sellerCounts), len(brandCounts))

	return report
}

// priceTier maps a retail price onto its band. Unpriced listings carry
// no band and are excluded from the histogram's denominator.
func priceTier(price float64) (string, bool) {
	switch {
	case price <= 0:
		return "", false
	case price <= 10:
		return "Under 10", true
	case price <= 25:
		return "10-25", true
	case price <= 50:
		return "25-50", true
	case price <= 100:
		return "50-100", true
	case price <= 200:
		return "100-200", true
	default:
		return "200+", true
	}
}

// discountTier maps a discount percentage onto its band. Boundaries are
// uneven on purpose: 10% belongs to the low band, 25% and 50% to the
// mid band.
func discountTier(d float64) string {
	switch {
	case d == 0:
		return "No Discount"
	case d <= 10:
		return "1-10%"
	case d < 25:
		return "11-24%"
	case d <= 50:
		return "25-50%"
	default:
		return "50%+"
	}
}

func (s *InsightService) categoryVolume(ranked []nameCount, total int) []models.CategoryVolume {
	out := make([]models.CategoryVolume, 0, topVolumeCategories)
	for i, nc := range ranked {
		if i == topVolumeCategories {
			break
		}
		out = append(out, models.CategoryVolume{
			Name:  nc.name,
			Count: nc.count,
			Share: share(nc.count, total),
		})
	}
	return out
}

// tierRows builds a histogram whose denominator is its own bucket sum.
func (s *InsightService) tierRows(order []string, counts map[string]int) []models.TierCount {
	total := 0
	for _, c := range counts {
		total += c
	}
	return s.tierRowsWithDenominator(order, counts, total)
}

func (s *InsightService) tierRowsWithDenominator(order []string, counts map[string]int, total int) []models.TierCount {
	out := make([]models.TierCount, 0, len(order))
	for _, tier := range order {
		out = append(out, models.TierCount{
			Tier:  tier,
			Count: counts[tier],
			Share: share(counts[tier], total),
		})
	}
	return out
}

func (s *InsightService) categoryPricing(ranked []nameCount, counts map[string]int, priceSum map[string]float64, priceN map[string]int, prices []float64) models.CategoryPricing {
	rows := make([]models.CategoryPrice, 0, topVolumeCategories)
	for i, nc := range ranked {
		if i == topVolumeCategories {
			break
		}
		rows = append(rows, models.CategoryPrice{
			Name:     nc.name,
			AvgPrice: round2(meanOf(priceSum[nc.name], priceN[nc.name])),
			Count:    counts[nc.name],
		})
	}
	return models.CategoryPricing{
		Rows:          rows,
		CatalogMedian: median(prices),
	}
}

// installments buckets listings by their maximum installment term. Terms
// outside the marketplace's standard ladder are left out of both the
// counts and the denominator.
func (s *InsightService) installments(termCounts map[int]int) []models.TierCount {
	total := 0
	for _, c := range termCounts {
		total += c
	}

	out := make([]models.TierCount, 0, len(installmentTerms))
	for _, term := range installmentTerms {
		out = append(out, models.TierCount{
			Tier:  installmentLabels[term],
			Count: termCounts[term],
			Share: share(termCounts[term], total),
		})
	}
	return out
}

func (s *InsightService) topSellerStats(counts map[string]int, ratings map[string]float64, total int) []models.SellerStat {
	ranked := sortedByCount(counts)

	out := make([]models.SellerStat, 0, topSellers)
	for i, nc := range ranked {
		if i == topSellers {
			break
		}
		out = append(out, models.SellerStat{
			Name:   nc.name,
			Count:  nc.count,
			Rating: ratings[nc.name],
			Share:  share(nc.count, total),
		})
	}
	return out
}

func (s *InsightService) brandAttribution(brandCounts map[string]int, branded, total int) models.BrandAttribution {
	ranked := sortedByCount(brandCounts)

	top := make([]models.BrandCount, 0, topBrands)
	for i, nc := range ranked {
		if i == topBrands {
			break
		}
		top = append(top, models.BrandCount{Name: nc.name, Count: nc.count})
	}

	return models.BrandAttribution{
		NoBrandCount: total - branded,
		NamedCount:   branded,
		NoBrandShare: share(total-branded, total),
		NamedShare:   share(branded, total),
		TopBrands:    top,
	}
}

func (s *InsightService) reviewCoverage(ranked []nameCount, counts, reviewed map[string]int) []models.CategoryReviews {
	out := make([]models.CategoryReviews, 0, topReviewCategories)
	for i, nc := range ranked {
		if i == topReviewCategories {
			break
		}
		out = append(out, models.CategoryReviews{
			Name:     nc.name,
			Total:    counts[nc.name],
			Reviewed: reviewed[nc.name],
			Coverage: share(reviewed[nc.name], counts[nc.name]),
		})
	}
	return out
}

func (s *InsightService) discountPricing(counts map[string]int, priceSum map[string]float64, priceN map[string]int) []models.DiscountPrice {
	out := make([]models.DiscountPrice, 0, len(discountTierOrder))
	for _, tier := range discountTierOrder {
		out = append(out, models.DiscountPrice{
			Tier:     tier,
			AvgPrice: round2(meanOf(priceSum[tier], priceN[tier])),
			Count:    counts[tier],
		})
	}
	return out
}

// sellerConcentration walks the seller ranking and reports how much of
// the catalog the top cohorts hold together. The share denominator is
// the whole catalog, including listings without a seller name, so the
// curve can top out below 100%.
func (s *InsightService) sellerConcentration(counts map[string]int, total int) models.SellerConcentration {
	ranked := sortedByCount(counts)

	cohorts := make([]models.ConcentrationPoint, 0, len(sellerCohorts))
	for _, n := range sellerCohorts {
		limit := n
		if limit > len(ranked) {
			limit = len(ranked)
		}
		sum := 0
		for i := 0; i < limit; i++ {
			sum += ranked[i].count
		}
		cohorts = append(cohorts, models.ConcentrationPoint{
			TopN:            n,
			Listings:        sum,
			CumulativeShare: share(sum, total),
		})
	}

	return models.SellerConcentration{
		Cohorts:      cohorts,
		TotalSellers: len(ranked),
	}
}

type nameCount struct {
	name  string
	count int
}

// sortedByCount ranks map entries by count descending, name ascending on
// ties, so repeated runs emit identical tables.
func sortedByCount(m map[string]int) []nameCount {
	out := make([]nameCount, 0, len(m))
	for name, count := range m {
		out = append(out, nameCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func dominantRow(rows []models.TierCount) *models.TierCount {
	var best *models.TierCount
	for i := range rows {
		if best == nil || rows[i].Count > best.Count {
			best = &rows[i]
		}
	}
	if best != nil && best.Count == 0 {
		return nil
	}
	return best
}

// share is a percentage rounded to one decimal, 0 when the denominator
// is empty.
func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func meanOf(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// median interpolates between the two middle values on even counts.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return round2((sorted[mid-1] + sorted[mid]) / 2)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
