package services

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"umico-analytics/config"
	"umico-analytics/models"
	"umico-analytics/utils"
)

// Cleaner transforms RawListings into clean, validated Listings: it
// drops records without a product ID, collapses duplicates, derives the
// discount percentage and attaches the English category name.
type Cleaner struct {
	logger     *utils.Logger
	categories *config.CategoryMap
	validate   *validator.Validate
}

// NewCleaner creates a Cleaner with the given logger and category map.
func NewCleaner(logger *utils.Logger, categories *config.CategoryMap) *Cleaner {
	return &Cleaner{
		logger:     logger,
		categories: categories,
		validate:   validator.New(),
	}
}

// Clean processes raw listings and returns cleaned records.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	seen := make(map[int64]struct{}, len(raw))
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		if r.ID <= 0 {
			c.logger.Warn("[cleaner] Dropping listing without product ID: %q (page %d)", r.Name, r.Page)
			continue
		}

		if _, dup := seen[r.ID]; dup {
			c.logger.Debug("[cleaner] Duplicate product ID skipped: %d", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}

		name := normaliseText(r.CategoryName)
		listing := &models.Listing{
			ID:                   r.ID,
			Name:                 normaliseText(r.Name),
			Brand:                normaliseText(r.Brand),
			CategoryID:           r.CategoryID,
			CategoryName:         name,
			CategoryEN:           c.categories.Translate(name),
			Status:               normaliseText(r.Status),
			RetailPrice:          nonNegative(r.RetailPrice),
			OldPrice:             nonNegative(r.OldPrice),
			DiscountPct:          discountPct(r.RetailPrice, r.OldPrice),
			SellerName:           normaliseText(r.SellerName),
			SellerRating:         r.SellerRating,
			RatingValue:          r.RatingValue,
			ReviewCount:          r.ReviewCount,
			InStock:              r.InStock,
			InstallmentEnabled:   r.InstallmentEnabled,
			MaxInstallmentMonths: r.MaxInstallmentMonths,
			ImageURL:             strings.TrimSpace(r.ImageURL),
			ProductURL:           strings.TrimSpace(r.ProductURL),
			FetchedAt:            r.FetchedAt,
		}

		if err := c.validate.Struct(listing); err != nil {
			c.logger.Warn("[cleaner] Dropping listing %d with out-of-range fields: %v", r.ID, err)
			continue
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// discountPct derives the advertised markdown from the price pair.
// Listings without a usable old price, or where the "old" price is not
// actually higher, carry no discount.
func discountPct(retail, old float64) float64 {
	if retail <= 0 || old <= retail {
		return 0
	}
	return round1((1 - retail/old) * 100)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
