package umico

import (
	"time"

	"umico-analytics/models"
)

const productBaseURL = "https://birmarket.az/products"

// Product is the subset of the catalog API product object the
// pipeline cares about. Absent or null nested objects decode to zero
// values, which downstream cleaning treats as "not present".
type Product struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	CategoryID   int64    `json:"category_id"`
	Status       string   `json:"status"`
	SluggedName  string   `json:"slugged_name"`
	Category     Category `json:"category"`
	DefaultOffer Offer    `json:"default_offer"`
	Ratings      Ratings  `json:"ratings"`
	MainImg      Image    `json:"main_img"`
}

type Category struct {
	Name string `json:"name"`
}

type Offer struct {
	RetailPrice          float64 `json:"retail_price"`
	OldPrice             float64 `json:"old_price"`
	AvailCheck           bool    `json:"avail_check"`
	InstallmentEnabled   bool    `json:"installment_enabled"`
	MaxInstallmentMonths int     `json:"max_installment_months"`
	Seller               Seller  `json:"seller"`
}

type Seller struct {
	Rating        float64 `json:"rating"`
	MarketingName struct {
		Name string `json:"name"`
	} `json:"marketing_name"`
}

type Ratings struct {
	RatingValue  float64 `json:"rating_value"`
	SessionCount int     `json:"session_count"`
}

type Image struct {
	Medium string `json:"medium"`
}

// toRawListing flattens the nested API object into the pipeline's raw
// record. No cleaning happens here; the product URL is reconstructed
// from the slug the same way the storefront does it.
func (p *Product) toRawListing(page int, fetchedAt time.Time) *models.RawListing {
	return &models.RawListing{
		ID:                   p.ID,
		Name:                 p.Name,
		Brand:                p.Brand,
		CategoryID:           p.CategoryID,
		CategoryName:         p.Category.Name,
		Status:               p.Status,
		RetailPrice:          p.DefaultOffer.RetailPrice,
		OldPrice:             p.DefaultOffer.OldPrice,
		SellerName:           p.DefaultOffer.Seller.MarketingName.Name,
		SellerRating:         p.DefaultOffer.Seller.Rating,
		RatingValue:          p.Ratings.RatingValue,
		ReviewCount:          p.Ratings.SessionCount,
		InStock:              p.DefaultOffer.AvailCheck,
		InstallmentEnabled:   p.DefaultOffer.InstallmentEnabled,
		MaxInstallmentMonths: p.DefaultOffer.MaxInstallmentMonths,
		ImageURL:             p.MainImg.Medium,
		ProductURL:           productBaseURL + "/" + p.SluggedName,
		Page:                 page,
		FetchedAt:            fetchedAt,
	}
}
